package translate

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestFactoryReturnsProviderTranslators(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		provider Provider
		apiKey   string
		check    func(Translator) bool
	}{
		{ProviderDeepL, "key:fx", func(tr Translator) bool { _, ok := tr.(*DeepLTranslator); return ok }},
		{ProviderGoogle, "", func(tr Translator) bool { _, ok := tr.(*Joined); return ok }},
		{ProviderGemini, "fake-key", func(tr Translator) bool { _, ok := tr.(*GeminiTranslator); return ok }},
		{ProviderOpenAI, "fake-key", func(tr Translator) bool { _, ok := tr.(*OpenAITranslator); return ok }},
		{ProviderAnthropic, "fake-key", func(tr Translator) bool { _, ok := tr.(*AnthropicTranslator); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			translator, err := Factory(ctx, tt.provider, tt.apiKey, Options{})
			if err != nil {
				t.Fatalf("Factory(%s) returned error: %v", tt.provider, err)
			}
			if !tt.check(translator) {
				t.Errorf("unexpected translator type %T", translator)
			}
		})
	}
}

func TestFactoryOllamaUsesBaseURL(t *testing.T) {
	translator, err := Factory(context.Background(), ProviderOllama, "", Options{
		BaseURL: "http://127.0.0.1:11434",
	})
	if err != nil {
		t.Fatalf("Factory(ProviderOllama) returned error: %v", err)
	}
	ollama, ok := translator.(*OllamaTranslator)
	if !ok {
		t.Fatalf("expected *OllamaTranslator, got %T", translator)
	}
	if ollama.model != defaultOllamaModel {
		t.Errorf("expected default model %q, got %q", defaultOllamaModel, ollama.model)
	}
}

func TestFactoryFillsDefaultLanguage(t *testing.T) {
	translator, err := Factory(context.Background(), ProviderDeepL, "key", Options{})
	if err != nil {
		t.Fatalf("Factory error: %v", err)
	}
	deepl := translator.(*DeepLTranslator)
	if deepl.options.TargetLanguage != "EN-US" {
		t.Errorf("expected default target EN-US, got %q", deepl.options.TargetLanguage)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	_, err := Factory(context.Background(), ProviderDeepL, "", Options{TargetLanguage: "DE"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "DEEPL_API_KEY") {
		t.Errorf("error should name the environment variable, got: %v", err)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	opts := Options{TargetLanguage: "French"}
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", opts)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestCloudTranslatorRejectsBadLanguage(t *testing.T) {
	_, err := NewCloudTranslator(context.Background(), "fake-key", Options{
		TargetLanguage: "not a language",
	})
	if err == nil {
		t.Error("expected error for invalid target language")
	}
}

func TestProviderTable(t *testing.T) {
	tests := []struct {
		provider  Provider
		language  string
		batchSize int
	}{
		{ProviderDeepL, "EN-US", 25},
		{ProviderGoogle, "en", 10},
		{ProviderGCloud, "en", 25},
		{ProviderGemini, "English", 25},
	}

	for _, tt := range tests {
		info, ok := Lookup(tt.provider)
		if !ok {
			t.Errorf("provider %s missing", tt.provider)
			continue
		}
		if info.DefaultLanguage != tt.language || info.BatchSize != tt.batchSize {
			t.Errorf("%s: got language %q batch %d, want %q %d",
				tt.provider, info.DefaultLanguage, info.BatchSize, tt.language, tt.batchSize)
		}
	}

	if len(Providers()) != 7 {
		t.Errorf("expected 7 providers, got %d", len(Providers()))
	}
	if _, ok := Lookup("bing"); ok {
		t.Error("unexpected provider bing")
	}
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAITranslatorIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	opts := Options{TargetLanguage: "Spanish"}
	translator, err := NewOpenAITranslator(ctx, apiKey, opts)
	if err != nil {
		t.Fatalf("NewOpenAITranslator error: %v", err)
	}

	results, err := translator.Translate(ctx, []string{"Hello", "Goodbye"})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r == "" {
			t.Errorf("result %d has empty text", i)
		}
	}
}
