package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subtran/internal/logging"
)

// translates a batch of texts; the result has one entry per input, in order
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// translates a single string, used by endpoints without multi-text requests
type TextTranslator interface {
	TranslateText(ctx context.Context, text string) (string, error)
}

// translation service provider
type Provider string

const (
	ProviderDeepL     Provider = "deepl"
	ProviderGoogle    Provider = "google"
	ProviderGCloud    Provider = "gcloud"
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// static facts about a provider, shown by `subtran providers` and used to
// fill in defaults
type ProviderInfo struct {
	Name            Provider
	Description     string
	DefaultLanguage string
	BatchSize       int
	// pause after each successful batch
	Delay time.Duration
	// environment variable holding the credential, empty when none is used
	KeyEnv   string
	NeedsKey bool
}

var providers = []ProviderInfo{
	{
		Name:            ProviderDeepL,
		Description:     "DeepL REST API",
		DefaultLanguage: "EN-US",
		BatchSize:       25,
		KeyEnv:          "DEEPL_API_KEY",
		NeedsKey:        true,
	},
	{
		Name:            ProviderGoogle,
		Description:     "Google Translate web endpoint, joined batches",
		DefaultLanguage: "en",
		BatchSize:       10,
		Delay:           2 * time.Second,
	},
	{
		Name:            ProviderGCloud,
		Description:     "Google Cloud Translation v2",
		DefaultLanguage: "en",
		BatchSize:       25,
		KeyEnv:          "GOOGLE_TRANSLATE_API_KEY",
	},
	{
		Name:            ProviderGemini,
		Description:     "Google Gemini",
		DefaultLanguage: "English",
		BatchSize:       25,
		KeyEnv:          "GEMINI_API_KEY",
		NeedsKey:        true,
	},
	{
		Name:            ProviderOpenAI,
		Description:     "OpenAI chat completions",
		DefaultLanguage: "English",
		BatchSize:       25,
		KeyEnv:          "OPENAI_API_KEY",
		NeedsKey:        true,
	},
	{
		Name:            ProviderAnthropic,
		Description:     "Anthropic Claude",
		DefaultLanguage: "English",
		BatchSize:       25,
		KeyEnv:          "ANTHROPIC_API_KEY",
		NeedsKey:        true,
	},
	{
		Name:            ProviderOllama,
		Description:     "Local Ollama model",
		DefaultLanguage: "English",
		BatchSize:       25,
	},
}

// every supported provider, in display order
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

func Lookup(provider Provider) (ProviderInfo, bool) {
	for _, p := range providers {
		if p.Name == provider {
			return p, true
		}
	}
	return ProviderInfo{}, false
}

type Options struct {
	SourceLanguage string
	TargetLanguage string
	Model          string
	Prompt         string
	// endpoint override for the HTTP based providers (deepl, google, ollama)
	BaseURL string
	Timeout time.Duration
	// called after every individual request of a joined fallback
	Pace   Pacer
	Logger *logging.Logger
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	info, ok := Lookup(provider)
	if !ok {
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}

	if opts.TargetLanguage == "" {
		opts.TargetLanguage = info.DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if info.NeedsKey && apiKey == "" {
		return nil, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			info.KeyEnv,
		)
	}

	switch provider {
	case ProviderDeepL:
		return NewDeepLTranslator(apiKey, opts), nil
	case ProviderGoogle:
		return NewJoined(NewGoogleTranslator(opts), opts.Pace, opts.Logger), nil
	case ProviderGCloud:
		return NewCloudTranslator(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	case ProviderOllama:
		return NewOllamaTranslator(opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}
