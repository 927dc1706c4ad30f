package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDeepLTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key secret" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
			return
		}
		texts := r.PostForm["text"]
		if len(texts) != 2 || texts[0] != "Hello" || texts[1] != "World" {
			t.Errorf("unexpected text fields %v", texts)
		}
		if got := r.PostForm.Get("target_lang"); got != "DE" {
			t.Errorf("unexpected target_lang %q", got)
		}
		if got := r.PostForm.Get("source_lang"); got != "EN" {
			t.Errorf("unexpected source_lang %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translations":[` +
			`{"detected_source_language":"EN","text":"Hallo"},` +
			`{"detected_source_language":"EN","text":"Welt"}]}`))
	}))
	defer server.Close()

	translator := NewDeepLTranslator("secret", Options{
		TargetLanguage: "de",
		SourceLanguage: "en-GB",
		BaseURL:        server.URL,
	})

	got, err := translator.Translate(context.Background(), []string{"Hello", "World"})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if strings.Join(got, ",") != "Hallo,Welt" {
		t.Errorf("unexpected translations %v", got)
	}
}

func TestDeepLTranslateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Quota Exceeded"}`, 456)
	}))
	defer server.Close()

	translator := NewDeepLTranslator("secret", Options{TargetLanguage: "DE", BaseURL: server.URL})
	_, err := translator.Translate(context.Background(), []string{"Hello"})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "456") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

func TestDeepLHostSelection(t *testing.T) {
	if got := NewDeepLTranslator("abc:fx", Options{}).baseURL; got != deeplFreeURL {
		t.Errorf("free key should use %s, got %s", deeplFreeURL, got)
	}
	if got := NewDeepLTranslator("abc", Options{}).baseURL; got != deeplProURL {
		t.Errorf("pro key should use %s, got %s", deeplProURL, got)
	}
}

func TestDeepLLanguageCodes(t *testing.T) {
	tests := []struct {
		input      string
		wantTarget string
		wantSource string
	}{
		{"en", "EN-US", "EN"},
		{"EN-US", "EN-US", "EN"},
		{"en_gb", "EN-GB", "EN"},
		{"pt", "PT-BR", "PT"},
		{"ja", "JA", "JA"},
	}

	for _, tt := range tests {
		if got := deeplTargetLang(tt.input); got != tt.wantTarget {
			t.Errorf("deeplTargetLang(%q) = %q, want %q", tt.input, got, tt.wantTarget)
		}
		if got := deeplSourceLang(tt.input); got != tt.wantSource {
			t.Errorf("deeplSourceLang(%q) = %q, want %q", tt.input, got, tt.wantSource)
		}
	}
}
