package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	deeplFreeURL = "https://api-free.deepl.com"
	deeplProURL  = "https://api.deepl.com"
)

// implements Translator using the DeepL REST API; one request per batch
type DeepLTranslator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	options    Options
}

// Keys ending in ":fx" belong to the free plan and use the api-free host.
func NewDeepLTranslator(apiKey string, opts Options) *DeepLTranslator {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = deeplProURL
		if strings.HasSuffix(apiKey, ":fx") {
			baseURL = deeplFreeURL
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &DeepLTranslator{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		options:    opts,
	}
}

func (d *DeepLTranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	form := url.Values{}
	for _, text := range texts {
		form.Add("text", text)
	}
	form.Set("target_lang", deeplTargetLang(d.options.TargetLanguage))
	if src := d.options.SourceLanguage; src != "" && !strings.EqualFold(src, "auto") {
		form.Set("source_lang", deeplSourceLang(src))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v2/translate",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DeepL API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DeepL API error (status %d): %s", resp.StatusCode,
			truncateString(string(body), 200))
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	out := make([]string, len(deeplResp.Translations))
	for i, tr := range deeplResp.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// DeepL wants upper case codes and no longer accepts bare EN or PT as targets
func deeplTargetLang(code string) string {
	code = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(code, "_", "-")))
	switch code {
	case "EN":
		return "EN-US"
	case "PT":
		return "PT-BR"
	}
	return code
}

// source languages are given without a region
func deeplSourceLang(code string) string {
	code = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(code, "_", "-")))
	if i := strings.Index(code, "-"); i > 0 {
		return code[:i]
	}
	return code
}
