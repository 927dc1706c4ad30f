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

const googleBaseURL = "https://translate.googleapis.com"

// single string translator over the public translate.googleapis.com "gtx"
// endpoint; it is wrapped in Joined to translate batches
type GoogleTranslator struct {
	baseURL    string
	source     string
	target     string
	httpClient *http.Client
}

func NewGoogleTranslator(opts Options) *GoogleTranslator {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	source := opts.SourceLanguage
	if source == "" {
		source = "auto"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GoogleTranslator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		source:     source,
		target:     opts.TargetLanguage,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *GoogleTranslator) TranslateText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	params := url.Values{
		"client": {"gtx"},
		"sl":     {g.source},
		"tl":     {g.target},
		"dt":     {"t"},
		"q":      {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/translate_a/single?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Google Translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Google Translate error (status %d): %s", resp.StatusCode,
			truncateString(string(body), 200))
	}

	// an HTML page instead of JSON means we were rate limited or blocked
	if strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		return "", fmt.Errorf("Google Translate returned an HTML page, possibly rate limited")
	}

	return parseGoogleResponse(body)
}

// the response is a nested array; the first element lists [translated, original, ...]
// segments that concatenate to the full translation
func parseGoogleResponse(body []byte) (string, error) {
	var result []interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if len(result) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	segments, ok := result[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected response format")
	}

	var sb strings.Builder
	for _, segment := range segments {
		parts, ok := segment.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if text, ok := parts[0].(string); ok {
			sb.WriteString(text)
		}
	}

	return sb.String(), nil
}
