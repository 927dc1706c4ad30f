package translate

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// implements Translator using Google Cloud Translation (v2). Without an API
// key the client falls back to application default credentials.
type CloudTranslator struct {
	client *gtranslate.Client
	target language.Tag
	source language.Tag
	model  string
}

func NewCloudTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*CloudTranslator, error) {
	target, err := language.Parse(opts.TargetLanguage)
	if err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", opts.TargetLanguage, err)
	}

	source := language.Und
	if src := opts.SourceLanguage; src != "" && !strings.EqualFold(src, "auto") {
		source, err = language.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("invalid source language %q: %w", src, err)
		}
	}

	var clientOpts []option.ClientOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}

	client, err := gtranslate.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Translation client: %w", err)
	}

	return &CloudTranslator{
		client: client,
		target: target,
		source: source,
		model:  opts.Model,
	}, nil
}

func (t *CloudTranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	translations, err := t.client.Translate(ctx, texts, t.target, &gtranslate.Options{
		Source: t.source,
		Format: gtranslate.Text,
		Model:  t.model,
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = tr.Text
	}
	return out, nil
}

func (t *CloudTranslator) Close() error {
	return t.client.Close()
}
