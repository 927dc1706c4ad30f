package translate

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"
)

const defaultOllamaModel = "qwen3:14b"

// implements Translator with a model served by a local Ollama instance
type OllamaTranslator struct {
	client  *api.Client
	model   string
	options Options
}

// NewOllamaTranslator talks to opts.BaseURL, or to OLLAMA_HOST when unset.
func NewOllamaTranslator(opts Options) (*OllamaTranslator, error) {
	var client *api.Client
	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid ollama host")
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create ollama client")
		}
	}

	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OllamaTranslator) Translate(
	ctx context.Context,
	texts []string,
) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  t.model,
		Prompt: BuildPrompt(t.options, itemsFromTexts(texts)),
		Stream: &stream,
	}

	var response strings.Builder
	err := t.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return decodeResponse("Ollama", response.String(), len(texts))
}
