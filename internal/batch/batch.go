package batch

import (
	"context"
	"strings"
	"time"
)

const (
	DefaultBatchSize = 25
	DefaultBackoff   = 10 * time.Second
)

// cues of a loaded subtitle file, addressed by position
type Track interface {
	Len() int
	Text(index int) string
	SetText(index int, text string) error
}

// sends one batch of texts and returns their translations in order
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// half-open range [Start, End) of positions in the valid-cue subset
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// outcome of a single translator call for one span
type Result struct {
	Start int
	Texts []string
	Err   error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Summary struct {
	Cues       int
	Valid      int
	Batches    int
	Failed     int
	Translated int
}

// ValidIndices returns the positions of cues that have non-blank text.
func ValidIndices(track Track) []int {
	var valid []int
	for i := 0; i < track.Len(); i++ {
		if strings.TrimSpace(track.Text(i)) != "" {
			valid = append(valid, i)
		}
	}
	return valid
}

// Chunk splits n items into ceil(n/size) spans; only the last may be short.
func Chunk(n, size int) []Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}

	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// newlines inside a cue would be mangled by most translation endpoints
func flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}
