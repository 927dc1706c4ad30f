package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subtran/internal/logging"
)

// receives one call per processed batch, failed or not
type Progress interface {
	Start(total int)
	Batch(number, total, size int)
	Done()
}

// Sleeper pauses between calls. It returns early with the context error
// when ctx is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Options struct {
	BatchSize int
	// pause after a failed batch before moving on to the next one
	Backoff time.Duration
	// pause after every successful batch
	Delay    time.Duration
	Sleep    Sleeper
	Progress Progress
	Logger   *logging.Logger
}

type Runner struct {
	translator Translator
	opts       Options
}

func NewRunner(translator Translator, opts Options) *Runner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Runner{translator: translator, opts: opts}
}

// Run translates every non-blank cue of track in place, one batch at a time.
// A failed batch is logged and skipped after the backoff; its cues keep their
// text. Only context cancellation or a failure to update the track stops the
// run early.
func (r *Runner) Run(ctx context.Context, track Track) (Summary, error) {
	log := r.opts.Logger
	valid := ValidIndices(track)
	spans := Chunk(len(valid), r.opts.BatchSize)

	summary := Summary{
		Cues:    track.Len(),
		Valid:   len(valid),
		Batches: len(spans),
	}

	log.Infow("Starting translation",
		"lines", len(valid),
		"batch_size", r.opts.BatchSize,
		"batches", len(spans),
	)

	r.opts.Progress.Start(len(spans))
	defer r.opts.Progress.Done()

	for n, span := range spans {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		texts := make([]string, span.Len())
		for j := range texts {
			texts[j] = flatten(track.Text(valid[span.Start+j]))
		}

		result := r.translate(ctx, span.Start, texts)
		if !result.OK() {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			summary.Failed++
			log.Errorw(fmt.Sprintf("Error at line %d", result.Start),
				"batch", n,
				"error", result.Err,
				"backoff", r.opts.Backoff,
			)
			r.opts.Progress.Batch(n+1, len(spans), span.Len())
			if err := r.opts.Sleep(ctx, r.opts.Backoff); err != nil {
				return summary, err
			}
			continue
		}

		applied := len(result.Texts)
		if applied != len(texts) {
			log.Warnw("Translator returned a different number of texts",
				"batch", n,
				"sent", len(texts),
				"received", applied,
			)
			if applied > len(texts) {
				applied = len(texts)
			}
		}
		for j := 0; j < applied; j++ {
			index := valid[span.Start+j]
			if err := track.SetText(index, result.Texts[j]); err != nil {
				return summary, fmt.Errorf("failed to set text for cue %d: %w", index, err)
			}
			summary.Translated++
		}

		log.Debugw("Batch translated",
			"batch", n,
			"start", span.Start,
			"size", span.Len(),
		)
		r.opts.Progress.Batch(n+1, len(spans), span.Len())

		if r.opts.Delay > 0 {
			if err := r.opts.Sleep(ctx, r.opts.Delay); err != nil {
				return summary, err
			}
		}
	}

	log.Infow("Translation finished",
		"translated", summary.Translated,
		"failed_batches", summary.Failed,
	)

	return summary, nil
}

func (r *Runner) translate(ctx context.Context, start int, texts []string) Result {
	translated, err := r.translator.Translate(ctx, texts)
	return Result{Start: start, Texts: translated, Err: err}
}

type nopProgress struct{}

func (nopProgress) Start(int)           {}
func (nopProgress) Batch(int, int, int) {}
func (nopProgress) Done()               {}
