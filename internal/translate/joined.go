package translate

import (
	"context"
	"strings"
	"time"

	"github.com/mgpai22/subtran/internal/logging"
)

const (
	JoinSeparator = " |||| "
	splitMarker   = "||||"

	// pause after each individual request of a fallback
	DefaultPace = time.Second
)

// Pacer is called after every individual request made during a fallback.
type Pacer func(ctx context.Context) error

func SleepPacer(d time.Duration) Pacer {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

func Join(texts []string) string {
	return strings.Join(texts, JoinSeparator)
}

// Split cuts a joined translation on the bare marker, since translators tend
// to eat the spaces around it, and trims each part.
func Split(s string) []string {
	parts := strings.Split(s, splitMarker)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

type Reconciliation struct {
	Texts []string
	// set when the joined reply did not split into one part per text and
	// every text was translated on its own
	Fallback bool
	// number of parts the joined reply split into
	Parts int
}

// Reconcile translates texts with a single joined request. If the reply does
// not split back into exactly len(texts) parts, each text is sent on its own
// and pace runs after every such request. Any error fails the whole call.
func Reconcile(
	ctx context.Context,
	texts []string,
	translator TextTranslator,
	pace Pacer,
) (Reconciliation, error) {
	if len(texts) == 0 {
		return Reconciliation{Texts: []string{}}, nil
	}

	joined, err := translator.TranslateText(ctx, Join(texts))
	if err != nil {
		return Reconciliation{}, err
	}

	parts := Split(joined)
	if len(parts) == len(texts) {
		return Reconciliation{Texts: parts, Parts: len(parts)}, nil
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		translated, err := translator.TranslateText(ctx, text)
		if err != nil {
			return Reconciliation{}, err
		}
		out[i] = translated
		if pace != nil {
			if err := pace(ctx); err != nil {
				return Reconciliation{}, err
			}
		}
	}

	return Reconciliation{Texts: out, Fallback: true, Parts: len(parts)}, nil
}

// Joined turns a single string translator into a batch Translator by joining
// the batch into one request.
type Joined struct {
	translator TextTranslator
	pace       Pacer
	logger     *logging.Logger
}

// a nil pace sleeps DefaultPace between fallback requests
func NewJoined(translator TextTranslator, pace Pacer, logger *logging.Logger) *Joined {
	if pace == nil {
		pace = SleepPacer(DefaultPace)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Joined{translator: translator, pace: pace, logger: logger}
}

func (j *Joined) Translate(ctx context.Context, texts []string) ([]string, error) {
	rec, err := Reconcile(ctx, texts, j.translator, j.pace)
	if err != nil {
		return nil, err
	}
	if rec.Fallback {
		j.logger.Warnw("Batch misalignment, translated lines individually",
			"lines", len(texts),
			"parts", rec.Parts,
		)
	}
	return rec.Texts, nil
}
