package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/mgpai22/subtran/internal/batch"
)

// barProgress draws one tick per processed batch.
type barProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newBarProgress(out io.Writer) *barProgress {
	return &barProgress{out: out}
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Batch Progress"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

func (p *barProgress) Batch(number, total, size int) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Batch Progress (%d lines)", size))
	_ = p.bar.Add(1)
}

func (p *barProgress) Done() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// progressFor returns a bar on interactive terminals and nil otherwise,
// which the runner treats as no progress output.
func progressFor(w io.Writer, disabled bool) batch.Progress {
	if disabled || !isTerminal(w) {
		return nil
	}
	return newBarProgress(w)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
