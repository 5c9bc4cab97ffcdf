package batch

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"chmatch/internal/logging"
)

// progress reports per-record advancement.
type progress interface {
	Add(n int) error
	Finish() error
}

func newProgress(w io.Writer, total int, logger *slog.Logger) progress {
	if w == nil {
		return &logProgress{total: total, logger: logger, sampler: logging.NewProgressSampler(10)}
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Validating companies...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

// logProgress logs sampled progress when no terminal is attached.
type logProgress struct {
	done    int
	total   int
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (p *logProgress) Add(n int) error {
	p.done += n
	if p.sampler.ShouldLog("validate", p.done, p.total) {
		p.logger.Info("batch progress",
			logging.Int("done", p.done),
			logging.Int("total", p.total),
		)
	}
	return nil
}

func (p *logProgress) Finish() error {
	return nil
}
