package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gofrs/flock"

	"chmatch/internal/config"
	"chmatch/internal/logging"
	"chmatch/internal/matching"
	"chmatch/internal/records"
	"chmatch/internal/services"
	"chmatch/internal/store"
	"chmatch/internal/workbook"
)

// Resolver produces one outcome per record.
type Resolver interface {
	Resolve(ctx context.Context, rec records.Record) matching.Outcome
}

// DistrictLookup maps a postcode to its administrative district.
type DistrictLookup interface {
	AdminDistrict(ctx context.Context, postcode string) (string, error)
}

// RunStore persists runs and outcomes.
type RunStore interface {
	CreateRun(ctx context.Context, inputPath, sheet, outputPath string, total int) (*store.Run, error)
	RecordOutcome(ctx context.Context, runID string, row int, out matching.Outcome) error
	FinishRun(ctx context.Context, run *store.Run) error
	MarkInterrupted(ctx context.Context) (int64, error)
}

// Result pairs a record with its outcome.
type Result struct {
	Record  records.Record
	Outcome matching.Outcome
}

// Job describes one validation run.
type Job struct {
	InputPath  string
	Sheet      string
	OutputPath string
	Limit      int
}

// Report summarises a finished run.
type Report struct {
	Run        *store.Run
	Tally      Tally
	Results    []Result
	OutputPath string
	Cancelled  bool
	Duration   time.Duration
}

// Runner executes validation runs.
type Runner struct {
	cfg       *config.Config
	resolver  Resolver
	accessor  *records.Accessor
	store     RunStore
	districts DistrictLookup
	progressW io.Writer
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists runs and outcomes to s.
func WithStore(s RunStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithDistricts enables headquarters enrichment from postcodes.
func WithDistricts(d DistrictLookup) Option {
	return func(r *Runner) { r.districts = d }
}

// WithProgressWriter renders a progress bar to w instead of logging
// sampled progress.
func WithProgressWriter(w io.Writer) Option {
	return func(r *Runner) { r.progressW = w }
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "batch")
		}
	}
}

// NewRunner builds a runner.
func NewRunner(cfg *config.Config, resolver Resolver, accessor *records.Accessor, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		resolver: resolver,
		accessor: accessor,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the input sheet, resolves its records, writes the annotated
// output workbook and records the run. Only one run may hold the data
// directory lock at a time.
func (r *Runner) Run(ctx context.Context, job Job) (*Report, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another chmatch run is already running (lock %s)", r.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	start := time.Now()
	sheet, err := workbook.Load(job.InputPath, job.Sheet)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "load", "", err)
	}
	recs := sheet.Records
	if job.Limit > 0 && len(recs) > job.Limit {
		r.logger.Info("limiting run", logging.Int("limit", job.Limit), logging.Int("rows", len(recs)))
	}
	total := len(recs)
	if job.Limit > 0 {
		total = min(total, job.Limit)
	}

	var run *store.Run
	if r.store != nil {
		if n, err := r.store.MarkInterrupted(ctx); err != nil {
			r.logger.Warn("failed to mark interrupted runs", logging.Error(err))
		} else if n > 0 {
			r.logger.Warn("marked interrupted runs as failed", logging.Int("runs", int(n)))
		}
		run, err = r.store.CreateRun(ctx, job.InputPath, sheet.Name, job.OutputPath, total)
		if err != nil {
			return nil, err
		}
		ctx = services.WithRunID(ctx, run.ID)
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("batch started",
		logging.String("input", job.InputPath),
		logging.String("sheet", sheet.Name),
		logging.Int("rows", len(sheet.Records)),
		logging.Int("to_process", total),
	)

	results, tally, procErr := r.Process(ctx, recs, job.Limit)
	report := &Report{Run: run, Tally: tally, Results: results, OutputPath: job.OutputPath}
	if procErr != nil {
		report.Cancelled = true
	}

	// Enrichment and saving run on a fresh context so a cancelled run still
	// writes what it processed.
	saveCtx := context.WithoutCancel(ctx)
	out := r.buildOutput(saveCtx, sheet, results)
	saveErr := workbook.Save(job.OutputPath, out)
	if saveErr != nil {
		logger.Error("failed to save output workbook", logging.Error(saveErr), logging.String("output", job.OutputPath))
	} else {
		logger.Info("output saved", logging.String("output", job.OutputPath), logging.Int("rows", len(out.Rows)))
	}

	report.Duration = time.Since(start)
	if run != nil {
		run.Processed = tally.Processed
		run.NeedsReview = tally.NeedsReview
		run.Errors = tally.Errors
		run.Counts = tally.Counts()
		switch {
		case saveErr != nil:
			run.Status = store.RunFailed
			run.ErrorMessage = saveErr.Error()
		case report.Cancelled:
			run.Status = store.RunCancelled
			run.ErrorMessage = procErr.Error()
		default:
			run.Status = store.RunCompleted
		}
		if err := r.store.FinishRun(saveCtx, run); err != nil {
			logger.Warn("failed to record run completion", logging.Error(err))
		}
	}
	logger.Info("batch finished",
		logging.Int("processed", tally.Processed),
		logging.Int("matched", tally.Matched),
		logging.Int("needs_review", tally.NeedsReview),
		logging.Int("errors", tally.Errors),
		logging.Float64("review_rate", tally.ReviewRate()),
		logging.Duration("duration", report.Duration),
		logging.Bool("cancelled", report.Cancelled),
	)

	if saveErr != nil {
		return report, saveErr
	}
	if procErr != nil {
		return report, procErr
	}
	return report, nil
}

// Process resolves recs in order, stopping before the record at index limit
// (when limit > 0) or when ctx is done. The returned error is the context
// error when the run was cut short.
func (r *Runner) Process(ctx context.Context, recs []records.Record, limit int) ([]Result, Tally, error) {
	total := len(recs)
	if limit > 0 {
		total = min(total, limit)
	}
	bar := newProgress(r.progressW, total, logging.WithContext(ctx, r.logger))
	defer func() { _ = bar.Finish() }()

	var tally Tally
	results := make([]Result, 0, total)
	for i, rec := range recs {
		if limit > 0 && i >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch cancelled", logging.Int("processed", tally.Processed), logging.Error(err))
			return results, tally, err
		}
		rowCtx := services.WithRow(ctx, rec.Row)
		out := r.resolveRecord(rowCtx, rec)
		tally.Add(out)
		results = append(results, Result{Record: rec, Outcome: out})
		r.persist(rowCtx, rec.Row, out)
		_ = bar.Add(1)
	}
	return results, tally, nil
}

// resolveRecord converts a panic inside the resolver into an error outcome.
func (r *Runner) resolveRecord(ctx context.Context, rec records.Record) (out matching.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic resolving row %d: %v", rec.Row, p)
			out = matching.ErrorOutcome(err)
			logging.WithContext(ctx, r.logger).Error("record processing failed",
				logging.Error(err),
				logging.Alert("record_error"),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	out = r.resolver.Resolve(ctx, rec)
	if out.MatchType == matching.MatchError {
		logging.WithContext(ctx, r.logger).Error("record processing failed",
			logging.Error(errors.New(out.Err)),
			logging.String(logging.FieldErrorKind, out.ErrorKind),
			logging.Alert("record_error"),
		)
	}
	return out
}

func (r *Runner) persist(ctx context.Context, row int, out matching.Outcome) {
	if r.store == nil {
		return
	}
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return
	}
	if err := r.store.RecordOutcome(context.WithoutCancel(ctx), runID, row, out); err != nil {
		logging.WithContext(ctx, r.logger).Warn("failed to persist outcome", logging.Error(err))
	}
}
