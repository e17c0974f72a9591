// Package schedule runs recordings on cron timetables. Overlapping triggers
// are skipped rather than queued so a long replay never stacks up behind
// itself.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/offlinefirst/replaykit/pkg/metrics"
)

// Job pairs a standard five-field cron spec with the recording it replays.
type Job struct {
	Spec      string
	Recording string
}

// Options configure a scheduler.
type Options struct {
	Jobs []Job
	// Run replays one recording. Invoked from the cron goroutine.
	Run    func(ctx context.Context, recording string) error
	Logger *slog.Logger
}

// Runner drives the cron timetable. At most one replay runs at a time across
// all jobs; triggers that land while one is active are counted and dropped.
type Runner struct {
	jobs   []Job
	run    func(ctx context.Context, recording string) error
	logger *slog.Logger
	cron   *cron.Cron
	busy   atomic.Bool
}

// NewRunner validates every cron spec up front and constructs the runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Run == nil {
		return nil, errors.New("schedule runner requires a run function")
	}
	if len(opts.Jobs) == 0 {
		return nil, errors.New("schedule runner requires at least one job")
	}
	for _, job := range opts.Jobs {
		if _, err := cron.ParseStandard(job.Spec); err != nil {
			return nil, fmt.Errorf("invalid cron spec %q for %s: %w", job.Spec, job.Recording, err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{jobs: opts.Jobs, run: opts.Run, logger: logger}, nil
}

// Start registers the jobs and launches the cron loop. It blocks until ctx
// ends, then stops the timetable and waits for a running replay to finish.
func (r *Runner) Start(ctx context.Context) error {
	r.cron = cron.New()
	for _, job := range r.jobs {
		job := job
		if _, err := r.cron.AddFunc(job.Spec, func() { r.trigger(ctx, job) }); err != nil {
			return fmt.Errorf("register job %s: %w", job.Recording, err)
		}
		r.logger.Info("job scheduled", "spec", job.Spec, "recording", job.Recording)
	}

	r.cron.Start()
	<-ctx.Done()
	stopped := r.cron.Stop()
	<-stopped.Done()
	return ctx.Err()
}

func (r *Runner) trigger(ctx context.Context, job Job) {
	if !r.busy.CompareAndSwap(false, true) {
		metrics.ScheduledRunsSkipped.Inc()
		r.logger.Warn("scheduled run skipped, another replay is active", "recording", job.Recording)
		return
	}
	defer r.busy.Store(false)

	r.logger.Info("scheduled replay starting", "recording", job.Recording)
	if err := r.run(ctx, job.Recording); err != nil {
		r.logger.Error("scheduled replay failed", "recording", job.Recording, "error", err)
		return
	}
	r.logger.Info("scheduled replay finished", "recording", job.Recording)
}
