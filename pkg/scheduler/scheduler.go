// Package scheduler runs periodic jobs with jitter and overlap prevention.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chris/marketplace-escrow/pkg/metrics"
)

var (
	// ErrAlreadyRunning is returned when the previous run of a job in this process has not finished.
	ErrAlreadyRunning = errors.New("job already running")
	// ErrLocked is returned when another instance holds the job's lock.
	ErrLocked = errors.New("job locked by another instance")
	// ErrUnknownJob is returned for a job name that was never added.
	ErrUnknownJob = errors.New("unknown job")
)

// Job is a unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	// Jitter is the upper bound of a random delay added to every interval.
	Jitter time.Duration
	Run    func(ctx context.Context) error
}

// Locker grants cluster-wide exclusive runs. The returned release func must
// be called once the run finishes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

type entry struct {
	job     Job
	running atomic.Bool
}

// Runner runs jobs until its context is cancelled.
type Runner struct {
	logger *slog.Logger
	locker Locker

	mu   sync.Mutex
	jobs map[string]*entry
	wg   sync.WaitGroup
}

// NewRunner creates a Runner. locker may be nil for a single instance.
func NewRunner(logger *slog.Logger, locker Locker) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, locker: locker, jobs: make(map[string]*entry)}
}

// Add registers a job.
func (r *Runner) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run func")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.Name]; ok {
		return fmt.Errorf("job %s already added", job.Name)
	}
	r.jobs[job.Name] = &entry{job: job}
	return nil
}

// Start launches one loop per job. Every job runs once immediately and then
// after each interval plus jitter.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, e)
	}
}

// Wait blocks until all loops stopped.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, e *entry) {
	defer r.wg.Done()
	for {
		if err := r.run(ctx, e); err != nil && !errors.Is(err, ErrAlreadyRunning) && !errors.Is(err, ErrLocked) {
			r.logger.ErrorContext(ctx, "scheduled job failed", "job", e.job.Name, "error", err)
		}

		timer := time.NewTimer(e.job.Interval + jitter(e.job.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce runs the named job now, respecting overlap prevention.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	r.mu.Lock()
	e, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return r.run(ctx, e)
}

func (r *Runner) run(ctx context.Context, e *entry) error {
	name := e.job.Name
	if !e.running.CompareAndSwap(false, true) {
		metrics.JobRuns.WithLabelValues(name, "skipped").Inc()
		r.logger.WarnContext(ctx, "previous run still in progress, skipping", "job", name)
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	if r.locker != nil {
		release, acquired, err := r.locker.TryLock(ctx, name, e.job.Interval)
		if err != nil {
			metrics.JobRuns.WithLabelValues(name, "failed").Inc()
			return fmt.Errorf("failed to lock job %s: %w", name, err)
		}
		if !acquired {
			metrics.JobRuns.WithLabelValues(name, "locked").Inc()
			r.logger.InfoContext(ctx, "job running on another instance, skipping", "job", name)
			return ErrLocked
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				r.logger.WarnContext(ctx, "failed to release job lock", "job", name, "error", err)
			}
		}()
	}

	started := time.Now()
	err := e.job.Run(ctx)
	if err != nil {
		metrics.JobRuns.WithLabelValues(name, "failed").Inc()
		return fmt.Errorf("job %s: %w", name, err)
	}
	metrics.JobRuns.WithLabelValues(name, "ok").Inc()
	r.logger.DebugContext(ctx, "job finished", "job", name, "duration", time.Since(started))
	return nil
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}
