package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 2 * time.Second
	defaultMaxBackoff     = time.Minute
	jitterWindow          = 250 * time.Millisecond
	handBackTimeout       = 5 * time.Second
)

// ErrLeaseLost cancels a run whose task lock expired before the run finished.
var ErrLeaseLost = errors.New("task lock lost")

// durable is implemented by queues whose tasks outlive the process.
type durable interface {
	Durable() bool
}

// RetryPolicy bounds how often and how quickly a failing task is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	return p
}

// Backoff returns the delay before attempt+1 given that attempt (1-based) just failed:
// InitialBackoff doubled per prior failure, capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = nextBackoff(d, p.InitialBackoff, p.MaxBackoff)
		if d == p.MaxBackoff {
			break
		}
	}
	return d
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// ExhaustedFunc is called once a task has failed MaxAttempts times.
type ExhaustedFunc func(ctx context.Context, task Task, cause error)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Workers     int
	Retry       RetryPolicy
	OnExhausted ExhaustedFunc
	// LockRefresh is how often a held task lock is extended. Zero disables refreshing;
	// set it well below the locker's TTL.
	LockRefresh time.Duration
	Logger      *slog.Logger
}

// Runner pulls tasks from a Queue and executes them on a fixed pool of workers.
// A task holds the lock named by its broadcast for the whole run, retries included.
type Runner struct {
	queue       Queue
	handler     Handler
	locker      Locker
	workers     int
	retry       RetryPolicy
	onExhausted ExhaustedFunc
	lockRefresh time.Duration
	logger      *slog.Logger

	jitterMu sync.Mutex
	rng      *rand.Rand
	jitter   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a runner. locker may be nil when only one runner consumes the queue.
func NewRunner(queue Queue, handler Handler, locker Locker, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Runner{
		queue:       queue,
		handler:     handler,
		locker:      locker,
		workers:     cfg.Workers,
		retry:       cfg.Retry.withDefaults(),
		onExhausted: cfg.OnExhausted,
		lockRefresh: cfg.LockRefresh,
		logger:      cfg.Logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		jitter:      jitterWindow,
		sleep:       sleepContext,
	}
}

// Run blocks until ctx is cancelled or the queue is closed, then waits for in-flight tasks.
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r.work(ctx, worker)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (r *Runner) work(ctx context.Context, worker int) {
	for {
		task, err := r.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			r.logger.ErrorContext(ctx, "dequeue failed", "worker", worker, "error", err)
			if r.sleep(ctx, r.retry.InitialBackoff) != nil {
				return
			}
			continue
		}
		r.Process(ctx, task)
	}
}

// Process runs one task to completion: success, permanent failure, or exhaustion.
// A task that cannot finish here because of shutdown or a lock error is handed back:
// re-enqueued on a durable queue once the lock is released, otherwise reported as exhausted
// so its pending receipts stay visible.
func (r *Runner) Process(ctx context.Context, task Task) {
	logger := r.logger.With("task_id", task.ID, "kind", task.Kind, "broadcast_id", task.BroadcastID)

	lease, ok, err := r.locker.Acquire(ctx, task.Kind+":"+task.BroadcastID)
	if err != nil {
		logger.ErrorContext(ctx, "acquire task lock", "error", err)
		r.handBack(ctx, logger, task, fmt.Errorf("acquire task lock: %w", err))
		return
	}
	if !ok {
		logger.InfoContext(ctx, "task already running elsewhere, skipping")
		return
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	stopKeeper := r.keepLease(runCtx, cancel, lease, logger)
	unfinished := r.runAttempts(ctx, runCtx, task, logger)
	stopKeeper()
	cancel(nil)
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		logger.WarnContext(ctx, "release task lock", "error", err)
	}
	if unfinished != nil {
		r.handBack(ctx, logger, task, unfinished)
	}
}

// runAttempts runs the retry loop under runCtx. It returns a non-nil error only when the task
// was interrupted by shutdown and must be handed back.
func (r *Runner) runAttempts(ctx, runCtx context.Context, task Task, logger *slog.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= r.retry.MaxAttempts; attempt++ {
		lastErr = r.handler(runCtx, task)
		if lastErr == nil {
			if attempt > 1 {
				logger.InfoContext(ctx, "task succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if IsPermanent(lastErr) {
			logger.ErrorContext(ctx, "task failed permanently", "attempt", attempt, "error", lastErr)
			return nil
		}
		if runCtx.Err() != nil {
			return r.interrupted(ctx, runCtx, logger, attempt, lastErr)
		}
		if attempt == r.retry.MaxAttempts {
			break
		}
		delay := r.withJitter(r.retry.Backoff(attempt))
		logger.WarnContext(ctx, "task failed, retrying", "attempt", attempt, "retry_in", delay, "error", lastErr)
		if err := r.sleep(runCtx, delay); err != nil {
			return r.interrupted(ctx, runCtx, logger, attempt, lastErr)
		}
	}

	logger.ErrorContext(ctx, "task exhausted retries", "attempts", r.retry.MaxAttempts, "error", lastErr)
	if r.onExhausted != nil {
		r.onExhausted(context.WithoutCancel(ctx), task, lastErr)
	}
	return nil
}

func (r *Runner) interrupted(ctx, runCtx context.Context, logger *slog.Logger, attempt int, lastErr error) error {
	if errors.Is(context.Cause(runCtx), ErrLeaseLost) {
		logger.WarnContext(ctx, "task lock lost, leaving broadcast to its new owner", "attempt", attempt, "error", lastErr)
		return nil
	}
	logger.WarnContext(ctx, "task interrupted by shutdown", "attempt", attempt, "error", lastErr)
	if lastErr == nil {
		lastErr = context.Cause(runCtx)
	}
	return fmt.Errorf("interrupted: %w", lastErr)
}

// handBack returns task to a durable queue, or reports it exhausted when that is not possible.
func (r *Runner) handBack(ctx context.Context, logger *slog.Logger, task Task, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handBackTimeout)
	defer cancel()
	if q, ok := r.queue.(durable); ok && q.Durable() {
		err := r.queue.Enqueue(ctx, task)
		if err == nil {
			logger.InfoContext(ctx, "task re-enqueued", "cause", cause)
			return
		}
		logger.ErrorContext(ctx, "re-enqueue task", "error", err)
	}
	logger.ErrorContext(ctx, "task abandoned, marking exhausted", "cause", cause)
	if r.onExhausted != nil {
		r.onExhausted(ctx, task, cause)
	}
}

// keepLease refreshes lease every lockRefresh until stop is called. Losing the lease cancels
// the run with ErrLeaseLost.
func (r *Runner) keepLease(ctx context.Context, cancel context.CancelCauseFunc, lease Lease, logger *slog.Logger) (stop func()) {
	if r.lockRefresh <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(r.lockRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				ok, err := lease.Refresh(ctx)
				if err != nil {
					logger.WarnContext(ctx, "refresh task lock", "error", err)
					continue
				}
				if !ok {
					cancel(ErrLeaseLost)
					return
				}
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func (r *Runner) withJitter(d time.Duration) time.Duration {
	if d <= 0 || r.jitter <= 0 {
		return d
	}
	r.jitterMu.Lock()
	defer r.jitterMu.Unlock()
	return d + time.Duration(r.rng.Int63n(int64(r.jitter)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
