package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
	retries  int
}

// EnqueueOption adjusts a single job.
type EnqueueOption func(*job)

// NoRetry runs the job once regardless of Options.MaxRetries, for calls whose failure is
// handled by the job itself.
func NoRetry() EnqueueOption {
	return func(j *job) { j.retries = 0 }
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Queued int
	Sent   uint64
	Failed uint64
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts Options
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex // guards closed and sends on jobs
	closed bool
	errs atomic.Uint64
	sent atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}

	return d
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error, opts ...EnqueueOption) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	j := job{
		ctx:      ctx,
		action:   action,
		endpoint: endpoint,
		run:      run,
		retries:  d.opts.MaxRetries,
	}
	for _, opt := range opts {
		opt(&j)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Stats reports queue depth and job outcomes so far.
func (d *Dispatcher) Stats() Stats {
	return Stats{Queued: len(d.jobs), Sent: d.sent.Load(), Failed: d.errs.Load()}
}

// Close stops workers and waits for them to finish processing queued jobs.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handleJob(j)
	}
}

// handleJob runs j until it succeeds, fails for good, runs out of attempts or exceeds
// MaxDuration. Only errors netutil.ShouldRetry accepts are retried.
func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadline, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attrs := sendLogAttrs(j)
	logger.Debug(ctx, "tg.sender", "send.start", attrs...)

	attempts := j.retries + 1
	var (
		err     error
		attempt int
	)
	for attempt = 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			d.sent.Add(1)
			level := slog.LevelDebug
			if attempt > 1 {
				level = slog.LevelInfo
			}
			logger.Event(ctx, "tg.sender", level, "send.success", append(attrs,
				slog.Int("attempt", attempt),
				slog.Int("elapsed_ms", durationToMS(time.Since(start))),
			)...)
			return
		}
		if attempt == attempts || !netutil.ShouldRetry(err) {
			break
		}
		delay := retryDelay(err, d.opts.RetryBackoff, attempt)
		logger.Debug(ctx, "tg.sender", "send.retry.backoff", append(attrs,
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error_kind", ErrorKind(err)),
		)...)
		if !sleep(deadline, delay) {
			err = errors.Join(err, deadline.Err())
			break
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail", append(attrs,
		slog.String("error", Redact(err)),
		slog.String("error_kind", ErrorKind(err)),
		slog.Int("attempts", min(attempt, attempts)),
		slog.Int("elapsed_ms", durationToMS(time.Since(start))),
	)...)
}

// retryDelay honours Telegram's flood control hint and otherwise backs off linearly.
func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return backoff * time.Duration(attempt)
}

// sleep waits for d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func sendLogAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func durationToMS(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}
