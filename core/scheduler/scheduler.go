package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/logger/slogx"
)

// Processor executes one policy run and produces a report of type T.
type Processor[T any] interface {
	Name() string
	Run(ctx context.Context) (T, error)
}

// Sink receives each produced report after a run completes.
type Sink[T any] func(ctx context.Context, report T) error

// Scheduler drives a Processor on a fixed interval. A non-positive
// interval runs the processor exactly once and returns.
type Scheduler[T any] struct {
	processor Processor[T]
	interval  time.Duration
	sinks     []Sink[T]

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func New[T any](processor Processor[T], interval time.Duration, sinks ...Sink[T]) *Scheduler[T] {
	return &Scheduler[T]{
		processor: processor,
		interval:  interval,
		sinks:     sinks,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (s *Scheduler[T]) Shutdown() error {
	return s.ShutdownWithContext(context.Background())
}

func (s *Scheduler[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.ShutdownWithContext(ctx)
}

func (s *Scheduler[T]) ShutdownWithContext(ctx context.Context) (err error) {
	s.quitOnce.Do(func() {
		close(s.quit)
		select {
		case <-s.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "scheduler shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "scheduler shutdown context canceled")
		}
	})
	return
}

func (s *Scheduler[T]) Run(ctx context.Context) error {
	defer close(s.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "scheduler"),
		slog.String("processor", s.processor.Name()),
	)

	// First run fires immediately, the ticker paces the rest.
	if err := s.process(ctx); err != nil {
		logger.ErrorContext(ctx, "Scheduler failed while processing", slogx.Error(err))
		return errors.Wrap(err, "process failed")
	}
	if s.interval <= 0 {
		logger.InfoContext(ctx, "No run interval configured, stopping after single run")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping scheduler")
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Scheduler failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next run interval")
		}
	}
}

func (s *Scheduler[T]) process(ctx context.Context) error {
	startAt := time.Now()
	report, err := s.processor.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "run failed")
	}

	for _, sink := range s.sinks {
		// Sinks are best-effort: a report delivery failure never stops the
		// schedule.
		if err := sink(ctx, report); err != nil {
			logger.WarnContext(ctx, "Failed to deliver run report", slogx.Error(err))
		}
	}

	logger.InfoContext(ctx, "Run completed", slog.Duration("duration", time.Since(startAt)))
	return nil
}
