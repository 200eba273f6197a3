package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	runs atomic.Int64
	err  error
}

func (p *countingProcessor) Name() string { return "Counting" }

func (p *countingProcessor) Run(_ context.Context) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.runs.Add(1), nil
}

func TestSchedulerSingleRun(t *testing.T) {
	processor := &countingProcessor{}

	var delivered []int64
	scheduler := New[int64](processor, 0, func(_ context.Context, report int64) error {
		delivered = append(delivered, report)
		return nil
	})

	// interval <= 0 runs once and returns
	err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), processor.runs.Load())
	assert.Equal(t, []int64{1}, delivered)
}

func TestSchedulerProcessorErrorStopsRun(t *testing.T) {
	processor := &countingProcessor{err: errors.New("ledger unreachable")}
	scheduler := New[int64](processor, 0)

	err := scheduler.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger unreachable")
}

func TestSchedulerSinkErrorDoesNotStopRun(t *testing.T) {
	processor := &countingProcessor{}
	scheduler := New[int64](processor, 0, func(_ context.Context, _ int64) error {
		return errors.New("report endpoint down")
	})

	err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), processor.runs.Load())
}

func TestSchedulerShutdownStopsTicker(t *testing.T) {
	processor := &countingProcessor{}
	scheduler := New[int64](processor, time.Hour)

	runErr := make(chan error, 1)
	go func() {
		runErr <- scheduler.Run(context.Background())
	}()

	// wait for the immediate first run before shutting down
	require.Eventually(t, func() bool {
		return processor.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.ShutdownWithTimeout(5*time.Second))
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after shutdown")
	}
	assert.Equal(t, int64(1), processor.runs.Load())
}
