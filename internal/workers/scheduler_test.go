package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltaoption/pkg/errors"
)

type stubWorker struct {
	*BaseWorker
	runs    int32
	runFunc func(ctx context.Context) error
}

func newStubWorker(name string, interval time.Duration, enabled bool) *stubWorker {
	return &stubWorker{
		BaseWorker: NewBaseWorker(name, interval, enabled),
	}
}

func (w *stubWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&w.runs, 1)
	if w.runFunc != nil {
		return w.runFunc(ctx)
	}
	return nil
}

func (w *stubWorker) Runs() int {
	return int(atomic.LoadInt32(&w.runs))
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler := NewScheduler()

	worker := newStubWorker("collector", 50*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	// First run fires immediately, then ticks.
	require.Eventually(t, func() bool {
		return worker.Runs() >= 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	assert.False(t, scheduler.IsRunning())
}

func TestSchedulerSkipsDisabledWorkers(t *testing.T) {
	scheduler := NewScheduler()

	enabled := newStubWorker("enabled", 50*time.Millisecond, true)
	disabled := newStubWorker("disabled", 50*time.Millisecond, false)

	scheduler.RegisterWorker(enabled)
	scheduler.RegisterWorker(disabled)

	require.NoError(t, scheduler.Start(context.Background()))

	require.Eventually(t, func() bool {
		return enabled.Runs() > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	assert.Equal(t, 0, disabled.Runs())
}

func TestSchedulerRecordsWorkerHealth(t *testing.T) {
	scheduler := NewScheduler()

	worker := newStubWorker("flaky", 50*time.Millisecond, true)
	worker.runFunc = func(ctx context.Context) error {
		return errors.New("boom")
	}
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))

	require.Eventually(t, func() bool {
		return worker.Runs() >= 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	health := worker.Health()
	assert.Greater(t, health.ErrorCount, int64(0))
	assert.Error(t, health.LastError)
	assert.False(t, health.LastRun.IsZero())
}

func TestSchedulerSurvivesPanickingWorker(t *testing.T) {
	scheduler := NewScheduler()

	worker := newStubWorker("panicky", 50*time.Millisecond, true)
	worker.runFunc = func(ctx context.Context) error {
		panic("boom")
	}
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))

	require.Eventually(t, func() bool {
		return worker.Runs() >= 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())
}

func TestSchedulerCannotStartTwice(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newStubWorker("collector", 50*time.Millisecond, true))

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))
	assert.Error(t, scheduler.Start(ctx))

	require.NoError(t, scheduler.Stop())
}

func TestSchedulerContextCancellation(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newStubWorker("collector", 50*time.Millisecond, true))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	cancel()

	// Stop works even after the parent context is gone.
	require.NoError(t, scheduler.Stop())
}

func TestSchedulerGetWorkers(t *testing.T) {
	scheduler := NewScheduler()

	scheduler.RegisterWorker(newStubWorker("price_collector", 50*time.Millisecond, true))
	scheduler.RegisterWorker(newStubWorker("expiry_monitor", 100*time.Millisecond, false))

	workers := scheduler.GetWorkers()
	require.Len(t, workers, 2)
	assert.Equal(t, "price_collector", workers[0].Name())
	assert.Equal(t, "expiry_monitor", workers[1].Name())
}
