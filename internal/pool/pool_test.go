package pool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/pool"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Test: a bounded pool runs every submitted task.
func TestPool_BoundedRunsTasks(t *testing.T) {
	wp := pool.NewWorkerPool(2, 8, zap.NewNop())
	wp.Start(context.Background())

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		if err := wp.Submit(func(ctx context.Context) { done.Add(1) }); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	wp.Stop()
	if done.Load() != 5 {
		t.Errorf("expected 5 tasks run, got %d", done.Load())
	}
}

// Test: unbounded mode never rejects and still waits on Stop.
func TestPool_UnboundedRunsTasks(t *testing.T) {
	wp := pool.NewWorkerPool(0, 0, zap.NewNop())
	wp.Start(context.Background())

	if wp.Bounded() {
		t.Fatal("size 0 should be unbounded")
	}

	var done atomic.Int32
	for i := 0; i < 50; i++ {
		if err := wp.Submit(func(ctx context.Context) {
			time.Sleep(time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	wp.Stop()
	if done.Load() != 50 {
		t.Errorf("expected 50 tasks run, got %d", done.Load())
	}
}

// Test: a full queue rejects with ErrQueueFull.
func TestPool_QueueFull(t *testing.T) {
	wp := pool.NewWorkerPool(1, 1, zap.NewNop())
	wp.Start(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	blocker := func(ctx context.Context) {
		once.Do(func() { close(started) })
		<-release
	}

	// First task occupies the worker, second fills the queue.
	if err := wp.Submit(blocker); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	<-started
	if err := wp.Submit(blocker); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	err := wp.Submit(blocker)
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	wp.Stop()
}

// Test: a panicking task does not kill the worker.
func TestPool_PanicRecovered(t *testing.T) {
	wp := pool.NewWorkerPool(1, 4, zap.NewNop())
	wp.Start(context.Background())

	var after atomic.Bool
	_ = wp.Submit(func(ctx context.Context) { panic("boom") })
	_ = wp.Submit(func(ctx context.Context) { after.Store(true) })

	waitFor(t, after.Load)
	wp.Stop()
}

// Test: Submit after Stop is rejected.
func TestPool_SubmitAfterStop(t *testing.T) {
	for _, size := range []int{0, 2} {
		wp := pool.NewWorkerPool(size, 4, zap.NewNop())
		wp.Start(context.Background())
		wp.Stop()

		if err := wp.Submit(func(ctx context.Context) {}); !errors.Is(err, pool.ErrStopped) {
			t.Errorf("size %d: expected ErrStopped, got %v", size, err)
		}
	}
}

// Test: tasks receive the pool context, not a caller context.
func TestPool_TaskContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "pool")

	wp := pool.NewWorkerPool(1, 1, zap.NewNop())
	wp.Start(ctx)

	got := make(chan any, 1)
	_ = wp.Submit(func(ctx context.Context) { got <- ctx.Value(key{}) })

	select {
	case v := <-got:
		if v != "pool" {
			t.Errorf("expected pool context, got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	wp.Stop()
}
