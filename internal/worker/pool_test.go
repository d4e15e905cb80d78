package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/concretegen/internal/pipeline"
)

// mockGenerator simulates texture generation for testing
type mockGenerator struct {
	delay     time.Duration
	failNames map[string]bool // names that should fail
	callCount atomic.Int32
}

func (m *mockGenerator) Generate(ctx context.Context, name string, params pipeline.Params, force bool) (string, string, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return "", "", ctx.Err()
	case <-time.After(m.delay):
	}

	if m.failNames != nil && m.failNames[name] {
		return "", "", errors.New("simulated failure")
	}

	return "/tmp/" + name + "_bump.png", "/tmp/" + name + "_normal.png", nil
}

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			Name:   fmt.Sprintf("concrete_%d", i),
			Params: pipeline.DefaultParams(16, 16, int64(i)),
		}
	}
	return tasks
}

func TestPool_BasicExecution(t *testing.T) {
	gen := &mockGenerator{delay: 10 * time.Millisecond}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	tasks := makeTasks(3)
	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %s: %v", r.Task.Name, r.Err)
		}
		if r.BumpPath == "" || r.NormalPath == "" {
			t.Errorf("Expected paths for %s, got %q and %q", r.Task.Name, r.BumpPath, r.NormalPath)
		}
	}

	if gen.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d generator calls, got %d", len(tasks), gen.callCount.Load())
	}
}

func TestPool_Parallelism(t *testing.T) {
	// Use a longer delay to ensure parallelism is tested
	gen := &mockGenerator{delay: 50 * time.Millisecond}

	pool := New(Config{
		Workers:   4,
		Generator: gen,
	})

	tasks := makeTasks(8)

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each, should take ~100ms (2 batches)
	// Allow some margin for overhead
	maxExpected := 200 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	t.Logf("Processed %d tasks with %d workers in %v", len(tasks), 4, elapsed)
}

func TestPool_ErrorHandling(t *testing.T) {
	gen := &mockGenerator{
		delay:     10 * time.Millisecond,
		failNames: map[string]bool{"concrete_1": true},
	}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	tasks := makeTasks(3)
	results := pool.Run(context.Background(), tasks)

	// Should still get all results
	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	var successCount, failCount int
	for _, r := range results {
		if r.Err != nil {
			failCount++
			if r.Task.Name != "concrete_1" {
				t.Errorf("Unexpected failure for %s", r.Task.Name)
			}
		} else {
			successCount++
		}
	}

	if successCount != 2 {
		t.Errorf("Expected 2 successes, got %d", successCount)
	}
	if failCount != 1 {
		t.Errorf("Expected 1 failure, got %d", failCount)
	}
}

func TestPool_Cancellation(t *testing.T) {
	gen := &mockGenerator{delay: 100 * time.Millisecond}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	tasks := makeTasks(10)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	results := pool.Run(ctx, tasks)

	// Tasks fed before the cancel produce results; the feed stops at the
	// cancel, so later tasks may never be enqueued at all.
	if len(results) > len(tasks) {
		t.Errorf("Expected at most %d results, got %d", len(tasks), len(results))
	}

	var cancelled int
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("Expected at least one cancelled task")
	}
}

func TestPool_PreCancelledContext(t *testing.T) {
	gen := &mockGenerator{delay: time.Millisecond}

	pool := New(Config{
		Workers:   2,
		Generator: gen,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan []Result, 1)
	go func() {
		done <- pool.Run(ctx, makeTasks(8))
	}()

	// Run must terminate even though the feed stops early: the task
	// channel is closed regardless, so workers drain and exit.
	var results []Result
	select {
	case results = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not terminate after cancellation")
	}

	if len(results) > 8 {
		t.Errorf("Expected at most 8 results, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("Expected context.Canceled for %s, got %v", r.Task.Name, r.Err)
		}
	}
}

func TestPool_ZeroWorkers(t *testing.T) {
	pool := New(Config{
		Workers:   0,
		Generator: &mockGenerator{},
	})

	tasks := makeTasks(2)
	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results with defaulted worker count, got %d", len(tasks), len(results))
	}
}

func TestPool_NoTasks(t *testing.T) {
	pool := New(Config{
		Workers:   2,
		Generator: &mockGenerator{},
	})

	if results := pool.Run(context.Background(), nil); results != nil {
		t.Errorf("Expected nil results for no tasks, got %v", results)
	}
}

func TestPool_ProgressCallback(t *testing.T) {
	gen := &mockGenerator{delay: time.Millisecond}

	var calls atomic.Int32
	pool := New(Config{
		Workers:   2,
		Generator: gen,
		OnProgress: func(completed, total, failed int) {
			calls.Add(1)
			if total != 4 {
				t.Errorf("Expected total 4, got %d", total)
			}
		},
	})

	pool.Run(context.Background(), makeTasks(4))

	if calls.Load() != 4 {
		t.Errorf("Expected 4 progress callbacks, got %d", calls.Load())
	}
}
