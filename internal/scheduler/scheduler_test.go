package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTrigger_RunsJobOnce(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	s.Register("job", time.Hour, func(context.Context) { runs.Add(1) })

	if err := s.Trigger(context.Background(), "job"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}

func TestTrigger_UnknownJob(t *testing.T) {
	s := New(zap.NewNop())
	if err := s.Trigger(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestStartStop_ByName(t *testing.T) {
	s := New(zap.NewNop())
	s.Register("a", 10*time.Millisecond, func(context.Context) {})
	s.Register("b", 10*time.Millisecond, func(context.Context) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, "a"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(ctx, "b"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !s.Running("a") || !s.Running("b") {
		t.Fatal("both jobs should be running")
	}

	// Stopping one job leaves the other alone.
	if err := s.Stop("a"); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if s.Running("a") {
		t.Fatal("a should be stopped")
	}
	if !s.Running("b") {
		t.Fatal("b must keep running after a is stopped")
	}

	if err := s.Stop("b"); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	s.Wait()
}

func TestStart_TicksRunJob(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	s.Register("job", 5*time.Millisecond, func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, "job"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Fatalf("runs = %d, want >= 2", runs.Load())
	}

	_ = s.Stop("job")
	s.Wait()
}

func TestRunOnce_SkipsWhilePreviousRunActive(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	block := make(chan struct{})
	s.Register("job", time.Hour, func(context.Context) {
		runs.Add(1)
		<-block
	})

	done := make(chan struct{})
	go func() {
		_ = s.Trigger(context.Background(), "job")
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// The overlapping trigger is skipped, not queued.
	if err := s.Trigger(context.Background(), "job"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1 (overlap must be skipped)", got)
	}

	close(block)
	<-done
}

func TestStop_IsIdempotent(t *testing.T) {
	s := New(zap.NewNop())
	s.Register("job", time.Hour, func(context.Context) {})

	if err := s.Stop("job"); err != nil {
		t.Fatalf("stopping a never-started job should be a no-op, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Start(ctx, "job")
	if err := s.Stop("job"); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := s.Stop("job"); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
	s.Wait()
}
