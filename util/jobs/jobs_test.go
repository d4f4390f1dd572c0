package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsPeriodically(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var runs int32
	err := s.Register("count", 5*time.Millisecond, time.Second, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Register: %s", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("job ran only %d times", atomic.LoadInt32(&runs))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSchedulerRunsDoNotOverlap(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var running, overlaps, runs int32
	err := s.Register("slow", time.Millisecond, time.Second, func(ctx context.Context) error {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&runs, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Register: %s", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("job ran only %d times", atomic.LoadInt32(&runs))
		}
		time.Sleep(time.Millisecond)
	}
	if atomic.LoadInt32(&overlaps) != 0 {
		t.Fatalf("job runs overlapped %d times", overlaps)
	}
}

func TestSchedulerTimeoutCancelsContext(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	cancelled := make(chan struct{}, 1)
	err := s.Register("stuck", time.Millisecond, 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		select {
		case cancelled <- struct{}{}:
		default:
		}
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Register: %s", err)
	}

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatalf("job context was never cancelled")
	}
}

func TestSchedulerRejectsDuplicates(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	noop := func(ctx context.Context) error { return nil }
	if err := s.Register("job", time.Hour, 0, noop); err != nil {
		t.Fatalf("Register: %s", err)
	}
	if err := s.Register("job", time.Hour, 0, noop); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	s.Unregister("job")
	if err := s.Register("job", time.Hour, 0, noop); err != nil {
		t.Fatalf("Register after Unregister: %s", err)
	}
}
