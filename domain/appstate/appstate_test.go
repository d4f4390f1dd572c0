package appstate

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestTicking(t *testing.T) {
	s := New()
	if err := s.TryStartTicking(); err != nil {
		t.Fatalf("TryStartTicking: %s", err)
	}
	if err := s.TryStartTicking(); !errors.Is(err, ErrAlreadyTicking) {
		t.Fatalf("expected ErrAlreadyTicking, got %v", err)
	}
	s.StopTicking()
	if s.IsTicking() {
		t.Fatalf("expected ticking to be cleared")
	}
	if err := s.TryStartTicking(); err != nil {
		t.Fatalf("TryStartTicking after StopTicking: %s", err)
	}
}

func TestTickingIsExclusive(t *testing.T) {
	s := New()
	var started int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryStartTicking() == nil {
				atomic.AddInt32(&started, 1)
			}
		}()
	}
	wg.Wait()
	if started != 1 {
		t.Fatalf("expected exactly one tick to start, got %d", started)
	}
}

func TestFlagsAreIndependent(t *testing.T) {
	first := New()
	second := New()

	first.SetLoaded(true)
	first.SetSyncing(true)
	first.RequestCleanup()

	if !first.IsLoaded() || !first.IsSyncing() || !first.CleanupRequested() {
		t.Fatalf("expected flags to be set on the first state")
	}
	if second.IsLoaded() || second.IsSyncing() || second.CleanupRequested() {
		t.Fatalf("states must not share flags")
	}

	first.SetSyncing(false)
	if first.IsSyncing() {
		t.Fatalf("expected syncing to be cleared")
	}
}
