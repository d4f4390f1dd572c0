package slots

import (
	"testing"
	"time"
)

func TestSlots(t *testing.T) {
	epoch := time.Date(2016, 5, 24, 17, 0, 0, 0, time.UTC)
	s := New(epoch, 30*time.Second, 101)

	now := epoch.Add(95 * time.Second)
	if epochTime := s.EpochTime(now); epochTime != 95 {
		t.Fatalf("EpochTime: got %d, want 95", epochTime)
	}
	if slot := s.CurrentSlot(now); slot != 3 {
		t.Fatalf("CurrentSlot: got %d, want 3", slot)
	}
	if slot := s.NextSlot(now); slot != 4 {
		t.Fatalf("NextSlot: got %d, want 4", slot)
	}
	if slotTime := s.SlotTime(3); slotTime != 90 {
		t.Fatalf("SlotTime: got %d, want 90", slotTime)
	}
	if !s.RealTime(90).Equal(epoch.Add(90 * time.Second)) {
		t.Fatalf("RealTime: got %s", s.RealTime(90))
	}
	if index := s.DelegateIndex(205); index != 3 {
		t.Fatalf("DelegateIndex: got %d, want 3", index)
	}
	if epochTime := s.EpochTime(epoch.Add(-time.Hour)); epochTime != 0 {
		t.Fatalf("EpochTime before the epoch: got %d, want 0", epochTime)
	}
}
