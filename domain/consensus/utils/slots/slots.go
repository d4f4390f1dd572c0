// Package slots maps wall-clock time onto forging slots. A slot is a
// BlockTime-long window counted from the network epoch, and slot n belongs
// to position n mod ActiveDelegates of the round's forging order.
package slots

import (
	"time"
)

// Slots converts between wall-clock time, epoch time and slot numbers
type Slots struct {
	epoch           time.Time
	blockTime       uint32
	activeDelegates uint64
}

// New returns a new Slots for the given network epoch, block time and
// active delegate count
func New(epoch time.Time, blockTime time.Duration, activeDelegates uint64) *Slots {
	return &Slots{
		epoch:           epoch,
		blockTime:       uint32(blockTime / time.Second),
		activeDelegates: activeDelegates,
	}
}

// EpochTime returns the number of seconds elapsed between the epoch and t.
// Times before the epoch map to 0.
func (s *Slots) EpochTime(t time.Time) uint32 {
	if t.Before(s.epoch) {
		return 0
	}
	return uint32(t.Sub(s.epoch) / time.Second)
}

// RealTime returns the wall-clock time of an epoch timestamp
func (s *Slots) RealTime(epochTime uint32) time.Time {
	return s.epoch.Add(time.Duration(epochTime) * time.Second)
}

// SlotNumber returns the slot an epoch timestamp falls into
func (s *Slots) SlotNumber(epochTime uint32) uint64 {
	return uint64(epochTime / s.blockTime)
}

// SlotTime returns the epoch timestamp at which slot begins
func (s *Slots) SlotTime(slot uint64) uint32 {
	return uint32(slot) * s.blockTime
}

// CurrentSlot returns the slot that contains now
func (s *Slots) CurrentSlot(now time.Time) uint64 {
	return s.SlotNumber(s.EpochTime(now))
}

// NextSlot returns the slot following the one that contains now
func (s *Slots) NextSlot(now time.Time) uint64 {
	return s.CurrentSlot(now) + 1
}

// DelegateIndex returns the position in the round's forging order
// of the delegate that owns slot
func (s *Slots) DelegateIndex(slot uint64) uint64 {
	return slot % s.activeDelegates
}
