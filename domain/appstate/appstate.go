// Package appstate holds the node wide flags that several components
// consult: whether the ledger finished loading, whether the node is
// syncing, whether a round tick is in progress and whether a cleanup
// (shutdown or snapshot stop) was requested.
package appstate

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrAlreadyTicking is returned when a round tick is attempted while
// another one is in progress
var ErrAlreadyTicking = errors.New("a round tick is already in progress")

// State is shared by pointer between the components of a single
// node instance
type State struct {
	loaded           int32
	syncing          int32
	ticking          int32
	cleanupRequested int32
}

// New returns a State with every flag unset
func New() *State {
	return &State{}
}

// TryStartTicking sets the ticking flag. It returns ErrAlreadyTicking if
// the flag was already set.
func (s *State) TryStartTicking() error {
	if !atomic.CompareAndSwapInt32(&s.ticking, 0, 1) {
		return errors.WithStack(ErrAlreadyTicking)
	}
	return nil
}

// StopTicking clears the ticking flag
func (s *State) StopTicking() {
	atomic.StoreInt32(&s.ticking, 0)
}

// IsTicking returns whether a round tick is in progress
func (s *State) IsTicking() bool {
	return atomic.LoadInt32(&s.ticking) == 1
}

// SetLoaded marks whether the ledger finished loading
func (s *State) SetLoaded(loaded bool) {
	atomic.StoreInt32(&s.loaded, boolToInt32(loaded))
}

// IsLoaded returns whether the ledger finished loading
func (s *State) IsLoaded() bool {
	return atomic.LoadInt32(&s.loaded) == 1
}

// SetSyncing marks whether the node is syncing from peers
func (s *State) SetSyncing(syncing bool) {
	atomic.StoreInt32(&s.syncing, boolToInt32(syncing))
}

// IsSyncing returns whether the node is syncing from peers
func (s *State) IsSyncing() bool {
	return atomic.LoadInt32(&s.syncing) == 1
}

// RequestCleanup asks long running operations to stop after their
// current unit of work
func (s *State) RequestCleanup() {
	atomic.StoreInt32(&s.cleanupRequested, 1)
}

// CleanupRequested returns whether RequestCleanup was called
func (s *State) CleanupRequested() bool {
	return atomic.LoadInt32(&s.cleanupRequested) == 1
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
