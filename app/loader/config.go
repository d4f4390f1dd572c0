package loader

import (
	"time"

	"github.com/RiseVision/rise-node/domain/dposconfig"
)

// Config holds the loader's retry and scheduling settings
type Config struct {
	// MaxAttempts is the number of consecutive failed attempts after which
	// a sync gives up.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// SyncInterval is how often the periodic sync job looks for peers
	// ahead of us.
	SyncInterval time.Duration

	// MaxForkDepth is the number of blocks a single sync may pop to reach
	// a block shared with a peer.
	MaxForkDepth uint64
}

// DefaultConfig returns the default loader configuration for the given
// network
func DefaultConfig(params *dposconfig.Params) *Config {
	return &Config{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		SyncInterval:   params.BlockTime,
		MaxForkDepth:   params.ActiveDelegates,
	}
}
