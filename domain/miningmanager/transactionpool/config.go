package transactionpool

import (
	"time"

	"github.com/RiseVision/rise-node/domain/dposconfig"
)

const (
	defaultMaxTxsPerQueue        = 1000
	defaultBundleReleaseInterval = 5 * time.Second
	defaultBundleReleaseLimit    = 25
	defaultExpiryScanInterval    = 30 * time.Second

	// maxMultisignatureTransactionsPerFill caps how many multisignature
	// transactions a single FillPool moves to the unconfirmed queue
	maxMultisignatureTransactionsPerFill = 5

	// coSignedExpiryFactor multiplies the default expiry of transactions
	// that carry co-signatures
	coSignedExpiryFactor = 8
)

// Config represents a transaction pool config
type Config struct {
	MaxTxsPerQueue        int
	MaxTxsPerBlock        int
	BundleReleaseInterval time.Duration
	BundleReleaseLimit    int
	DefaultExpiry         time.Duration
	ExpiryScanInterval    time.Duration
}

// DefaultConfig returns the default pool config for the given network
func DefaultConfig(params *dposconfig.Params) *Config {
	return &Config{
		MaxTxsPerQueue:        defaultMaxTxsPerQueue,
		MaxTxsPerBlock:        params.MaxTxsPerBlock,
		BundleReleaseInterval: defaultBundleReleaseInterval,
		BundleReleaseLimit:    defaultBundleReleaseLimit,
		DefaultExpiry:         params.UnconfirmedTransactionTimeout,
		ExpiryScanInterval:    defaultExpiryScanInterval,
	}
}
