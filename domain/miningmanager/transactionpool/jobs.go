package transactionpool

import (
	"context"

	"github.com/RiseVision/rise-node/util/jobs"
	"github.com/RiseVision/rise-node/util/sequence"
)

const (
	expiryJobName        = "transactionPoolExpiry"
	bundleReleaseJobName = "transactionPoolBundleRelease"
)

// RegisterJobs schedules the periodic expiry sweep, inside chainSequence,
// and the bundle release, inside the balances sequence
func (tp *TransactionPool) RegisterJobs(scheduler *jobs.Scheduler, chainSequence *sequence.Sequence) error {
	err := scheduler.Register(expiryJobName, tp.config.ExpiryScanInterval, tp.config.ExpiryScanInterval,
		func(ctx context.Context) error {
			return chainSequence.AddAndWait(ctx, tp.ExpireTransactions)
		})
	if err != nil {
		return err
	}
	return scheduler.Register(bundleReleaseJobName, tp.config.BundleReleaseInterval, tp.config.BundleReleaseInterval,
		func(ctx context.Context) error {
			return tp.balancesSequence.AddAndWait(ctx, tp.ProcessBundled)
		})
}
