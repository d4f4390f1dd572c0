// Package loader brings the local chain up to date with the network by
// fetching and processing the blocks of peers that are ahead of us.
package loader

import (
	"context"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/util/jobs"
	"github.com/pkg/errors"
)

const jobName = "loaderSync"

// Loader synchronizes the chain from peers
type Loader struct {
	config    *Config
	consensus consensus.Consensus
	peers     PeerProvider
	fetcher   BlockFetcher
	sleep     func(ctx context.Context, duration time.Duration) error
}

// New returns a new Loader
func New(config *Config, consensus consensus.Consensus, peers PeerProvider, fetcher BlockFetcher) *Loader {
	return &Loader{
		config:    config,
		consensus: consensus,
		peers:     peers,
		fetcher:   fetcher,
		sleep:     sleep,
	}
}

// RegisterJob schedules a periodic Sync
func (l *Loader) RegisterJob(scheduler *jobs.Scheduler) error {
	timeout := l.config.MaxBackoff * time.Duration(l.config.MaxAttempts+1)
	return scheduler.Register(jobName, l.config.SyncInterval, timeout, l.Sync)
}

type syncState struct {
	// failedPeers maps the endpoints that failed during this sync to the
	// order in which they last failed
	failedPeers map[string]int
	failures    int
	attempts    int
	backoff     time.Duration
	popped      uint64
}

// Sync processes blocks from peers reporting a greater height than ours
// until no such peer remains. Peers that fail are not selected again
// while another peer is ahead, and consecutive failures are retried with
// exponential backoff up to MaxAttempts times. Sync returns early when cleanup is
// requested, after finishing the block being processed.
func (l *Loader) Sync(ctx context.Context) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Sync")
	defer onEnd()

	appState := l.consensus.AppState()
	appState.SetSyncing(true)
	defer appState.SetSyncing(false)

	state := &syncState{
		failedPeers: make(map[string]int),
		backoff:     l.config.InitialBackoff,
	}
	for {
		if appState.CleanupRequested() {
			log.Infof("Cleanup requested, stopping sync")
			return nil
		}

		lastBlock, err := l.consensus.LastBlock()
		if err != nil {
			return err
		}
		peer, err := l.choosePeer(lastBlock.Height, state.failedPeers)
		if err != nil {
			return err
		}
		if peer == nil {
			log.Debugf("No peer is ahead of height %d", lastBlock.Height)
			return nil
		}

		err = l.syncFromPeer(ctx, peer, lastBlock, state)
		if err == nil {
			state.attempts = 0
			state.backoff = l.config.InitialBackoff
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		state.attempts++
		if state.attempts >= l.config.MaxAttempts {
			return errors.Wrapf(err, "sync failed after %d attempts", state.attempts)
		}
		log.Warnf("Sync attempt %d from %s failed: %s. Retrying in %s",
			state.attempts, peer.Endpoint, err, state.backoff)
		state.failures++
		state.failedPeers[peer.Endpoint] = state.failures

		err = l.sleep(ctx, state.backoff)
		if err != nil {
			return err
		}
		state.backoff *= 2
		if state.backoff > l.config.MaxBackoff {
			state.backoff = l.config.MaxBackoff
		}
	}
}

// choosePeer returns the highest peer above height that has not failed
// during this sync. If every such peer failed, the one whose last failure
// is the oldest is retried. It returns nil if no peer is above height.
func (l *Loader) choosePeer(height uint64, failedPeers map[string]int) (*Peer, error) {
	candidates, err := l.peers.Peers(func(peer *Peer) bool {
		return peer.Height > height
	})
	if err != nil {
		return nil, err
	}

	var best, fallback *Peer
	for _, peer := range candidates {
		if failure, ok := failedPeers[peer.Endpoint]; ok {
			if fallback == nil || failure < failedPeers[fallback.Endpoint] {
				fallback = peer
			}
			continue
		}
		if best == nil || peer.Height > best.Height {
			best = peer
		}
	}
	if best == nil && fallback != nil {
		log.Debugf("Every peer ahead of us failed, retrying %s", fallback.Endpoint)
		return fallback, nil
	}
	return best, nil
}

func (l *Loader) syncFromPeer(ctx context.Context, peer *Peer, lastBlock *externalapi.DomainBlock,
	state *syncState) error {

	blocks, err := l.fetcher.BlocksAfter(ctx, peer, lastBlock.ID)
	if errors.Is(err, ErrUnknownBlock) {
		return l.popForkedBlock(ctx, peer, lastBlock, state)
	}
	if err != nil {
		return errors.Wrapf(err, "failed fetching blocks after %s from %s", lastBlock.ID, peer.Endpoint)
	}
	if len(blocks) == 0 {
		return errors.Errorf("%s reported height %d but returned no blocks after height %d",
			peer.Endpoint, peer.Height, lastBlock.Height)
	}
	if blocks[0].PreviousBlock != lastBlock.ID {
		return l.popForkedBlock(ctx, peer, lastBlock, state)
	}

	log.Infof("Processing %d blocks from %s starting at height %d",
		len(blocks), peer.Endpoint, blocks[0].Height)
	for _, block := range blocks {
		if l.consensus.AppState().CleanupRequested() {
			return nil
		}
		err := l.consensus.ProcessBlock(ctx, block)
		if err != nil {
			return errors.Wrapf(err, "failed processing block %s at height %d from %s",
				block.ID, block.Height, peer.Endpoint)
		}
		state.popped = 0
	}
	return nil
}

// popForkedBlock deletes our tip, which peer is not building on
func (l *Loader) popForkedBlock(ctx context.Context, peer *Peer, lastBlock *externalapi.DomainBlock,
	state *syncState) error {

	if state.popped >= l.config.MaxForkDepth {
		return errors.Errorf("%s is on a fork deeper than %d blocks", peer.Endpoint, l.config.MaxForkDepth)
	}
	log.Warnf("%s does not build on block %s at height %d, deleting it",
		peer.Endpoint, lastBlock.ID, lastBlock.Height)
	_, err := l.consensus.DeleteLastBlock(ctx)
	if err != nil {
		return err
	}
	state.popped++
	return nil
}

func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
