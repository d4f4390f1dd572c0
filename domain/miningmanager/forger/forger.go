// Package forger produces blocks in the slots owned by the node's
// delegates.
package forger

import (
	"context"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/miningmanager"
	"github.com/RiseVision/rise-node/util/jobs"
)

const (
	jobName     = "forger"
	jobInterval = time.Second
)

// Forger checks every slot whether one of its delegates owns it, and if
// so forges and processes a block for it
type Forger struct {
	consensus     consensus.Consensus
	miningManager miningmanager.MiningManager
	keyPairs      map[string]*keys.KeyPair
	now           func() time.Time
}

// New returns a Forger forging with keyPairs
func New(consensus consensus.Consensus, miningManager miningmanager.MiningManager, keyPairs []*keys.KeyPair) *Forger {
	keyPairsByPublicKey := make(map[string]*keys.KeyPair, len(keyPairs))
	for _, keyPair := range keyPairs {
		keyPairsByPublicKey[keyPair.PublicKeyHex()] = keyPair
	}
	return &Forger{
		consensus:     consensus,
		miningManager: miningManager,
		keyPairs:      keyPairsByPublicKey,
		now:           time.Now,
	}
}

// RegisterJob schedules the forging loop. It does nothing when there are
// no forging keys.
func (f *Forger) RegisterJob(scheduler *jobs.Scheduler) error {
	if len(f.keyPairs) == 0 {
		log.Infof("No forging secrets configured, forging is disabled")
		return nil
	}
	log.Infof("Forging enabled for %d delegates", len(f.keyPairs))

	timeout := f.consensus.Params().BlockTime
	return scheduler.Register(jobName, jobInterval, timeout, func(ctx context.Context) error {
		_, err := f.Forge(ctx)
		return err
	})
}

// Forge forges a block for the current slot if one of the forger's
// delegates owns it and no block was forged in it yet. It returns the
// forged block, or nil if there was nothing to forge.
func (f *Forger) Forge(ctx context.Context) (*externalapi.DomainBlock, error) {
	appState := f.consensus.AppState()
	if !appState.IsLoaded() {
		log.Debugf("Skipping forging: the ledger is not loaded yet")
		return nil, nil
	}
	if appState.IsSyncing() {
		log.Debugf("Skipping forging: the node is syncing")
		return nil, nil
	}

	slots := f.consensus.Slots()
	currentSlot := slots.CurrentSlot(f.now())

	lastBlock, err := f.consensus.LastBlock()
	if err != nil {
		return nil, err
	}
	if slots.SlotNumber(lastBlock.Timestamp) >= currentSlot {
		log.Tracef("Skipping forging: slot %d already has a block", currentSlot)
		return nil, nil
	}

	delegateKey, err := f.consensus.SlotDelegate(lastBlock.Height+1, currentSlot)
	if err != nil {
		return nil, err
	}
	keyPair, ok := f.keyPairs[delegateKey]
	if !ok {
		log.Tracef("Slot %d belongs to %s", currentSlot, delegateKey)
		return nil, nil
	}

	block, err := f.miningManager.GetBlockTemplate(ctx, keyPair, slots.SlotTime(currentSlot))
	if err != nil {
		return nil, err
	}
	err = f.consensus.ProcessBlock(ctx, block)
	if err != nil {
		return nil, err
	}
	log.Infof("Forged block %s at height %d slot %d with %d transactions",
		block.ID, block.Height, currentSlot, len(block.Transactions))
	return block, nil
}
