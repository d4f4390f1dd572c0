package roundmanager

import (
	"encoding/hex"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/pkg/errors"
)

func hexToBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed public key %s", s)
	}
	return b, nil
}

// Tick records block's forging and, when block closes its round, settles
// the round
func (rm *roundManager) Tick(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	err := rm.appState.TryStartTicking()
	if err != nil {
		return err
	}
	defer rm.appState.StopTicking()

	rm.roundStore.StageRecord(stagingArea, &externalapi.DomainRoundRecord{
		Height:             block.Height,
		GeneratorPublicKey: block.GeneratorPublicKey,
		Fee:                block.TotalFee,
		Reward:             block.Reward,
	})

	_, err = rm.accountManager.Merge(stagingArea, hashing.AddressFromPublicKey(block.GeneratorPublicKey),
		&model.AccountDiff{ProducedBlocks: 1})
	if err != nil {
		return errors.Wrapf(err, "cannot merge the generator of block %s", block.ID)
	}

	finishing := rm.IsRoundFinishing(block.Height)
	round := rm.CalcRound(block.Height)
	if finishing {
		err = rm.land(stagingArea, block, false)
		if err != nil {
			return err
		}
	}

	rm.chainStateStore.StageTickHeight(stagingArea, block.Height)

	if finishing {
		log.Infof("Finished round %d at block %s (height %d)", round, block.ID, block.Height)
		rm.notifyRoundFinished(round, block)

		if rm.snapshotRound != 0 && round == rm.snapshotRound {
			err = rm.truncateAbove(stagingArea, block.Height)
			if err != nil {
				return err
			}
			log.Infof("Snapshot round %d reached, requesting cleanup", round)
			rm.appState.RequestCleanup()
		}
	}
	return nil
}

// BackwardTick reverts Tick for block, the chain falling back to
// previousBlock
func (rm *roundManager) BackwardTick(stagingArea *model.StagingArea, block, previousBlock *externalapi.DomainBlock) error {
	err := rm.appState.TryStartTicking()
	if err != nil {
		return err
	}
	defer rm.appState.StopTicking()

	if rm.IsRoundFinishing(block.Height) {
		err = rm.land(stagingArea, block, true)
		if err != nil {
			return err
		}
		log.Infof("Reverted round %d at block %s (height %d)", rm.CalcRound(block.Height), block.ID, block.Height)
	}

	_, err = rm.accountManager.Merge(stagingArea, hashing.AddressFromPublicKey(block.GeneratorPublicKey),
		&model.AccountDiff{ProducedBlocks: -1})
	if err != nil {
		return errors.Wrapf(err, "cannot unmerge the generator of block %s", block.ID)
	}
	rm.roundStore.DeleteRecord(stagingArea, block.Height)
	rm.chainStateStore.StageTickHeight(stagingArea, previousBlock.Height)
	return nil
}

// land settles or, when backwards is set, unsettles the round closed by
// block
func (rm *roundManager) land(stagingArea *model.StagingArea, block *externalapi.DomainBlock, backwards bool) error {
	if backwards {
		previousWeights, err := rm.roundStore.VoteWeights(rm.databaseContext, stagingArea, block.Height)
		if err != nil {
			return errors.Wrapf(err, "missing the vote weights preceding block %s", block.ID)
		}
		err = rm.accountManager.RestoreVoteWeights(stagingArea, previousWeights)
		if err != nil {
			return err
		}
		rm.roundStore.DeleteVoteWeights(stagingArea, block.Height)
	}

	summary, err := rm.SumRound(stagingArea, block.Height)
	if err != nil {
		return err
	}

	sign := int64(1)
	if backwards {
		sign = -1
	}

	err = rm.distribute(stagingArea, summary, sign)
	if err != nil {
		return err
	}

	// The genesis block has no forging order to miss
	if block.Height != 1 {
		outsiders, err := rm.GetOutsiders(stagingArea, summary.Round, summary.RoundDelegates)
		if err != nil {
			return err
		}
		for _, address := range outsiders {
			_, err = rm.accountManager.Merge(stagingArea, address, &model.AccountDiff{MissedBlocks: sign})
			if err != nil {
				return errors.Wrapf(err, "cannot update the missed blocks of %s", address)
			}
		}
		log.Debugf("Round %d has %d outsiders", summary.Round, len(outsiders))
	}

	if !backwards {
		previousWeights, err := rm.accountManager.RecalculateVoteWeights(stagingArea)
		if err != nil {
			return err
		}
		rm.roundStore.StageVoteWeights(stagingArea, block.Height, previousWeights)
	}
	return nil
}

// distribute credits, or debits when sign is negative, every forger of
// the round with its fee share and reward. The fee remainder goes to the
// last forger.
func (rm *roundManager) distribute(stagingArea *model.StagingArea, summary *externalapi.RoundSummary, sign int64) error {
	changes := NewRoundChanges(summary.RoundFees, summary.RoundRewards, rm.activeDelegates)
	last := len(summary.RoundDelegates) - 1
	for i, publicKey := range summary.RoundDelegates {
		fees, reward := changes.At(i)
		if i == last {
			fees += changes.FeesRemaining()
		}
		amount := sign * int64(fees+reward)
		_, err := rm.accountManager.Merge(stagingArea, hashing.AddressFromPublicKey(publicKey), &model.AccountDiff{
			Balance:            amount,
			UnconfirmedBalance: amount,
			Fees:               sign * int64(fees),
			Rewards:            sign * int64(reward),
		})
		if err != nil {
			return errors.Wrapf(err, "cannot distribute round %d to position %d", summary.Round, i)
		}
	}
	log.Debugf("Distributed round %d: %d fees over %d blocks", summary.Round, summary.RoundFees, len(summary.RoundDelegates))
	return nil
}
