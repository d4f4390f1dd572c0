package blockvalidator

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func (v *blockValidator) validateHeaderInContext(stagingArea *model.StagingArea,
	block, lastBlock *externalapi.DomainBlock) error {

	err := v.checkPreviousBlock(block, lastBlock)
	if err != nil {
		return err
	}
	err = v.checkBlockSlot(block, lastBlock)
	if err != nil {
		return err
	}
	return v.delegateManager.ValidateBlockSlot(stagingArea, block)
}

func (v *blockValidator) checkPreviousBlock(block, lastBlock *externalapi.DomainBlock) error {
	if block.PreviousBlock != lastBlock.ID || block.Height != lastBlock.Height+1 {
		return errors.Wrapf(ruleerrors.ErrInvalidPreviousBlock, "block %s at height %d points to %s, "+
			"the chain tip is %s at height %d", block.ID, block.Height, block.PreviousBlock,
			lastBlock.ID, lastBlock.Height)
	}
	return nil
}

// checkBlockSlot requires block to be forged in a slot after lastBlock's
// and not after the current one
func (v *blockValidator) checkBlockSlot(block, lastBlock *externalapi.DomainBlock) error {
	blockSlot := v.slots.SlotNumber(block.Timestamp)
	lastSlot := v.slots.SlotNumber(lastBlock.Timestamp)
	if blockSlot <= lastSlot {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockSlot, "block %s is in slot %d, not after slot %d "+
			"of the chain tip", block.ID, blockSlot, lastSlot)
	}
	currentSlot := v.slots.CurrentSlot(v.now())
	if blockSlot > currentSlot {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockSlot, "block %s is in the future slot %d, "+
			"the current slot is %d", block.ID, blockSlot, currentSlot)
	}
	return nil
}
