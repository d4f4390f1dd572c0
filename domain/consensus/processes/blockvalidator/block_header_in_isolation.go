package blockvalidator

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/pkg/errors"
)

func (v *blockValidator) validateHeaderInIsolation(block *externalapi.DomainBlock) error {
	err := v.checkBlockVersion(block)
	if err != nil {
		return err
	}
	err = v.checkBlockReward(block)
	if err != nil {
		return err
	}
	err = v.checkBlockSignature(block)
	if err != nil {
		return err
	}
	return v.checkBlockID(block)
}

func (v *blockValidator) checkBlockVersion(block *externalapi.DomainBlock) error {
	if block.Version != v.params.BlockVersion {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockVersion, "block %s has version %d, expected %d",
			block.ID, block.Version, v.params.BlockVersion)
	}
	return nil
}

func (v *blockValidator) checkBlockReward(block *externalapi.DomainBlock) error {
	expected := v.rewardSchedule.CalcReward(block.Height)
	if block.Reward != expected {
		return errors.Wrapf(ruleerrors.ErrInvalidReward, "block %s at height %d has reward %d, expected %d",
			block.ID, block.Height, block.Reward, expected)
	}
	return nil
}

func (v *blockValidator) checkBlockSignature(block *externalapi.DomainBlock) error {
	hash, err := hashing.BlockSigningHash(block)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "block %s: %s", block.ID, err)
	}
	if !keys.Verify(hash, block.BlockSignature, block.GeneratorPublicKey) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "block %s has an invalid signature", block.ID)
	}
	return nil
}

func (v *blockValidator) checkBlockID(block *externalapi.DomainBlock) error {
	id, err := hashing.BlockID(block)
	if err != nil {
		return err
	}
	if block.ID != id {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockID, "block %s has id %s", id, block.ID)
	}
	return nil
}
