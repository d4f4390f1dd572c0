package rewardschedule

import (
	"strconv"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// rewardSchedule maps heights to the milestone based forging reward
type rewardSchedule struct {
	totalAmount uint64
	milestones  []dposconfig.RewardMilestone
}

// New instantiates a new RewardSchedule
func New(totalAmount uint64, milestones []dposconfig.RewardMilestone) model.RewardSchedule {
	return &rewardSchedule{
		totalAmount: totalAmount,
		milestones:  append([]dposconfig.RewardMilestone(nil), milestones...),
	}
}

// CalcMilestone returns the index of the highest milestone whose height
// does not exceed the given height, or 0 if there is none
func (rs *rewardSchedule) CalcMilestone(height uint64) int {
	for i := len(rs.milestones) - 1; i >= 0; i-- {
		if height >= rs.milestones[i].Height {
			return i
		}
	}
	return 0
}

// CalcReward returns the forging reward of a block at the given height
func (rs *rewardSchedule) CalcReward(height uint64) uint64 {
	if len(rs.milestones) == 0 {
		return 0
	}
	return rs.milestones[rs.CalcMilestone(height)].Reward
}

// CalcSupply returns the total supply once the block at the given height
// was forged: the genesis amount plus every reward paid up to and
// including that height
func (rs *rewardSchedule) CalcSupply(height uint64) uint64 {
	supply := rs.totalAmount
	if len(rs.milestones) == 0 || height < rs.milestones[0].Height {
		return supply
	}

	milestone := rs.CalcMilestone(height)
	for i := 0; i < milestone; i++ {
		span := rs.milestones[i+1].Height - rs.milestones[i].Height
		supply += span * rs.milestones[i].Reward
	}
	supply += (height - rs.milestones[milestone].Height + 1) * rs.milestones[milestone].Reward
	return supply
}

// ParseHeight parses a decimal block height. Anything that is not a
// non-negative base 10 integer is rejected.
func ParseHeight(s string) (uint64, error) {
	height, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid height %q", s)
	}
	return height, nil
}
