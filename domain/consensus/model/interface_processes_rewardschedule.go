package model

// RewardSchedule maps block heights to forging rewards and supply
type RewardSchedule interface {
	CalcMilestone(height uint64) int
	CalcReward(height uint64) uint64
	CalcSupply(height uint64) uint64
}
