package roundmanager

// RoundChanges splits the fees and rewards collected over a round among
// the delegates that forged it
type RoundChanges struct {
	roundFees       uint64
	roundRewards    []uint64
	activeDelegates uint64
}

// NewRoundChanges returns the split of roundFees and roundRewards, the
// latter holding one reward per forged block in forging order
func NewRoundChanges(roundFees uint64, roundRewards []uint64, activeDelegates uint64) *RoundChanges {
	return &RoundChanges{
		roundFees:       roundFees,
		roundRewards:    roundRewards,
		activeDelegates: activeDelegates,
	}
}

// Fees returns the fee share of every forging position
func (rc *RoundChanges) Fees() uint64 {
	return rc.roundFees / rc.activeDelegates
}

// FeesRemaining returns what is left of the round fees once every forged
// block got its share. It goes to the last forger of the round.
func (rc *RoundChanges) FeesRemaining() uint64 {
	return rc.roundFees - rc.Fees()*uint64(len(rc.roundRewards))
}

// At returns the fee share and the reward of the given forging position
func (rc *RoundChanges) At(position int) (fees uint64, reward uint64) {
	return rc.Fees(), rc.roundRewards[position]
}
