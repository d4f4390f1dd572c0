package roundmanager

import "testing"

func TestRoundChanges(t *testing.T) {
	rewards := make([]uint64, 101)
	for i := range rewards {
		rewards[i] = 1500000000
	}
	changes := NewRoundChanges(1000, rewards, 101)
	if changes.Fees() != 9 {
		t.Fatalf("expected fees 9, got %d", changes.Fees())
	}
	if changes.FeesRemaining() != 91 {
		t.Fatalf("expected fees remaining 91, got %d", changes.FeesRemaining())
	}
}

func TestRoundChangesConservation(t *testing.T) {
	tests := []struct {
		roundFees       uint64
		rewards         []uint64
		activeDelegates uint64
	}{
		{roundFees: 1000, rewards: []uint64{5, 5, 5}, activeDelegates: 3},
		{roundFees: 7, rewards: []uint64{1, 2}, activeDelegates: 5},
		{roundFees: 123456789, rewards: []uint64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, activeDelegates: 11},
		{roundFees: 0, rewards: []uint64{3}, activeDelegates: 101},
	}
	for _, test := range tests {
		changes := NewRoundChanges(test.roundFees, test.rewards, test.activeDelegates)
		var paid, rewardSum uint64
		for i := range test.rewards {
			fees, reward := changes.At(i)
			paid += fees + reward
			rewardSum += test.rewards[i]
		}
		paid += changes.FeesRemaining()
		if paid != test.roundFees+rewardSum {
			t.Errorf("fees %d over %d positions: paid %d, expected %d", test.roundFees, len(test.rewards),
				paid, test.roundFees+rewardSum)
		}
	}
}

// The first round closes after 100 forged blocks, since the genesis block
// takes height 1. The remainder covers the missing position.
func TestRoundChangesFirstRound(t *testing.T) {
	rewards := make([]uint64, 100)
	changes := NewRoundChanges(1000, rewards, 101)
	if changes.Fees() != 9 {
		t.Fatalf("expected fees 9, got %d", changes.Fees())
	}
	if changes.FeesRemaining() != 100 {
		t.Fatalf("expected fees remaining 100, got %d", changes.FeesRemaining())
	}
	paid := changes.FeesRemaining()
	for i := range rewards {
		fees, _ := changes.At(i)
		paid += fees
	}
	if paid != 1000 {
		t.Fatalf("expected the first round to pay out 1000 in fees, got %d", paid)
	}
}
