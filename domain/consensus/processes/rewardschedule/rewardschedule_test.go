package rewardschedule

import (
	"testing"

	"github.com/RiseVision/rise-node/domain/dposconfig"
)

var testMilestones = []dposconfig.RewardMilestone{
	{Height: 10, Reward: 500},
	{Height: 20, Reward: 300},
	{Height: 30, Reward: 100},
}

const testTotalAmount = 1000000

func TestCalcMilestone(t *testing.T) {
	rs := New(testTotalAmount, testMilestones)
	tests := []struct {
		height   uint64
		expected int
	}{
		{0, 0},
		{1, 0},
		{9, 0},
		{10, 0},
		{19, 0},
		{20, 1},
		{29, 1},
		{30, 2},
		{1000000, 2},
	}
	for _, test := range tests {
		if got := rs.CalcMilestone(test.height); got != test.expected {
			t.Errorf("CalcMilestone(%d): expected %d, got %d", test.height, test.expected, got)
		}
	}
}

func TestCalcReward(t *testing.T) {
	rs := New(testTotalAmount, testMilestones)
	tests := []struct {
		height   uint64
		expected uint64
	}{
		{1, 500},
		{10, 500},
		{25, 300},
		{30, 100},
		{500, 100},
	}
	for _, test := range tests {
		if got := rs.CalcReward(test.height); got != test.expected {
			t.Errorf("CalcReward(%d): expected %d, got %d", test.height, test.expected, got)
		}
		if got := rs.CalcReward(test.height); got != testMilestones[rs.CalcMilestone(test.height)].Reward {
			t.Errorf("CalcReward(%d) does not match the reward of its milestone", test.height)
		}
	}
}

func TestCalcSupply(t *testing.T) {
	rs := New(testTotalAmount, testMilestones)
	tests := []struct {
		height   uint64
		expected uint64
	}{
		{1, testTotalAmount},
		{9, testTotalAmount},
		{10, testTotalAmount + 500},
		{19, testTotalAmount + 10*500},
		{20, testTotalAmount + 10*500 + 300},
		{30, testTotalAmount + 10*500 + 10*300 + 100},
		{35, testTotalAmount + 10*500 + 10*300 + 6*100},
	}
	for _, test := range tests {
		first := rs.CalcSupply(test.height)
		if first != test.expected {
			t.Errorf("CalcSupply(%d): expected %d, got %d", test.height, test.expected, first)
		}
		if second := rs.CalcSupply(test.height); second != first {
			t.Errorf("CalcSupply(%d) is not idempotent: %d != %d", test.height, first, second)
		}
	}
}

// TestCalcSupplyMatchesRewardSum checks that the supply grows by exactly
// the reward of every height
func TestCalcSupplyMatchesRewardSum(t *testing.T) {
	for _, params := range []*dposconfig.Params{&dposconfig.MainnetParams, &dposconfig.DevnetParams} {
		rs := New(params.TotalAmount, params.RewardMilestones)
		supply := params.TotalAmount
		for height := uint64(1); height <= 200; height++ {
			supply += rs.CalcReward(height)
			if height < params.RewardMilestones[0].Height {
				continue
			}
			if got := rs.CalcSupply(height); got != supply {
				t.Fatalf("%s: CalcSupply(%d): expected %d, got %d", params.Name, height, supply, got)
			}
		}
	}
}

func TestParseHeight(t *testing.T) {
	height, err := ParseHeight("101")
	if err != nil {
		t.Fatalf("ParseHeight: %s", err)
	}
	if height != 101 {
		t.Fatalf("expected 101, got %d", height)
	}

	for _, invalid := range []string{"", "NaN", "abc", "-1", "1.5", "1e3"} {
		if _, err := ParseHeight(invalid); err == nil {
			t.Errorf("ParseHeight(%q): expected an error", invalid)
		}
	}
}
