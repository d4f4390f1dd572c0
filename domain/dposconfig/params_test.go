package dposconfig

import (
	"testing"
)

func TestNetworkParamsAreValid(t *testing.T) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &DevnetParams} {
		err := params.Validate()
		if err != nil {
			t.Errorf("%s: %+v", params.Name, err)
		}
	}
}

func TestValidateRejectsUnorderedMilestones(t *testing.T) {
	params := DevnetParams
	params.RewardMilestones = []RewardMilestone{{Height: 10, Reward: 1}, {Height: 10, Reward: 2}}
	if err := params.Validate(); err == nil {
		t.Fatalf("Validate accepted milestones with equal heights")
	}
}

func TestValidateRejectsMismatchedAllocations(t *testing.T) {
	params := DevnetParams
	params.TotalAmount++
	if err := params.Validate(); err == nil {
		t.Fatalf("Validate accepted allocations that do not sum to TotalAmount")
	}
}

func TestParamsForNetwork(t *testing.T) {
	params, err := ParamsForNetwork("devnet")
	if err != nil {
		t.Fatalf("ParamsForNetwork: %+v", err)
	}
	if params != &DevnetParams {
		t.Fatalf("ParamsForNetwork returned the wrong params")
	}
	if _, err := ParamsForNetwork("nonet"); err == nil {
		t.Fatalf("ParamsForNetwork accepted an unknown network")
	}
}

func TestGenesisDelegatesAreDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for _, delegate := range MainnetParams.Genesis.Delegates {
		key := string(delegate.PublicKey)
		if _, ok := seen[key]; ok {
			t.Fatalf("genesis delegate %s appears twice", delegate.Username)
		}
		seen[key] = struct{}{}
	}
}

func TestGenesisBlockIsStable(t *testing.T) {
	first, err := DevnetParams.GenesisBlock()
	if err != nil {
		t.Fatalf("GenesisBlock: %+v", err)
	}
	second, err := DevnetParams.GenesisBlock()
	if err != nil {
		t.Fatalf("GenesisBlock: %+v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("GenesisBlock is not deterministic")
	}
	if first.Height != 1 || first.PreviousBlock != "" || first.ID == "" {
		t.Fatalf("unexpected genesis block %+v", first)
	}
}
