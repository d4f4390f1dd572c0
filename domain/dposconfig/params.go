package dposconfig

import (
	"time"

	"github.com/pkg/errors"
)

// RewardMilestone is a height threshold after which every block
// carries Reward as its forging reward
type RewardMilestone struct {
	Height uint64
	Reward uint64
}

// Fees defines the base fee of every transaction type. The
// multisignature fee is charged per keysgroup member plus one.
type Fees struct {
	Send            uint64
	Vote            uint64
	SecondSignature uint64
	Delegate        uint64
	Multisignature  uint64
}

// MultisignatureConstraints bound the keysgroup registrations
type MultisignatureConstraints struct {
	MinSignatures uint32
	MaxSignatures uint32
	MinLifetime   uint32
	MaxLifetime   uint32
	MinKeysgroup  int
	MaxKeysgroup  int
}

// Params defines a DPoS network by its parameters. These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Epoch is the wall-clock time of epoch timestamp 0.
	Epoch time.Time

	// BlockTime is the length of a forging slot.
	BlockTime time.Duration

	// ActiveDelegates is the number of delegates forging in a round.
	ActiveDelegates uint64

	// BlockVersion is the only accepted block version.
	BlockVersion uint32

	// MaxTxsPerBlock is the maximum number of transactions in a block.
	MaxTxsPerBlock int

	// MaxPayloadLength is the maximum total size in bytes of the
	// serialized transactions of a block.
	MaxPayloadLength int

	// MaxVotesPerTransaction is the maximum number of vote changes
	// a single vote transaction may carry.
	MaxVotesPerTransaction int

	// MaxVotesPerAccount is the maximum number of delegates an
	// account may vote for.
	MaxVotesPerAccount int

	// TotalAmount is the supply at the genesis block.
	TotalAmount uint64

	// RewardMilestones defines the block reward schedule. Heights
	// must be strictly increasing.
	RewardMilestones []RewardMilestone

	Fees Fees

	Multisignature MultisignatureConstraints

	// UnconfirmedTransactionTimeout is the default time a transaction
	// may stay in the pool before it expires.
	UnconfirmedTransactionTimeout time.Duration

	// Genesis defines the state created by the genesis block.
	Genesis *Genesis
}

// Validate returns an error if the params are inconsistent
func (p *Params) Validate() error {
	if p.ActiveDelegates == 0 {
		return errors.Errorf("%s: ActiveDelegates must be positive", p.Name)
	}
	if p.BlockTime < time.Second {
		return errors.Errorf("%s: BlockTime must be at least one second", p.Name)
	}
	if len(p.RewardMilestones) == 0 {
		return errors.Errorf("%s: at least one reward milestone is required", p.Name)
	}
	for i := 1; i < len(p.RewardMilestones); i++ {
		if p.RewardMilestones[i].Height <= p.RewardMilestones[i-1].Height {
			return errors.Errorf("%s: reward milestone %d height %d does not exceed "+
				"the previous milestone height %d", p.Name, i,
				p.RewardMilestones[i].Height, p.RewardMilestones[i-1].Height)
		}
	}
	if p.Genesis == nil {
		return errors.Errorf("%s: genesis is missing", p.Name)
	}
	var allocated uint64
	for _, allocation := range p.Genesis.Allocations {
		allocated += allocation.Balance
	}
	if allocated != p.TotalAmount {
		return errors.Errorf("%s: genesis allocations sum to %d, expected TotalAmount %d",
			p.Name, allocated, p.TotalAmount)
	}
	if uint64(len(p.Genesis.Delegates)) < p.ActiveDelegates {
		return errors.Errorf("%s: %d genesis delegates cannot fill %d forging slots",
			p.Name, len(p.Genesis.Delegates), p.ActiveDelegates)
	}
	return nil
}

const (
	defaultBlockTime                     = 30 * time.Second
	defaultActiveDelegates               = 101
	defaultMaxTxsPerBlock                = 25
	defaultMaxPayloadLength              = 1024 * 1024
	defaultUnconfirmedTransactionTimeout = 10800 * time.Second
	milestoneDistance                    = 1054080
)

var defaultFees = Fees{
	Send:            10000000,
	Vote:            100000000,
	SecondSignature: 500000000,
	Delegate:        2500000000,
	Multisignature:  500000000,
}

var defaultMultisignatureConstraints = MultisignatureConstraints{
	MinSignatures: 1,
	MaxSignatures: 15,
	MinLifetime:   1,
	MaxLifetime:   72,
	MinKeysgroup:  1,
	MaxKeysgroup:  15,
}

var mainnetRewardMilestones = []RewardMilestone{
	{Height: 1, Reward: 0},
	{Height: 10, Reward: 1500000000},
	{Height: 11, Reward: 30000000},
	{Height: 12, Reward: 20000000},
	{Height: 13, Reward: 1500000000},
	{Height: milestoneDistance, Reward: 1200000000},
	{Height: 2 * milestoneDistance, Reward: 900000000},
	{Height: 3 * milestoneDistance, Reward: 600000000},
	{Height: 4 * milestoneDistance, Reward: 300000000},
	{Height: 5 * milestoneDistance, Reward: 100000000},
}

var epoch = time.Date(2016, time.May, 24, 17, 0, 0, 0, time.UTC)

const totalAmount = 10999999991000000

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                          "mainnet",
	Epoch:                         epoch,
	BlockTime:                     defaultBlockTime,
	ActiveDelegates:               defaultActiveDelegates,
	BlockVersion:                  0,
	MaxTxsPerBlock:                defaultMaxTxsPerBlock,
	MaxPayloadLength:              defaultMaxPayloadLength,
	MaxVotesPerTransaction:        33,
	MaxVotesPerAccount:            defaultActiveDelegates,
	TotalAmount:                   totalAmount,
	RewardMilestones:              mainnetRewardMilestones,
	Fees:                          defaultFees,
	Multisignature:                defaultMultisignatureConstraints,
	UnconfirmedTransactionTimeout: defaultUnconfirmedTransactionTimeout,
	Genesis:                       newGenesis("mainnet", defaultActiveDelegates, totalAmount),
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:                          "testnet",
	Epoch:                         epoch,
	BlockTime:                     defaultBlockTime,
	ActiveDelegates:               defaultActiveDelegates,
	BlockVersion:                  0,
	MaxTxsPerBlock:                defaultMaxTxsPerBlock,
	MaxPayloadLength:              defaultMaxPayloadLength,
	MaxVotesPerTransaction:        33,
	MaxVotesPerAccount:            defaultActiveDelegates,
	TotalAmount:                   totalAmount,
	RewardMilestones:              mainnetRewardMilestones,
	Fees:                          defaultFees,
	Multisignature:                defaultMultisignatureConstraints,
	UnconfirmedTransactionTimeout: defaultUnconfirmedTransactionTimeout,
	Genesis:                       newGenesis("testnet", defaultActiveDelegates, totalAmount),
}

// DevnetParams defines the network parameters for a local development
// network: few delegates, short slots and rewards from the first rounds.
var DevnetParams = Params{
	Name:                   "devnet",
	Epoch:                  epoch,
	BlockTime:              10 * time.Second,
	ActiveDelegates:        11,
	BlockVersion:           0,
	MaxTxsPerBlock:         defaultMaxTxsPerBlock,
	MaxPayloadLength:       defaultMaxPayloadLength,
	MaxVotesPerTransaction: 33,
	MaxVotesPerAccount:     11,
	TotalAmount:            totalAmount,
	RewardMilestones: []RewardMilestone{
		{Height: 1, Reward: 0},
		{Height: 2, Reward: 1500000000},
		{Height: 100000, Reward: 1200000000},
	},
	Fees:                          defaultFees,
	Multisignature:                defaultMultisignatureConstraints,
	UnconfirmedTransactionTimeout: defaultUnconfirmedTransactionTimeout,
	Genesis:                       newGenesis("devnet", 11, totalAmount),
}

// ParamsForNetwork returns the params of the network with the given name
func ParamsForNetwork(name string) (*Params, error) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &DevnetParams} {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Errorf("unknown network %s", name)
}
