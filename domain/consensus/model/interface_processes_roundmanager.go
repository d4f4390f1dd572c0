package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// RoundFinishedHandler is notified whenever a forward tick closes a round
type RoundFinishedHandler func(round uint64, block *externalapi.DomainBlock)

// RoundManager detects round boundaries and performs the fee and reward
// distribution of closing rounds
type RoundManager interface {
	CalcRound(height uint64) uint64
	IsRoundFinishing(height uint64) bool
	Tick(stagingArea *StagingArea, block *externalapi.DomainBlock) error
	BackwardTick(stagingArea *StagingArea, block, previousBlock *externalapi.DomainBlock) error
	SumRound(stagingArea *StagingArea, height uint64) (*externalapi.RoundSummary, error)
	GetOutsiders(stagingArea *StagingArea, round uint64, forgedKeys [][]byte) ([]string, error)
	OnRoundFinished(handler RoundFinishedHandler)
}
