package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// RoundStore represents a store of per-block forging records and of the
// delegate vote weights that were in effect before every round closed
type RoundStore interface {
	Store
	StageRecord(stagingArea *StagingArea, record *externalapi.DomainRoundRecord)
	Records(dbContext DBReader, stagingArea *StagingArea, fromHeight, toHeight uint64) ([]*externalapi.DomainRoundRecord, error)
	DeleteRecord(stagingArea *StagingArea, height uint64)
	StageVoteWeights(stagingArea *StagingArea, closingHeight uint64, voteWeights map[string]int64)
	VoteWeights(dbContext DBReader, stagingArea *StagingArea, closingHeight uint64) (map[string]int64, error)
	DeleteVoteWeights(stagingArea *StagingArea, closingHeight uint64)
}
