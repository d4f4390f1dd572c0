package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// AccountManager resolves, creates and mutates ledger accounts
type AccountManager interface {
	Account(stagingArea *StagingArea, address string) (*externalapi.DomainAccount, error)
	AccountByPublicKey(stagingArea *StagingArea, publicKey []byte) (*externalapi.DomainAccount, error)
	GetOrCreateByPublicKey(stagingArea *StagingArea, publicKey []byte) (*externalapi.DomainAccount, error)
	GetOrCreateByAddress(stagingArea *StagingArea, address string) (*externalapi.DomainAccount, error)
	Merge(stagingArea *StagingArea, address string, diff *AccountDiff) (*externalapi.DomainAccount, error)
	Save(stagingArea *StagingArea, account *externalapi.DomainAccount)
	Delegates(stagingArea *StagingArea) ([]*externalapi.DomainAccount, error)
	DelegateRegistrants(stagingArea *StagingArea) ([]*externalapi.DomainAccount, error)
	RecalculateVoteWeights(stagingArea *StagingArea) (map[string]int64, error)
	RestoreVoteWeights(stagingArea *StagingArea, voteWeights map[string]int64) error
	ResetUnconfirmedState(stagingArea *StagingArea) error
	Commitment(stagingArea *StagingArea) (string, error)
}
