package consensus

import (
	"context"

	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/util/sequence"
	"github.com/pkg/errors"
)

// Consensus maintains the ledger of the node. Every method that changes
// the chain runs inside the chain sequence.
type Consensus interface {
	Init() error
	ProcessBlock(ctx context.Context, block *externalapi.DomainBlock) error
	DeleteLastBlock(ctx context.Context) (*externalapi.DomainBlock, error)
	BuildBlock(transactions []*externalapi.DomainTransaction, keyPair *keys.KeyPair,
		timestamp uint32) (*externalapi.DomainBlock, error)

	LastBlock() (*externalapi.DomainBlock, error)
	GetBlock(blockID string) (*externalapi.DomainBlock, error)
	GetBlockByHeight(height uint64) (*externalapi.DomainBlock, error)
	HasBlock(blockID string) (bool, error)
	GetAccount(address string) (*externalapi.DomainAccount, error)
	GetAccountByPublicKey(publicKey []byte) (*externalapi.DomainAccount, error)
	AccountsCommitment() (string, error)

	GenerateDelegateList(height uint64) ([]string, error)
	SlotDelegate(height uint64, slot uint64) (string, error)
	CalcRound(height uint64) uint64
	RewardSchedule() model.RewardSchedule
	OnRoundFinished(handler model.RoundFinishedHandler)

	VerifyTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	TransactionReady(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) (bool, error)
	IsTransactionConfirmed(transactionID string) (bool, error)
	ApplyUnconfirmedTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	UndoUnconfirmedTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	CommitStagingArea(stagingArea *model.StagingArea) error

	AttachPool(pool model.UnconfirmedPool)
	ChainSequence() *sequence.Sequence
	AppState() *appstate.State
	Slots() *slots.Slots
	Params() *dposconfig.Params
	TransactionLogic() model.TransactionLogic
}

type consensus struct {
	params          *dposconfig.Params
	databaseContext model.DBManager
	appState        *appstate.State
	chainSequence   *sequence.Sequence
	slots           *slots.Slots
	pool            *poolProxy

	transactionLogic model.TransactionLogic
	accountManager   model.AccountManager
	delegateManager  model.DelegateManager
	roundManager     model.RoundManager
	rewardSchedule   model.RewardSchedule
	chainManager     model.ChainManager
	blockBuilder     model.BlockBuilder
	blockValidator   model.BlockValidator

	blockStore       model.BlockStore
	transactionStore model.TransactionStore
	chainStateStore  model.ChainStateStore
}

// Init brings the ledger to a consistent state on startup: it applies the
// genesis block to an empty database, and otherwise finishes an
// interrupted round tick and drops the unconfirmed state a previous run
// left behind
func (s *consensus) Init() error {
	return s.chainSequence.AddAndWait(context.Background(), func() error {
		stagingArea := model.NewStagingArea()
		hasTip, err := s.chainStateStore.HasTip(s.databaseContext, stagingArea)
		if err != nil {
			return err
		}
		if !hasTip {
			genesisBlock, err := s.params.GenesisBlock()
			if err != nil {
				return err
			}
			log.Infof("Empty database, applying the %s genesis block %s", s.params.Name, genesisBlock.ID)
			return s.chainManager.ApplyGenesisBlock(genesisBlock)
		}

		err = s.chainManager.RecoverTick()
		if err != nil {
			return err
		}
		err = s.accountManager.ResetUnconfirmedState(stagingArea)
		if err != nil {
			return err
		}
		err = model.CommitAllChanges(s.databaseContext, stagingArea)
		if err != nil {
			return err
		}

		lastBlock, err := s.chainManager.LastBlock(model.NewStagingArea())
		if err != nil {
			return err
		}
		log.Infof("Loaded the ledger at height %d, block %s", lastBlock.Height, lastBlock.ID)
		return nil
	})
}

// ProcessBlock verifies block as the successor of the chain tip and, if
// valid, applies it
func (s *consensus) ProcessBlock(ctx context.Context, block *externalapi.DomainBlock) error {
	return s.chainSequence.AddAndWait(ctx, func() error {
		stagingArea := model.NewStagingArea()
		lastBlock, err := s.chainManager.LastBlock(stagingArea)
		if err != nil {
			return err
		}
		err = s.blockValidator.VerifyBlock(stagingArea, block, lastBlock)
		if err != nil {
			return err
		}
		return s.chainManager.ApplyBlock(block, true)
	})
}

// DeleteLastBlock pops the chain tip and returns the new one
func (s *consensus) DeleteLastBlock(ctx context.Context) (*externalapi.DomainBlock, error) {
	var newTip *externalapi.DomainBlock
	err := s.chainSequence.AddAndWait(ctx, func() error {
		var err error
		newTip, err = s.chainManager.DeleteLastBlock()
		return err
	})
	if err != nil {
		return nil, err
	}
	return newTip, nil
}

// BuildBlock builds a block on top of the chain tip
func (s *consensus) BuildBlock(transactions []*externalapi.DomainTransaction, keyPair *keys.KeyPair,
	timestamp uint32) (*externalapi.DomainBlock, error) {

	lastBlock, err := s.LastBlock()
	if err != nil {
		return nil, err
	}
	return s.blockBuilder.BuildBlock(transactions, lastBlock, keyPair, timestamp)
}

func (s *consensus) LastBlock() (*externalapi.DomainBlock, error) {
	return s.chainManager.LastBlock(model.NewStagingArea())
}

func (s *consensus) GetBlock(blockID string) (*externalapi.DomainBlock, error) {
	return s.chainManager.LoadBlock(model.NewStagingArea(), blockID)
}

func (s *consensus) GetBlockByHeight(height uint64) (*externalapi.DomainBlock, error) {
	stagingArea := model.NewStagingArea()
	blockID, err := s.blockStore.BlockIDByHeight(s.databaseContext, stagingArea, height)
	if err != nil {
		return nil, err
	}
	return s.chainManager.LoadBlock(stagingArea, blockID)
}

func (s *consensus) HasBlock(blockID string) (bool, error) {
	return s.blockStore.HasBlock(s.databaseContext, model.NewStagingArea(), blockID)
}

func (s *consensus) GetAccount(address string) (*externalapi.DomainAccount, error) {
	return s.accountManager.Account(model.NewStagingArea(), address)
}

func (s *consensus) GetAccountByPublicKey(publicKey []byte) (*externalapi.DomainAccount, error) {
	return s.accountManager.AccountByPublicKey(model.NewStagingArea(), publicKey)
}

// AccountsCommitment returns a digest of every account in the ledger
func (s *consensus) AccountsCommitment() (string, error) {
	return s.accountManager.Commitment(model.NewStagingArea())
}

// GenerateDelegateList returns the forging order of the round of height
func (s *consensus) GenerateDelegateList(height uint64) ([]string, error) {
	return s.delegateManager.DelegateListForHeight(model.NewStagingArea(), height)
}

// SlotDelegate returns the hex public key of the delegate forging slot in
// the round of height
func (s *consensus) SlotDelegate(height uint64, slot uint64) (string, error) {
	return s.delegateManager.SlotDelegate(model.NewStagingArea(), height, slot)
}

func (s *consensus) CalcRound(height uint64) uint64 {
	return s.roundManager.CalcRound(height)
}

func (s *consensus) RewardSchedule() model.RewardSchedule {
	return s.rewardSchedule
}

func (s *consensus) OnRoundFinished(handler model.RoundFinishedHandler) {
	s.roundManager.OnRoundFinished(handler)
}

// VerifyTransaction runs transaction through the checks it must pass to
// be included in the next block. Its shape is checked before any account
// is looked up.
func (s *consensus) VerifyTransaction(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction) error {

	err := s.transactionLogic.ObjectNormalize(transaction)
	if err != nil {
		return err
	}
	sender, requester, err := s.transactionAccounts(stagingArea, transaction)
	if err != nil {
		return err
	}
	err = s.transactionLogic.Process(stagingArea, transaction, sender, requester)
	if err != nil {
		return err
	}

	lastBlock, err := s.chainManager.LastBlock(stagingArea)
	if err != nil {
		return err
	}
	return s.transactionLogic.Verify(stagingArea, transaction, sender, requester, lastBlock.Height+1)
}

// TransactionReady returns whether transaction carries every co-signature
// it needs
func (s *consensus) TransactionReady(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction) (bool, error) {

	sender, _, err := s.transactionAccounts(stagingArea, transaction)
	if err != nil {
		return false, err
	}
	return s.transactionLogic.Ready(transaction, sender)
}

func (s *consensus) IsTransactionConfirmed(transactionID string) (bool, error) {
	return s.transactionLogic.IsConfirmed(model.NewStagingArea(), transactionID)
}

// ApplyUnconfirmedTransaction stages the unconfirmed effects of
// transaction, creating its sender if needed
func (s *consensus) ApplyUnconfirmedTransaction(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction) error {

	sender, err := s.accountManager.GetOrCreateByPublicKey(stagingArea, transaction.SenderPublicKey)
	if err != nil {
		return err
	}
	return s.transactionLogic.ApplyUnconfirmed(stagingArea, transaction, sender)
}

// UndoUnconfirmedTransaction stages the reversal of the unconfirmed
// effects of transaction
func (s *consensus) UndoUnconfirmedTransaction(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction) error {

	sender, err := s.accountManager.AccountByPublicKey(stagingArea, transaction.SenderPublicKey)
	if err != nil {
		return err
	}
	return s.transactionLogic.UndoUnconfirmed(stagingArea, transaction, sender)
}

func (s *consensus) CommitStagingArea(stagingArea *model.StagingArea) error {
	return model.CommitAllChanges(s.databaseContext, stagingArea)
}

// AttachPool connects the transaction pool the chain drives while
// applying and popping blocks
func (s *consensus) AttachPool(pool model.UnconfirmedPool) {
	s.pool.attach(pool)
}

func (s *consensus) ChainSequence() *sequence.Sequence {
	return s.chainSequence
}

func (s *consensus) AppState() *appstate.State {
	return s.appState
}

func (s *consensus) Slots() *slots.Slots {
	return s.slots
}

func (s *consensus) Params() *dposconfig.Params {
	return s.params
}

func (s *consensus) TransactionLogic() model.TransactionLogic {
	return s.transactionLogic
}

// transactionAccounts returns the sender and, if any, the requester of
// transaction. A sender that does not exist yet is returned empty and is
// not staged. A requester must exist.
func (s *consensus) transactionAccounts(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction) (sender, requester *externalapi.DomainAccount, err error) {

	if len(transaction.SenderPublicKey) == 0 {
		return nil, nil, errors.Wrapf(ruleerrors.ErrMissingSender, "transaction %s has no sender public key", transaction.ID)
	}
	sender, err = s.lookupAccount(stagingArea, transaction.SenderPublicKey)
	if err != nil {
		return nil, nil, err
	}
	if len(transaction.RequesterPublicKey) > 0 {
		requester, err = s.accountManager.AccountByPublicKey(stagingArea, transaction.RequesterPublicKey)
		if database.IsNotFoundError(err) {
			return nil, nil, errors.Wrapf(ruleerrors.ErrMissingRequester, "requester %x of transaction %s "+
				"has no account", transaction.RequesterPublicKey, transaction.ID)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return sender, requester, nil
}

func (s *consensus) lookupAccount(stagingArea *model.StagingArea,
	publicKey []byte) (*externalapi.DomainAccount, error) {

	account, err := s.accountManager.AccountByPublicKey(stagingArea, publicKey)
	if database.IsNotFoundError(err) {
		return &externalapi.DomainAccount{
			Address:   hashing.AddressFromPublicKey(publicKey),
			PublicKey: append([]byte(nil), publicKey...),
		}, nil
	}
	return account, err
}
