package roundmanager

import (
	"sync"

	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/pkg/errors"
)

// roundManager closes rounds: it distributes what a round collected among
// its forgers, penalizes the delegates that missed their slot and
// recomputes the vote weights the next round is ordered by
type roundManager struct {
	databaseContext model.DBReader
	activeDelegates uint64
	snapshotRound   uint64
	appState        *appstate.State

	delegateManager model.DelegateManager
	accountManager  model.AccountManager

	roundStore       model.RoundStore
	chainStateStore  model.ChainStateStore
	blockStore       model.BlockStore
	transactionStore model.TransactionStore

	handlersLock          sync.RWMutex
	roundFinishedHandlers []model.RoundFinishedHandler
}

// New instantiates a new RoundManager. A non-zero snapshotRound stops the
// chain once that round closes.
func New(
	databaseContext model.DBReader,
	activeDelegates uint64,
	snapshotRound uint64,
	appState *appstate.State,

	delegateManager model.DelegateManager,
	accountManager model.AccountManager,

	roundStore model.RoundStore,
	chainStateStore model.ChainStateStore,
	blockStore model.BlockStore,
	transactionStore model.TransactionStore) model.RoundManager {

	return &roundManager{
		databaseContext:  databaseContext,
		activeDelegates:  activeDelegates,
		snapshotRound:    snapshotRound,
		appState:         appState,
		delegateManager:  delegateManager,
		accountManager:   accountManager,
		roundStore:       roundStore,
		chainStateStore:  chainStateStore,
		blockStore:       blockStore,
		transactionStore: transactionStore,
	}
}

// CalcRound returns the round height belongs to
func (rm *roundManager) CalcRound(height uint64) uint64 {
	return (height + rm.activeDelegates - 1) / rm.activeDelegates
}

// IsRoundFinishing returns whether the block at height closes a round.
// The first round closes twice: once at the genesis block and once at its
// regular end.
func (rm *roundManager) IsRoundFinishing(height uint64) bool {
	return rm.CalcRound(height) != rm.CalcRound(height+1) || height == 1 || height == rm.activeDelegates
}

// roundStartHeight returns the first height summed when the block at
// height closes its round. The genesis block is settled on its own.
func (rm *roundManager) roundStartHeight(height uint64) uint64 {
	round := rm.CalcRound(height)
	if round == 1 && height != 1 {
		return 2
	}
	return (round-1)*rm.activeDelegates + 1
}

// SumRound aggregates the forging records of the round closed by the
// block at height
func (rm *roundManager) SumRound(stagingArea *model.StagingArea, height uint64) (*externalapi.RoundSummary, error) {
	records, err := rm.roundStore.Records(rm.databaseContext, stagingArea, rm.roundStartHeight(height), height)
	if err != nil {
		return nil, err
	}

	summary := &externalapi.RoundSummary{
		Round:          rm.CalcRound(height),
		RoundRewards:   make([]uint64, 0, len(records)),
		RoundDelegates: make([][]byte, 0, len(records)),
	}
	for _, record := range records {
		summary.RoundFees += record.Fee
		summary.RoundRewards = append(summary.RoundRewards, record.Reward)
		summary.RoundDelegates = append(summary.RoundDelegates, record.GeneratorPublicKey)
	}
	return summary, nil
}

// GetOutsiders returns the addresses of the delegates of round's forging
// order that forged none of its blocks
func (rm *roundManager) GetOutsiders(stagingArea *model.StagingArea, round uint64,
	forgedKeys [][]byte) ([]string, error) {

	delegateList, err := rm.delegateManager.DelegateList(stagingArea, round)
	if err != nil {
		return nil, err
	}

	forged := make(map[string]struct{}, len(forgedKeys))
	for _, publicKey := range forgedKeys {
		forged[string(publicKey)] = struct{}{}
	}

	outsiders := make([]string, 0)
	for _, publicKeyHex := range delegateList {
		publicKey, err := hexToBytes(publicKeyHex)
		if err != nil {
			return nil, err
		}
		if _, ok := forged[string(publicKey)]; ok {
			continue
		}
		outsiders = append(outsiders, hashing.AddressFromPublicKey(publicKey))
	}
	return outsiders, nil
}

// OnRoundFinished registers handler to be notified of every closed round
func (rm *roundManager) OnRoundFinished(handler model.RoundFinishedHandler) {
	rm.handlersLock.Lock()
	defer rm.handlersLock.Unlock()

	rm.roundFinishedHandlers = append(rm.roundFinishedHandlers, handler)
}

func (rm *roundManager) notifyRoundFinished(round uint64, block *externalapi.DomainBlock) {
	rm.handlersLock.RLock()
	defer rm.handlersLock.RUnlock()

	for _, handler := range rm.roundFinishedHandlers {
		handler(round, block)
	}
}

// truncateAbove deletes every stored block above height
func (rm *roundManager) truncateAbove(stagingArea *model.StagingArea, height uint64) error {
	for next := height + 1; ; next++ {
		blockID, err := rm.blockStore.BlockIDByHeight(rm.databaseContext, stagingArea, next)
		if database.IsNotFoundError(err) {
			return nil
		}
		if err != nil {
			return err
		}
		_, transactionIDs, err := rm.blockStore.Block(rm.databaseContext, stagingArea, blockID)
		if err != nil {
			return err
		}
		for _, transactionID := range transactionIDs {
			transaction, _, err := rm.transactionStore.Transaction(rm.databaseContext, stagingArea, transactionID)
			if err != nil {
				return errors.Wrapf(err, "cannot truncate transaction %s of block %s", transactionID, blockID)
			}
			rm.transactionStore.Delete(stagingArea, transactionID, transaction.Type)
		}
		rm.blockStore.Delete(stagingArea, blockID, next)
		log.Debugf("Truncated block %s at height %d", blockID, next)
	}
}
