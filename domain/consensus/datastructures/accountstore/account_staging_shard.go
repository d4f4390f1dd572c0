package accountstore

import (
	"sync/atomic"

	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/kaspanet/go-muhash"
)

type accountStagingShard struct {
	store    *accountStore
	toAdd    map[string]*externalapi.DomainAccount
	toDelete map[string]struct{}
}

func (as *accountStore) stagingShard(stagingArea *model.StagingArea) *accountStagingShard {
	return stagingArea.GetOrCreateShard("AccountStore", func() model.StagingShard {
		return &accountStagingShard{
			store:    as,
			toAdd:    make(map[string]*externalapi.DomainAccount),
			toDelete: make(map[string]struct{}),
		}
	}).(*accountStagingShard)
}

func (ass *accountStagingShard) Commit(dbTx model.DBTransaction) error {
	commitment, err := ass.applyToCommitment(dbTx, ass.store.commitment.Clone())
	if err != nil {
		return err
	}

	delegateSetChanged, err := ass.changesDelegateSet(dbTx)
	if err != nil {
		return err
	}

	for address, account := range ass.toAdd {
		err := dbTx.Put(accountKey(address), serialization.SerializeAccount(account))
		if err != nil {
			return err
		}
		if isDelegate(account) {
			err = dbTx.Put(delegateKey(address), delegateMarker)
		} else {
			err = dbTx.Delete(delegateKey(address))
		}
		if err != nil {
			return err
		}
	}

	for address := range ass.toDelete {
		err := dbTx.Delete(accountKey(address))
		if err != nil {
			return err
		}
		err = dbTx.Delete(delegateKey(address))
		if err != nil {
			return err
		}
	}

	serializedCommitment := commitment.Serialize()
	err = dbTx.Put(commitmentKey, serializedCommitment[:])
	if err != nil {
		return err
	}
	ass.store.commitment = commitment
	if delegateSetChanged {
		atomic.AddUint64(&ass.store.delegateSetGeneration, 1)
	}
	return nil
}

// changesDelegateSet returns whether committing the shard registers or
// unregisters a confirmed delegate
func (ass *accountStagingShard) changesDelegateSet(dbContext model.DBReader) (bool, error) {
	for address, account := range ass.toAdd {
		wasDelegate, err := committedIsDelegate(dbContext, address)
		if err != nil {
			return false, err
		}
		if wasDelegate != account.IsDelegate {
			return true, nil
		}
	}
	for address := range ass.toDelete {
		wasDelegate, err := committedIsDelegate(dbContext, address)
		if err != nil {
			return false, err
		}
		if wasDelegate {
			return true, nil
		}
	}
	return false, nil
}

func committedIsDelegate(dbContext model.DBReader, address string) (bool, error) {
	accountBytes, err := dbContext.Get(accountKey(address))
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	account, err := serialization.DeserializeAccount(accountBytes)
	if err != nil {
		return false, err
	}
	return account.IsDelegate, nil
}

// applyToCommitment replaces the committed serialization of every staged
// account in commitment with its staged serialization
func (ass *accountStagingShard) applyToCommitment(dbContext model.DBReader,
	commitment *muhash.MuHash) (*muhash.MuHash, error) {

	for address, account := range ass.toAdd {
		err := ass.removeCommittedAccount(dbContext, commitment, address)
		if err != nil {
			return nil, err
		}
		commitment.Add(serialization.SerializeAccount(account))
	}
	for address := range ass.toDelete {
		err := ass.removeCommittedAccount(dbContext, commitment, address)
		if err != nil {
			return nil, err
		}
	}
	return commitment, nil
}

func (ass *accountStagingShard) removeCommittedAccount(dbContext model.DBReader,
	commitment *muhash.MuHash, address string) error {

	committedBytes, err := dbContext.Get(accountKey(address))
	if err != nil {
		if isNotFoundError(err) {
			return nil
		}
		return err
	}
	commitment.Remove(committedBytes)
	return nil
}

func (ass *accountStagingShard) isStaged() bool {
	return len(ass.toAdd) != 0 || len(ass.toDelete) != 0
}
