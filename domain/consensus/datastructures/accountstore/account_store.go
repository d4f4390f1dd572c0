package accountstore

import (
	"encoding/hex"
	"sort"
	"sync/atomic"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/kaspanet/go-muhash"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("accounts"))
var delegatesBucket = database.MakeBucket([]byte("delegates"))
var commitmentKey = database.MakeBucket(nil).Key([]byte("accounts-commitment"))
var delegateMarker = []byte{1}

// accountStore represents a store of accounts. Alongside the accounts it
// maintains a MuHash of every serialized account, so that two ledgers
// hold identical accounts if and only if their commitments match.
type accountStore struct {
	commitment *muhash.MuHash

	// delegateSetGeneration is bumped by every commit that changes which
	// accounts are confirmed delegates
	delegateSetGeneration uint64
}

// New instantiates a new AccountStore
func New(dbContext model.DBReader) (model.AccountStore, error) {
	store := &accountStore{}
	err := store.initializeCommitment(dbContext)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (as *accountStore) initializeCommitment(dbContext model.DBReader) error {
	commitmentBytes, err := dbContext.Get(commitmentKey)
	if err != nil {
		if isNotFoundError(err) {
			as.commitment = muhash.NewMuHash()
			return nil
		}
		return err
	}

	serialized := &muhash.SerializedMuHash{}
	if len(serialized) != len(commitmentBytes) {
		return errors.Errorf("accounts commitment expected to be in length of %d but got %d",
			len(serialized), len(commitmentBytes))
	}
	copy(serialized[:], commitmentBytes)
	commitment, err := muhash.DeserializeMuHash(serialized)
	if err != nil {
		return errors.WithStack(err)
	}
	as.commitment = commitment
	return nil
}

// Stage stages the given account
func (as *accountStore) Stage(stagingArea *model.StagingArea, account *externalapi.DomainAccount) {
	stagingShard := as.stagingShard(stagingArea)
	delete(stagingShard.toDelete, account.Address)
	stagingShard.toAdd[account.Address] = account.Clone()
}

// DelegateSetGeneration returns a counter that changes whenever a commit
// changes the set of confirmed delegates
func (as *accountStore) DelegateSetGeneration() uint64 {
	return atomic.LoadUint64(&as.delegateSetGeneration)
}

func (as *accountStore) IsStaged(stagingArea *model.StagingArea) bool {
	return as.stagingShard(stagingArea).isStaged()
}

// Account gets the account of the given address
func (as *accountStore) Account(dbContext model.DBReader, stagingArea *model.StagingArea,
	address string) (*externalapi.DomainAccount, error) {

	return as.account(dbContext, as.stagingShard(stagingArea), address)
}

func (as *accountStore) account(dbContext model.DBReader, stagingShard *accountStagingShard,
	address string) (*externalapi.DomainAccount, error) {

	if account, ok := stagingShard.toAdd[address]; ok {
		return account.Clone(), nil
	}
	if _, ok := stagingShard.toDelete[address]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "account %s is staged for deletion", address)
	}

	accountBytes, err := dbContext.Get(accountKey(address))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeAccount(accountBytes)
}

// HasAccount returns whether an account with the given address exists
func (as *accountStore) HasAccount(dbContext model.DBReader, stagingArea *model.StagingArea,
	address string) (bool, error) {

	stagingShard := as.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[address]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[address]; ok {
		return false, nil
	}
	return dbContext.Has(accountKey(address))
}

// Delete deletes the account of the given address
func (as *accountStore) Delete(stagingArea *model.StagingArea, address string) {
	stagingShard := as.stagingShard(stagingArea)
	delete(stagingShard.toAdd, address)
	stagingShard.toDelete[address] = struct{}{}
}

// Accounts returns all accounts, sorted by address
func (as *accountStore) Accounts(dbContext model.DBReader, stagingArea *model.StagingArea) (
	[]*externalapi.DomainAccount, error) {

	stagingShard := as.stagingShard(stagingArea)
	addresses, err := collectAddresses(dbContext, bucket)
	if err != nil {
		return nil, err
	}
	for address := range stagingShard.toAdd {
		addresses[address] = struct{}{}
	}
	for address := range stagingShard.toDelete {
		delete(addresses, address)
	}
	return as.accountsByAddresses(dbContext, stagingShard, addresses)
}

// Delegates returns every account that is a delegate, either confirmed
// or unconfirmed, sorted by address
func (as *accountStore) Delegates(dbContext model.DBReader, stagingArea *model.StagingArea) (
	[]*externalapi.DomainAccount, error) {

	stagingShard := as.stagingShard(stagingArea)
	addresses, err := collectAddresses(dbContext, delegatesBucket)
	if err != nil {
		return nil, err
	}
	for address, account := range stagingShard.toAdd {
		if isDelegate(account) {
			addresses[address] = struct{}{}
		} else {
			delete(addresses, address)
		}
	}
	for address := range stagingShard.toDelete {
		delete(addresses, address)
	}
	return as.accountsByAddresses(dbContext, stagingShard, addresses)
}

// Commitment returns the hex encoded MuHash of all accounts, staged
// changes included
func (as *accountStore) Commitment(dbContext model.DBReader, stagingArea *model.StagingArea) (string, error) {
	stagingShard := as.stagingShard(stagingArea)
	commitment, err := stagingShard.applyToCommitment(dbContext, as.commitment.Clone())
	if err != nil {
		return "", err
	}
	hash := commitment.Finalize()
	return hex.EncodeToString(hash[:]), nil
}

func (as *accountStore) accountsByAddresses(dbContext model.DBReader, stagingShard *accountStagingShard,
	addresses map[string]struct{}) ([]*externalapi.DomainAccount, error) {

	sortedAddresses := make([]string, 0, len(addresses))
	for address := range addresses {
		sortedAddresses = append(sortedAddresses, address)
	}
	sort.Strings(sortedAddresses)

	accounts := make([]*externalapi.DomainAccount, len(sortedAddresses))
	for i, address := range sortedAddresses {
		account, err := as.account(dbContext, stagingShard, address)
		if err != nil {
			return nil, err
		}
		accounts[i] = account
	}
	return accounts, nil
}

func collectAddresses(dbContext model.DBReader, bucket *infrastructuredatabase.Bucket) (map[string]struct{}, error) {
	cursor, err := dbContext.Cursor(bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	addresses := make(map[string]struct{})
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		addresses[string(key.Suffix())] = struct{}{}
	}
	return addresses, nil
}

func accountKey(address string) *infrastructuredatabase.Key {
	return bucket.Key([]byte(address))
}

func delegateKey(address string) *infrastructuredatabase.Key {
	return delegatesBucket.Key([]byte(address))
}

func isDelegate(account *externalapi.DomainAccount) bool {
	return account.IsDelegate || account.UnconfirmedIsDelegate
}

func isNotFoundError(err error) bool {
	return database.IsNotFoundError(err)
}
