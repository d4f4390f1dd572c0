package delegateorder

import (
	"encoding/hex"
	"sort"
	"sync"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/pkg/errors"
)

// delegateManager computes the forging order of rounds from the vote
// ranked delegate set
type delegateManager struct {
	databaseContext model.DBReader
	activeDelegates uint64
	slots           *slots.Slots

	accountStore model.AccountStore

	cacheLock sync.Mutex
	cache     map[uint64]*cachedDelegateList
}

// cachedDelegateList is a delegate list along with the generation of the
// delegate set it was computed from
type cachedDelegateList struct {
	list                  []string
	delegateSetGeneration uint64
}

// New instantiates a new DelegateManager
func New(
	databaseContext model.DBReader,
	activeDelegates uint64,
	slots *slots.Slots,
	accountStore model.AccountStore) model.DelegateManager {

	return &delegateManager{
		databaseContext: databaseContext,
		activeDelegates: activeDelegates,
		slots:           slots,
		accountStore:    accountStore,
		cache:           make(map[uint64]*cachedDelegateList),
	}
}

// ActiveDelegateKeys returns the hex public keys of the delegates with the
// highest vote weight, ties broken by public key ascending, truncated to
// the active delegate count
func (dm *delegateManager) ActiveDelegateKeys(stagingArea *model.StagingArea) ([]string, error) {
	delegates, err := dm.accountStore.Delegates(dm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	type rankedDelegate struct {
		publicKey  string
		voteWeight int64
	}
	ranked := make([]rankedDelegate, 0, len(delegates))
	for _, delegate := range delegates {
		if !delegate.IsDelegate || !delegate.HasPublicKey() {
			continue
		}
		ranked = append(ranked, rankedDelegate{
			publicKey:  hex.EncodeToString(delegate.PublicKey),
			voteWeight: delegate.VoteWeight,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].voteWeight != ranked[j].voteWeight {
			return ranked[i].voteWeight > ranked[j].voteWeight
		}
		return ranked[i].publicKey < ranked[j].publicKey
	})
	if uint64(len(ranked)) > dm.activeDelegates {
		ranked = ranked[:dm.activeDelegates]
	}

	keys := make([]string, len(ranked))
	for i, delegate := range ranked {
		keys[i] = delegate.publicKey
	}
	return keys, nil
}

// DelegateList returns the forging order of the given round. Lists
// computed from committed state are cached per round, and a cached list
// is dropped once the set of delegates changes.
func (dm *delegateManager) DelegateList(stagingArea *model.StagingArea, round uint64) ([]string, error) {
	cacheable := !dm.accountStore.IsStaged(stagingArea)
	generation := dm.accountStore.DelegateSetGeneration()
	if cacheable {
		dm.cacheLock.Lock()
		cached, ok := dm.cache[round]
		dm.cacheLock.Unlock()
		if ok && cached.delegateSetGeneration == generation {
			return append([]string(nil), cached.list...), nil
		}
	}

	keys, err := dm.ActiveDelegateKeys(stagingArea)
	if err != nil {
		return nil, err
	}
	list := GenerateDelegateList(round, keys)
	log.Tracef("Generated the delegate list of round %d over %d delegates", round, len(list))

	if cacheable {
		dm.cacheLock.Lock()
		dm.cache[round] = &cachedDelegateList{
			list:                  append([]string(nil), list...),
			delegateSetGeneration: generation,
		}
		dm.cacheLock.Unlock()
	}
	return list, nil
}

// DelegateListForHeight returns the forging order of the round containing
// the given height
func (dm *delegateManager) DelegateListForHeight(stagingArea *model.StagingArea, height uint64) ([]string, error) {
	return dm.DelegateList(stagingArea, dm.calcRound(height))
}

// SlotDelegate returns the hex public key of the delegate owning slot in
// the round containing height
func (dm *delegateManager) SlotDelegate(stagingArea *model.StagingArea, height uint64, slot uint64) (string, error) {
	list, err := dm.DelegateListForHeight(stagingArea, height)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("there are no active delegates")
	}
	return list[slot%uint64(len(list))], nil
}

// ValidateBlockSlot checks that the block's generator owns the slot of
// the block's timestamp
func (dm *delegateManager) ValidateBlockSlot(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	slot := dm.slots.SlotNumber(block.Timestamp)
	expected, err := dm.SlotDelegate(stagingArea, block.Height, slot)
	if err != nil {
		return err
	}
	generator := hex.EncodeToString(block.GeneratorPublicKey)
	if generator != expected {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockSlot, "block %s: slot %d belongs to delegate %s, "+
			"not to the generator %s", block.ID, slot, expected, generator)
	}
	return nil
}

// ClearCache drops every cached delegate list. It must be called
// whenever committed vote weights change.
func (dm *delegateManager) ClearCache() {
	dm.cacheLock.Lock()
	defer dm.cacheLock.Unlock()
	dm.cache = make(map[uint64]*cachedDelegateList)
}

func (dm *delegateManager) calcRound(height uint64) uint64 {
	return (height + dm.activeDelegates - 1) / dm.activeDelegates
}
