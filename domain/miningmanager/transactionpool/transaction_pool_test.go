package transactionpool

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// fakeLedger records the unconfirmed effects applied per transaction
type fakeLedger struct {
	lock      sync.Mutex
	invalid   map[string]bool
	notReady  map[string]bool
	confirmed map[string]bool
	applied   map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		invalid:   make(map[string]bool),
		notReady:  make(map[string]bool),
		confirmed: make(map[string]bool),
		applied:   make(map[string]int),
	}
}

func (l *fakeLedger) VerifyTransaction(_ *model.StagingArea, transaction *externalapi.DomainTransaction) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.invalid[transaction.ID] {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "transaction %s", transaction.ID)
	}
	return nil
}

func (l *fakeLedger) TransactionReady(_ *model.StagingArea, transaction *externalapi.DomainTransaction) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return !l.notReady[transaction.ID], nil
}

func (l *fakeLedger) IsTransactionConfirmed(transactionID string) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.confirmed[transactionID], nil
}

func (l *fakeLedger) ApplyUnconfirmedTransaction(_ *model.StagingArea, transaction *externalapi.DomainTransaction) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.applied[transaction.ID]++
	return nil
}

func (l *fakeLedger) UndoUnconfirmedTransaction(_ *model.StagingArea, transaction *externalapi.DomainTransaction) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.applied[transaction.ID] == 0 {
		return errors.Errorf("transaction %s is not applied", transaction.ID)
	}
	l.applied[transaction.ID]--
	return nil
}

func (l *fakeLedger) CommitStagingArea(_ *model.StagingArea) error {
	return nil
}

func (l *fakeLedger) appliedCount(transactionID string) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.applied[transactionID]
}

type testPool struct {
	*TransactionPool
	ledger   *fakeLedger
	appState *appstate.State
	clock    time.Time
}

func newTestPool(t *testing.T, configure func(*Config)) (*testPool, func()) {
	config := DefaultConfig(&dposconfig.DevnetParams)
	config.DefaultExpiry = time.Hour
	if configure != nil {
		configure(config)
	}
	ledger := newFakeLedger()
	appState := appstate.New()
	tp := &testPool{
		TransactionPool: New(config, ledger, appState),
		ledger:          ledger,
		appState:        appState,
		clock:           time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	tp.now = func() time.Time { return tp.clock }
	return tp, tp.Stop
}

func (tp *testPool) advance(d time.Duration) {
	tp.clock = tp.clock.Add(d)
}

func newTransaction(id string) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{ID: id, Type: externalapi.TransactionTypeSend}
}

func newCoSignedTransaction(id string) *externalapi.DomainTransaction {
	transaction := newTransaction(id)
	transaction.Signatures = [][]byte{{1}}
	return transaction
}

func newMultisignatureTransaction(id string, lifetime uint32) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		ID:   id,
		Type: externalapi.TransactionTypeMultisignature,
		Asset: externalapi.DomainTransactionAsset{
			Multisignature: &externalapi.MultisignatureAsset{Min: 1, Lifetime: lifetime, Keysgroup: []string{"+00"}},
		},
	}
}

func queueOrFail(t *testing.T, tp *testPool, transaction *externalapi.DomainTransaction, isBundled bool) {
	err := tp.QueueTransaction(transaction, isBundled)
	if err != nil {
		t.Fatalf("QueueTransaction(%s): %+v", transaction.ID, err)
	}
}

// checkExclusive fails the test if any transaction id is held by more
// than one queue
func checkExclusive(t *testing.T, tp *testPool) {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	seen := make(map[string]queueName)
	for _, queue := range tp.queues() {
		if len(queue.entries) != len(queue.index) {
			t.Fatalf("the %s queue index is out of sync", queue.name)
		}
		for _, entry := range queue.entries {
			if previous, ok := seen[entry.transaction.ID]; ok {
				t.Fatalf("transaction %s is in both the %s and the %s queues", entry.transaction.ID,
					previous, queue.name)
			}
			seen[entry.transaction.ID] = queue.name
		}
	}
}

func ids(transactions []*externalapi.DomainTransaction) []string {
	result := make([]string, len(transactions))
	for i, transaction := range transactions {
		result[i] = transaction.ID
	}
	return result
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueueTransactionClassification(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	queueOrFail(t, tp, newTransaction("bundled"), true)
	queueOrFail(t, tp, newTransaction("plain"), false)
	queueOrFail(t, tp, newCoSignedTransaction("cosigned"), false)
	queueOrFail(t, tp, newMultisignatureTransaction("registration", 2), false)

	expected := Count{Bundled: 1, Queued: 1, Multisignature: 2}
	if count := tp.Count(); count != expected {
		t.Fatalf("expected %+v, got %+v", expected, count)
	}
	if !equalIDs(ids(tp.GetMultisignatureList()), []string{"cosigned", "registration"}) {
		t.Fatalf("unexpected multisignature queue %v", ids(tp.GetMultisignatureList()))
	}

	err := tp.QueueTransaction(newTransaction("plain"), true)
	if !errors.Is(err, ErrAlreadyInPool) {
		t.Fatalf("expected ErrAlreadyInPool, got %+v", err)
	}
	checkExclusive(t, tp)
}

func TestQueueTransactionPoolFull(t *testing.T) {
	tp, teardown := newTestPool(t, func(config *Config) {
		config.MaxTxsPerQueue = 2
	})
	defer teardown()

	queueOrFail(t, tp, newTransaction("1"), false)
	queueOrFail(t, tp, newTransaction("2"), false)

	err := tp.QueueTransaction(newTransaction("3"), false)
	if !errors.Is(err, ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull, got %+v", err)
	}
	if !errors.As(err, &RuleError{}) {
		t.Fatalf("expected a RuleError, got %T", err)
	}
	if tp.TransactionInPool("3") {
		t.Fatalf("a rejected transaction was queued")
	}

	// Other queues have their own capacity
	queueOrFail(t, tp, newTransaction("3"), true)
}

func TestFillPool(t *testing.T) {
	tp, teardown := newTestPool(t, func(config *Config) {
		config.MaxTxsPerBlock = 4
	})
	defer teardown()

	tp.ledger.notReady["unready"] = true
	queueOrFail(t, tp, newCoSignedTransaction("unready"), false)
	tp.advance(time.Second)
	queueOrFail(t, tp, newCoSignedTransaction("ready"), false)
	for i := 0; i < 5; i++ {
		tp.advance(time.Second)
		queueOrFail(t, tp, newTransaction(fmt.Sprintf("queued%d", i)), false)
	}

	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	expected := []string{"ready", "queued0", "queued1", "queued2"}
	unconfirmed := ids(tp.GetUnconfirmedList())
	if !equalIDs(unconfirmed, expected) {
		t.Fatalf("expected unconfirmed %v, got %v", expected, unconfirmed)
	}
	for _, transactionID := range expected {
		if tp.ledger.appliedCount(transactionID) != 1 {
			t.Fatalf("transaction %s was not applied unconfirmed", transactionID)
		}
	}
	if !equalIDs(ids(tp.GetMultisignatureList()), []string{"unready"}) {
		t.Fatalf("the unready transaction left the multisignature queue")
	}
	checkExclusive(t, tp)

	// The unconfirmed queue is full
	err = tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	if count := tp.Count(); count.Unconfirmed != 4 || count.Queued != 2 {
		t.Fatalf("a full pool was filled again: %+v", count)
	}
}

func TestFillPoolWhileSyncing(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	queueOrFail(t, tp, newTransaction("1"), false)
	tp.appState.SetSyncing(true)

	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	if count := tp.Count(); count.Unconfirmed != 0 {
		t.Fatalf("the pool was filled while syncing")
	}
}

func TestApplyUnconfirmedListEvictsInvalid(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	for _, transactionID := range []string{"1", "2", "3"} {
		queueOrFail(t, tp, newTransaction(transactionID), false)
	}
	tp.ledger.invalid["2"] = true

	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	if !equalIDs(ids(tp.GetUnconfirmedList()), []string{"1", "3"}) {
		t.Fatalf("expected the invalid transaction to be evicted, got %v", ids(tp.GetUnconfirmedList()))
	}
	if tp.TransactionInPool("2") || tp.ledger.appliedCount("2") != 0 {
		t.Fatalf("the invalid transaction was kept or applied")
	}
}

func TestApplyUnconfirmedListReturnsUnreadyTransactions(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	queueOrFail(t, tp, newTransaction("multisig-sender"), false)
	tp.ledger.notReady["multisig-sender"] = true

	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	if !equalIDs(ids(tp.GetMultisignatureList()), []string{"multisig-sender"}) {
		t.Fatalf("expected the transaction to wait for co-signatures")
	}
	if tp.ledger.appliedCount("multisig-sender") != 0 {
		t.Fatalf("a transaction lacking co-signatures was applied")
	}
	checkExclusive(t, tp)
}

func TestUndoAndReapplyUnconfirmedList(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	for _, transactionID := range []string{"a", "b", "c"} {
		queueOrFail(t, tp, newTransaction(transactionID), false)
	}
	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}

	undone, err := tp.UndoUnconfirmedList(model.NewStagingArea())
	if err != nil {
		t.Fatalf("UndoUnconfirmedList: %+v", err)
	}
	if !equalIDs(undone, []string{"a", "b", "c"}) {
		t.Fatalf("expected the ids in insertion order, got %v", undone)
	}
	for _, transactionID := range undone {
		if tp.ledger.appliedCount(transactionID) != 0 {
			t.Fatalf("transaction %s was not undone", transactionID)
		}
	}
	if tp.Count().Unconfirmed != 3 {
		t.Fatalf("UndoUnconfirmedList must not change the queue")
	}

	// A block confirmed b in the meantime
	tp.RemoveTransaction("b")
	err = tp.ApplyUnconfirmedList(undone)
	if err != nil {
		t.Fatalf("ApplyUnconfirmedList: %+v", err)
	}
	if tp.ledger.appliedCount("a") != 1 || tp.ledger.appliedCount("b") != 0 || tp.ledger.appliedCount("c") != 1 {
		t.Fatalf("unexpected applied counts %v", tp.ledger.applied)
	}
}

func TestUndoUnconfirmedListReportsFailures(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	for _, transactionID := range []string{"a", "b", "c"} {
		queueOrFail(t, tp, newTransaction(transactionID), false)
	}
	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}

	// The ledger lost track of b, so undoing it fails
	tp.ledger.lock.Lock()
	tp.ledger.applied["b"] = 0
	tp.ledger.lock.Unlock()

	undone, err := tp.UndoUnconfirmedList(model.NewStagingArea())
	var undoErr *model.UndoUnconfirmedError
	if !errors.As(err, &undoErr) {
		t.Fatalf("expected an UndoUnconfirmedError, got %+v", err)
	}
	if !equalIDs(undoErr.TransactionIDs, []string{"b"}) || len(undoErr.Errors) != 1 {
		t.Fatalf("expected the failure of b to be reported, got %v", undoErr.TransactionIDs)
	}
	if !equalIDs(undone, []string{"a", "c"}) {
		t.Fatalf("expected a and c to be undone, got %v", undone)
	}
	if tp.TransactionInPool("b") {
		t.Fatalf("a transaction that could not be undone was kept")
	}
	if tp.Count().Unconfirmed != 2 {
		t.Fatalf("expected 2 unconfirmed transactions, got %d", tp.Count().Unconfirmed)
	}
}

func TestExpireTransactions(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	queueOrFail(t, tp, newTransaction("unconfirmed"), false)
	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}
	if tp.ledger.appliedCount("unconfirmed") != 1 {
		t.Fatalf("expected the unconfirmed transaction to be applied")
	}
	queueOrFail(t, tp, newTransaction("plain"), false)
	queueOrFail(t, tp, newTransaction("bundled"), true)
	queueOrFail(t, tp, newCoSignedTransaction("cosigned"), false)
	queueOrFail(t, tp, newMultisignatureTransaction("registration", 2), false)

	tp.advance(90 * time.Minute)
	err = tp.ExpireTransactions()
	if err != nil {
		t.Fatalf("ExpireTransactions: %+v", err)
	}
	for _, transactionID := range []string{"plain", "bundled", "unconfirmed"} {
		if tp.TransactionInPool(transactionID) {
			t.Fatalf("transaction %s did not expire", transactionID)
		}
	}
	if tp.ledger.appliedCount("unconfirmed") != 0 {
		t.Fatalf("an expired unconfirmed transaction was not undone")
	}
	for _, transactionID := range []string{"cosigned", "registration"} {
		if !tp.TransactionInPool(transactionID) {
			t.Fatalf("transaction %s expired too early", transactionID)
		}
	}

	tp.advance(time.Hour)
	err = tp.ExpireTransactions()
	if err != nil {
		t.Fatalf("ExpireTransactions: %+v", err)
	}
	if tp.TransactionInPool("registration") {
		t.Fatalf("the registration outlived its lifetime")
	}
	if !tp.TransactionInPool("cosigned") {
		t.Fatalf("the co-signed transaction expired too early")
	}

	tp.advance(7 * time.Hour)
	err = tp.ExpireTransactions()
	if err != nil {
		t.Fatalf("ExpireTransactions: %+v", err)
	}
	if tp.TransactionInPool("cosigned") {
		t.Fatalf("the co-signed transaction did not expire")
	}
}

func TestReceiveTransactions(t *testing.T) {
	tp, teardown := newTestPool(t, nil)
	defer teardown()

	var notified []string
	tp.OnUnconfirmedTransaction(func(transaction *externalapi.DomainTransaction, broadcast bool) {
		if !broadcast {
			t.Errorf("expected transaction %s to be broadcast", transaction.ID)
		}
		notified = append(notified, transaction.ID)
	})

	tp.ledger.confirmed["old"] = true
	err := tp.ReceiveTransactions(context.Background(), []*externalapi.DomainTransaction{newTransaction("old")},
		true, false)
	if !errors.Is(err, ruleerrors.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %+v", err)
	}

	tp.ledger.invalid["forged"] = true
	err = tp.ReceiveTransactions(context.Background(), []*externalapi.DomainTransaction{
		newTransaction("good"), newTransaction("forged"), newTransaction("skipped"),
	}, true, false)
	if !errors.Is(err, ruleerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %+v", err)
	}
	if !tp.TransactionInPool("good") || tp.TransactionInPool("forged") || tp.TransactionInPool("skipped") {
		t.Fatalf("admission did not stop at the first rejected transaction")
	}

	tp.ledger.invalid["bad-bundled"] = true
	err = tp.ReceiveTransactions(context.Background(), []*externalapi.DomainTransaction{
		newTransaction("bundled"), newTransaction("bad-bundled"),
	}, true, true)
	if err != nil {
		t.Fatalf("ReceiveTransactions: %+v", err)
	}
	if tp.Count().Bundled != 2 {
		t.Fatalf("expected bundled transactions to be queued unverified")
	}

	err = tp.ProcessBundled()
	if err != nil {
		t.Fatalf("ProcessBundled: %+v", err)
	}
	if !equalIDs(ids(tp.GetQueuedList()), []string{"good", "bundled"}) {
		t.Fatalf("unexpected queued list %v", ids(tp.GetQueuedList()))
	}
	if tp.TransactionInPool("bad-bundled") {
		t.Fatalf("an invalid bundled transaction was released")
	}
	if !equalIDs(notified, []string{"good", "bundled"}) {
		t.Fatalf("unexpected notifications %v", notified)
	}
	checkExclusive(t, tp)
}

func TestGetMergedList(t *testing.T) {
	tp, teardown := newTestPool(t, func(config *Config) {
		config.MaxTxsPerBlock = 1
	})
	defer teardown()

	queueOrFail(t, tp, newTransaction("q1"), false)
	queueOrFail(t, tp, newTransaction("q2"), false)
	tp.ledger.notReady["m1"] = true
	queueOrFail(t, tp, newCoSignedTransaction("m1"), false)
	err := tp.FillPool()
	if err != nil {
		t.Fatalf("FillPool: %+v", err)
	}

	if merged := ids(tp.GetMergedList(0)); !equalIDs(merged, []string{"q1", "m1", "q2"}) {
		t.Fatalf("unexpected merged list %v", merged)
	}
	if merged := ids(tp.GetMergedList(2)); !equalIDs(merged, []string{"q1", "m1"}) {
		t.Fatalf("unexpected limited merged list %v", merged)
	}

	snapshot := tp.GetQueuedList()
	snapshot[0].Amount = 1000
	transaction, ok := tp.GetTransaction("q2")
	if !ok || transaction.Amount != 0 {
		t.Fatalf("a snapshot shares its transactions with the pool")
	}
}
