package loader

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/consensustestutils"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

const fetchBatchSize = 3

type fakePeers []*Peer

func (fp fakePeers) Peers(filter PeerFilter) ([]*Peer, error) {
	var peers []*Peer
	for _, peer := range fp {
		if filter(peer) {
			peers = append(peers, peer)
		}
	}
	return peers, nil
}

// fakeFetcher serves blocks out of a consensus instance per endpoint.
// Endpoints without a chain fail every request.
type fakeFetcher struct {
	chains   map[string]consensus.Consensus
	requests []string
}

func (ff *fakeFetcher) BlocksAfter(_ context.Context, peer *Peer, lastBlockID string) ([]*externalapi.DomainBlock, error) {
	ff.requests = append(ff.requests, peer.Endpoint)
	chain, ok := ff.chains[peer.Endpoint]
	if !ok {
		return nil, errors.Errorf("%s is unreachable", peer.Endpoint)
	}
	hasBlock, err := chain.HasBlock(lastBlockID)
	if err != nil {
		return nil, err
	}
	if !hasBlock {
		return nil, ErrUnknownBlock
	}
	lastBlock, err := chain.GetBlock(lastBlockID)
	if err != nil {
		return nil, err
	}
	tip, err := chain.LastBlock()
	if err != nil {
		return nil, err
	}
	var blocks []*externalapi.DomainBlock
	for height := lastBlock.Height + 1; height <= tip.Height && len(blocks) < fetchBatchSize; height++ {
		block, err := chain.GetBlockByHeight(height)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

type recordedSleeps []time.Duration

func (rs *recordedSleeps) sleep(_ context.Context, duration time.Duration) error {
	*rs = append(*rs, duration)
	return nil
}

func testConfig() *Config {
	return &Config{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     3 * time.Second,
		SyncInterval:   time.Second,
		MaxForkDepth:   5,
	}
}

func newSourceChain(t *testing.T, params *dposconfig.Params, blocks int) (consensus.TestConsensus, func()) {
	source, teardown := consensustestutils.NewTestConsensus(t, params)
	consensustestutils.ForgeBlocks(t, source, blocks)
	return source, teardown
}

func assertSameTip(t *testing.T, expected, actual consensus.Consensus) {
	expectedTip, err := expected.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	actualTip, err := actual.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	if expectedTip.ID != actualTip.ID || expectedTip.Height != actualTip.Height {
		t.Fatalf("expected tip %s at height %d, got %s at height %d",
			expectedTip.ID, expectedTip.Height, actualTip.ID, actualTip.Height)
	}
}

func TestSync(t *testing.T) {
	params := dposconfig.DevnetParams
	source, teardownSource := newSourceChain(t, &params, 7)
	defer teardownSource()
	target, teardownTarget := consensustestutils.NewTestConsensus(t, &params)
	defer teardownTarget()

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{"source": source}}
	loader := New(testConfig(), target, fakePeers{{Endpoint: "source", Height: 8}}, fetcher)
	var sleeps recordedSleeps
	loader.sleep = sleeps.sleep

	err := loader.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %+v", err)
	}
	assertSameTip(t, source, target)
	if len(sleeps) != 0 {
		t.Fatalf("a successful sync backed off %d times", len(sleeps))
	}
	if target.AppState().IsSyncing() {
		t.Fatalf("the node is still marked as syncing")
	}

	sourceCommitment, err := source.AccountsCommitment()
	if err != nil {
		t.Fatalf("AccountsCommitment: %+v", err)
	}
	targetCommitment, err := target.AccountsCommitment()
	if err != nil {
		t.Fatalf("AccountsCommitment: %+v", err)
	}
	if sourceCommitment != targetCommitment {
		t.Fatalf("the synced accounts differ from the source's")
	}
}

func TestSyncSwitchesPeerAfterFailure(t *testing.T) {
	params := dposconfig.DevnetParams
	source, teardownSource := newSourceChain(t, &params, 4)
	defer teardownSource()
	target, teardownTarget := consensustestutils.NewTestConsensus(t, &params)
	defer teardownTarget()

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{"good": source}}
	peers := fakePeers{
		{Endpoint: "broken", Height: 5},
		{Endpoint: "good", Height: 5},
	}
	loader := New(testConfig(), target, peers, fetcher)
	var sleeps recordedSleeps
	loader.sleep = sleeps.sleep

	err := loader.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %+v", err)
	}
	assertSameTip(t, source, target)

	if fetcher.requests[0] != "broken" || fetcher.requests[1] != "good" {
		t.Fatalf("expected a different peer after the first one failed, got %v",
			fetcher.requests)
	}
	for i := 1; i < len(fetcher.requests); i++ {
		if fetcher.requests[i] == "broken" && fetcher.requests[i-1] == "broken" {
			t.Fatalf("the failed peer was retried right away: %v", fetcher.requests)
		}
	}
}

func TestSyncSkipsEveryFailedPeer(t *testing.T) {
	params := dposconfig.DevnetParams
	source, teardownSource := newSourceChain(t, &params, 4)
	defer teardownSource()
	target, teardownTarget := consensustestutils.NewTestConsensus(t, &params)
	defer teardownTarget()

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{"good": source}}
	peers := fakePeers{
		{Endpoint: "brokenA", Height: 5},
		{Endpoint: "brokenB", Height: 5},
		{Endpoint: "good", Height: 5},
	}
	loader := New(testConfig(), target, peers, fetcher)
	var sleeps recordedSleeps
	loader.sleep = sleeps.sleep

	err := loader.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %+v", err)
	}
	assertSameTip(t, source, target)

	expected := []string{"brokenA", "brokenB", "good"}
	if len(fetcher.requests) < len(expected) {
		t.Fatalf("expected requests to start with %v, got %v", expected, fetcher.requests)
	}
	for i, endpoint := range expected {
		if fetcher.requests[i] != endpoint {
			t.Fatalf("expected requests to start with %v, got %v", expected, fetcher.requests)
		}
	}
}

func TestChoosePeerFallsBackToOldestFailure(t *testing.T) {
	peers := fakePeers{
		{Endpoint: "a", Height: 5},
		{Endpoint: "b", Height: 7},
		{Endpoint: "c", Height: 3},
	}
	loader := New(testConfig(), nil, peers, &fakeFetcher{})

	tests := []struct {
		name        string
		failedPeers map[string]int
		expected    string
	}{
		{name: "no failures", failedPeers: map[string]int{}, expected: "b"},
		{name: "highest failed", failedPeers: map[string]int{"b": 1}, expected: "a"},
		{name: "two failed", failedPeers: map[string]int{"b": 1, "a": 2}, expected: "c"},
		{name: "every peer failed", failedPeers: map[string]int{"b": 3, "a": 2, "c": 4}, expected: "a"},
	}
	for _, test := range tests {
		peer, err := loader.choosePeer(1, test.failedPeers)
		if err != nil {
			t.Fatalf("%s: choosePeer: %+v", test.name, err)
		}
		if peer == nil || peer.Endpoint != test.expected {
			t.Errorf("%s: expected %s, got %v", test.name, test.expected, peer)
		}
	}

	peer, err := loader.choosePeer(10, map[string]int{})
	if err != nil {
		t.Fatalf("choosePeer: %+v", err)
	}
	if peer != nil {
		t.Fatalf("expected no peer above height 10, got %s", peer.Endpoint)
	}
}

func TestSyncGivesUpAfterMaxAttempts(t *testing.T) {
	params := dposconfig.DevnetParams
	target, teardown := consensustestutils.NewTestConsensus(t, &params)
	defer teardown()

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{}}
	loader := New(testConfig(), target, fakePeers{{Endpoint: "broken", Height: 10}}, fetcher)
	var sleeps recordedSleeps
	loader.sleep = sleeps.sleep

	err := loader.Sync(context.Background())
	if err == nil {
		t.Fatalf("Sync succeeded against an unreachable peer")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(fetcher.requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(fetcher.requests))
	}
	expectedSleeps := recordedSleeps{time.Second, 2 * time.Second}
	if len(sleeps) != len(expectedSleeps) {
		t.Fatalf("expected backoffs %v, got %v", expectedSleeps, sleeps)
	}
	for i := range sleeps {
		if sleeps[i] != expectedSleeps[i] {
			t.Fatalf("expected backoffs %v, got %v", expectedSleeps, sleeps)
		}
	}
}

func TestSyncResolvesFork(t *testing.T) {
	params := dposconfig.DevnetParams
	source, teardownSource := newSourceChain(t, &params, 4)
	defer teardownSource()
	target, teardownTarget := consensustestutils.NewTestConsensus(t, &params)
	defer teardownTarget()

	genesisKeyPair := consensustestutils.GenesisAccountKeyPair(&params)
	recipient := hashing.AddressFromPublicKey(params.Genesis.Delegates[0].PublicKey)
	transaction := consensustestutils.NewSendTransaction(t, target, genesisKeyPair, recipient, 1000)
	forkedBlock, err := target.ForgeBlock([]*externalapi.DomainTransaction{transaction})
	if err != nil {
		t.Fatalf("ForgeBlock: %+v", err)
	}

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{"source": source}}
	loader := New(testConfig(), target, fakePeers{{Endpoint: "source", Height: 5}}, fetcher)
	loader.sleep = (&recordedSleeps{}).sleep

	err = loader.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %+v", err)
	}
	assertSameTip(t, source, target)

	hasBlock, err := target.HasBlock(forkedBlock.ID)
	if err != nil {
		t.Fatalf("HasBlock: %+v", err)
	}
	if hasBlock {
		t.Fatalf("the forked block was kept")
	}
	confirmed, err := target.IsTransactionConfirmed(transaction.ID)
	if err != nil {
		t.Fatalf("IsTransactionConfirmed: %+v", err)
	}
	if confirmed {
		t.Fatalf("the forked block's transaction is still confirmed")
	}
}

func TestSyncStopsOnCleanupRequest(t *testing.T) {
	params := dposconfig.DevnetParams
	source, teardownSource := newSourceChain(t, &params, 4)
	defer teardownSource()
	target, teardownTarget := consensustestutils.NewTestConsensus(t, &params)
	defer teardownTarget()

	genesis, err := target.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}

	fetcher := &fakeFetcher{chains: map[string]consensus.Consensus{"source": source}}
	loader := New(testConfig(), target, fakePeers{{Endpoint: "source", Height: 5}}, fetcher)
	target.AppState().RequestCleanup()

	err = loader.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %+v", err)
	}
	lastBlock, err := target.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	if lastBlock.ID != genesis.ID {
		t.Fatalf("blocks were processed after cleanup was requested")
	}
	if len(fetcher.requests) != 0 {
		t.Fatalf("peers were queried after cleanup was requested")
	}
}
