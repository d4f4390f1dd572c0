package app

import (
	"context"

	"github.com/RiseVision/rise-node/app/loader"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// standalonePeers is the peer source of a node without a network
// transport. It knows no peers, so the loader never fetches anything.
type standalonePeers struct{}

func (standalonePeers) Peers(loader.PeerFilter) ([]*loader.Peer, error) {
	return nil, nil
}

func (standalonePeers) BlocksAfter(_ context.Context, peer *loader.Peer, _ string) ([]*externalapi.DomainBlock, error) {
	return nil, errors.Errorf("%s cannot be reached without a network transport", peer.Endpoint)
}
