package loader

import (
	"context"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrUnknownBlock is returned by a BlockFetcher when the peer does not
// know the block the request starts from
var ErrUnknownBlock = errors.New("unknown block")

// Peer is a remote node as seen by the loader
type Peer struct {
	Endpoint string
	Height   uint64
}

// PeerFilter reports whether a peer may be selected
type PeerFilter func(peer *Peer) bool

// PeerProvider lists the currently known peers accepted by filter
type PeerProvider interface {
	Peers(filter PeerFilter) ([]*Peer, error)
}

// BlockFetcher requests from peer the blocks that follow lastBlockID, in
// ascending height order
type BlockFetcher interface {
	BlocksAfter(ctx context.Context, peer *Peer, lastBlockID string) ([]*externalapi.DomainBlock, error)
}
