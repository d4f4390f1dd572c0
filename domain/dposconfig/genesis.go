package dposconfig

import (
	"crypto/sha256"
	"fmt"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
)

// GenesisAllocation credits Balance to Address in the genesis block
type GenesisAllocation struct {
	Address string
	Balance uint64
}

// GenesisDelegate is a delegate registered by the genesis block. Every
// genesis delegate is voted for by the genesis account.
type GenesisDelegate struct {
	PublicKey []byte
	Username  string
}

// Genesis defines the ledger state created by the genesis block
type Genesis struct {
	Timestamp          uint32
	GeneratorPublicKey []byte
	AccountPublicKey   []byte
	Allocations        []GenesisAllocation
	Delegates          []GenesisDelegate
}

// GenesisAccountSecret returns the secret of the account holding the
// genesis supply of the given network
func GenesisAccountSecret(network string) string {
	return fmt.Sprintf("%s genesis account", network)
}

// GenesisDelegateSecret returns the forging secret of the index'th
// genesis delegate of the given network
func GenesisDelegateSecret(network string, index int) string {
	return fmt.Sprintf("%s genesis delegate %d", network, index)
}

func newGenesis(network string, delegateCount int, supply uint64) *Genesis {
	account := keys.KeyPairFromSecret(GenesisAccountSecret(network))

	delegates := make([]GenesisDelegate, delegateCount)
	for i := range delegates {
		kp := keys.KeyPairFromSecret(GenesisDelegateSecret(network, i))
		delegates[i] = GenesisDelegate{
			PublicKey: kp.PublicKey,
			Username:  fmt.Sprintf("genesis_%d", i+1),
		}
	}

	return &Genesis{
		Timestamp:          0,
		GeneratorPublicKey: account.PublicKey,
		AccountPublicKey:   account.PublicKey,
		Allocations: []GenesisAllocation{
			{Address: hashing.AddressFromPublicKey(account.PublicKey), Balance: supply},
		},
		Delegates: delegates,
	}
}

// GenesisBlock returns the network's genesis block. It carries no
// transactions: the allocations and delegate registrations of Genesis
// are applied directly when it is.
func (p *Params) GenesisBlock() (*externalapi.DomainBlock, error) {
	emptyPayloadHash := sha256.Sum256(nil)
	block := &externalapi.DomainBlock{
		Version:            p.BlockVersion,
		Height:             1,
		Timestamp:          p.Genesis.Timestamp,
		PayloadHash:        emptyPayloadHash[:],
		GeneratorPublicKey: p.Genesis.GeneratorPublicKey,
	}

	hash, err := hashing.BlockSigningHash(block)
	if err != nil {
		return nil, err
	}
	block.BlockSignature = keys.KeyPairFromSecret(GenesisAccountSecret(p.Name)).Sign(hash)
	block.ID, err = hashing.BlockID(block)
	if err != nil {
		return nil, err
	}
	return block, nil
}
