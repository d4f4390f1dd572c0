package externalapi

import (
	"bytes"
	"fmt"
)

// TransactionType enumerates the kinds of transactions
type TransactionType uint8

// The transaction types known to the network. TransactionTypeDApp is
// enumerated for wire compatibility but has no registered handler.
const (
	TransactionTypeSend            TransactionType = 0
	TransactionTypeSecondSignature TransactionType = 1
	TransactionTypeDelegate        TransactionType = 2
	TransactionTypeVote            TransactionType = 3
	TransactionTypeMultisignature  TransactionType = 4
	TransactionTypeDApp            TransactionType = 5
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeSend:            "send",
	TransactionTypeSecondSignature: "second-signature",
	TransactionTypeDelegate:        "delegate",
	TransactionTypeVote:            "vote",
	TransactionTypeMultisignature:  "multisignature",
	TransactionTypeDApp:            "dapp",
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// DomainTransaction represents a signed ledger transaction
type DomainTransaction struct {
	ID                 string
	Type               TransactionType
	Timestamp          uint32
	SenderPublicKey    []byte
	SenderID           string
	RequesterPublicKey []byte
	RecipientID        string
	Amount             uint64
	Fee                uint64
	Asset              DomainTransactionAsset
	Signature          []byte
	SignSignature      []byte

	// Signatures are the co-signatures collected from the members of
	// the sender's multisignature keysgroup
	Signatures [][]byte

	// BlockID and Height are set once the transaction is confirmed
	BlockID string
	Height  uint64
}

// DomainTransactionAsset holds the type specific payload of a transaction.
// At most one of its fields is set.
type DomainTransactionAsset struct {
	Signature      *SignatureAsset
	Delegate       *DelegateAsset
	Votes          []string
	Multisignature *MultisignatureAsset
}

// SignatureAsset registers a second public key for the sender
type SignatureAsset struct {
	PublicKey []byte
}

// DelegateAsset registers the sender as a delegate
type DelegateAsset struct {
	Username string
}

// MultisignatureAsset registers a multisignature keysgroup for the sender.
// Keysgroup entries are "+" prefixed hex encoded public keys.
type MultisignatureAsset struct {
	Min       uint32
	Lifetime  uint32
	Keysgroup []string
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	if tx == nil {
		return nil
	}

	clone := *tx
	clone.SenderPublicKey = cloneBytes(tx.SenderPublicKey)
	clone.RequesterPublicKey = cloneBytes(tx.RequesterPublicKey)
	clone.Signature = cloneBytes(tx.Signature)
	clone.SignSignature = cloneBytes(tx.SignSignature)
	if tx.Signatures != nil {
		clone.Signatures = make([][]byte, len(tx.Signatures))
		for i, signature := range tx.Signatures {
			clone.Signatures[i] = cloneBytes(signature)
		}
	}
	clone.Asset = *tx.Asset.Clone()
	return &clone
}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}

	if tx.ID != other.ID ||
		tx.Type != other.Type ||
		tx.Timestamp != other.Timestamp ||
		!bytes.Equal(tx.SenderPublicKey, other.SenderPublicKey) ||
		tx.SenderID != other.SenderID ||
		!bytes.Equal(tx.RequesterPublicKey, other.RequesterPublicKey) ||
		tx.RecipientID != other.RecipientID ||
		tx.Amount != other.Amount ||
		tx.Fee != other.Fee ||
		!bytes.Equal(tx.Signature, other.Signature) ||
		!bytes.Equal(tx.SignSignature, other.SignSignature) ||
		tx.BlockID != other.BlockID ||
		tx.Height != other.Height {
		return false
	}

	if len(tx.Signatures) != len(other.Signatures) {
		return false
	}
	for i := range tx.Signatures {
		if !bytes.Equal(tx.Signatures[i], other.Signatures[i]) {
			return false
		}
	}

	return tx.Asset.Equal(&other.Asset)
}

// Clone returns a clone of DomainTransactionAsset
func (asset *DomainTransactionAsset) Clone() *DomainTransactionAsset {
	clone := &DomainTransactionAsset{
		Votes: cloneStrings(asset.Votes),
	}
	if asset.Signature != nil {
		clone.Signature = &SignatureAsset{PublicKey: cloneBytes(asset.Signature.PublicKey)}
	}
	if asset.Delegate != nil {
		clone.Delegate = &DelegateAsset{Username: asset.Delegate.Username}
	}
	if asset.Multisignature != nil {
		clone.Multisignature = &MultisignatureAsset{
			Min:       asset.Multisignature.Min,
			Lifetime:  asset.Multisignature.Lifetime,
			Keysgroup: cloneStrings(asset.Multisignature.Keysgroup),
		}
	}
	return clone
}

// Equal returns whether asset equals to other
func (asset *DomainTransactionAsset) Equal(other *DomainTransactionAsset) bool {
	if (asset.Signature == nil) != (other.Signature == nil) ||
		(asset.Delegate == nil) != (other.Delegate == nil) ||
		(asset.Multisignature == nil) != (other.Multisignature == nil) {
		return false
	}
	if asset.Signature != nil && !bytes.Equal(asset.Signature.PublicKey, other.Signature.PublicKey) {
		return false
	}
	if asset.Delegate != nil && asset.Delegate.Username != other.Delegate.Username {
		return false
	}
	if asset.Multisignature != nil {
		if asset.Multisignature.Min != other.Multisignature.Min ||
			asset.Multisignature.Lifetime != other.Multisignature.Lifetime ||
			!stringsEqual(asset.Multisignature.Keysgroup, other.Multisignature.Keysgroup) {
			return false
		}
	}
	return stringsEqual(asset.Votes, other.Votes)
}
