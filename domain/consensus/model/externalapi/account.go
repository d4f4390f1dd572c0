package externalapi

import (
	"bytes"
)

// DomainAccount is the ledger state of a single address. Every field that
// can be changed by an in-flight transaction is tracked twice: the confirmed
// value, mutated when a block is applied, and its Unconfirmed counterpart,
// mutated when a transaction enters the unconfirmed pool queue.
type DomainAccount struct {
	Address   string
	PublicKey []byte

	Balance            int64
	UnconfirmedBalance int64

	IsDelegate            bool
	UnconfirmedIsDelegate bool
	Username              string
	UnconfirmedUsername   string

	SecondSignature            bool
	UnconfirmedSecondSignature bool
	SecondPublicKey            []byte

	// Votes hold hex encoded delegate public keys, sorted ascending
	Votes            []string
	UnconfirmedVotes []string

	// Multisignatures hold hex encoded public keys of the account's
	// multisignature keysgroup
	Multisignatures            []string
	UnconfirmedMultisignatures []string
	MultiMin                   uint32
	UnconfirmedMultiMin        uint32
	MultiLifetime              uint32
	UnconfirmedMultiLifetime   uint32

	ProducedBlocks int64
	MissedBlocks   int64
	Fees           int64
	Rewards        int64
	VoteWeight     int64
}

// HasPublicKey returns whether the account's public key is known
func (account *DomainAccount) HasPublicKey() bool {
	return len(account.PublicKey) > 0
}

// IsMultisignature returns whether the account has a confirmed
// multisignature keysgroup
func (account *DomainAccount) IsMultisignature() bool {
	return len(account.Multisignatures) > 0
}

// Clone returns a clone of DomainAccount
func (account *DomainAccount) Clone() *DomainAccount {
	if account == nil {
		return nil
	}

	clone := *account
	clone.PublicKey = cloneBytes(account.PublicKey)
	clone.SecondPublicKey = cloneBytes(account.SecondPublicKey)
	clone.Votes = cloneStrings(account.Votes)
	clone.UnconfirmedVotes = cloneStrings(account.UnconfirmedVotes)
	clone.Multisignatures = cloneStrings(account.Multisignatures)
	clone.UnconfirmedMultisignatures = cloneStrings(account.UnconfirmedMultisignatures)
	return &clone
}

// Equal returns whether account equals to other
func (account *DomainAccount) Equal(other *DomainAccount) bool {
	if account == nil || other == nil {
		return account == other
	}

	if account.Address != other.Address ||
		!bytes.Equal(account.PublicKey, other.PublicKey) ||
		account.Balance != other.Balance ||
		account.UnconfirmedBalance != other.UnconfirmedBalance ||
		account.IsDelegate != other.IsDelegate ||
		account.UnconfirmedIsDelegate != other.UnconfirmedIsDelegate ||
		account.Username != other.Username ||
		account.UnconfirmedUsername != other.UnconfirmedUsername ||
		account.SecondSignature != other.SecondSignature ||
		account.UnconfirmedSecondSignature != other.UnconfirmedSecondSignature ||
		!bytes.Equal(account.SecondPublicKey, other.SecondPublicKey) ||
		account.MultiMin != other.MultiMin ||
		account.UnconfirmedMultiMin != other.UnconfirmedMultiMin ||
		account.MultiLifetime != other.MultiLifetime ||
		account.UnconfirmedMultiLifetime != other.UnconfirmedMultiLifetime ||
		account.ProducedBlocks != other.ProducedBlocks ||
		account.MissedBlocks != other.MissedBlocks ||
		account.Fees != other.Fees ||
		account.Rewards != other.Rewards ||
		account.VoteWeight != other.VoteWeight {
		return false
	}

	return stringsEqual(account.Votes, other.Votes) &&
		stringsEqual(account.UnconfirmedVotes, other.UnconfirmedVotes) &&
		stringsEqual(account.Multisignatures, other.Multisignatures) &&
		stringsEqual(account.UnconfirmedMultisignatures, other.UnconfirmedMultisignatures)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	clone := make([]string, len(s))
	copy(clone, s)
	return clone
}

func stringsEqual(a, b []string) bool {
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
