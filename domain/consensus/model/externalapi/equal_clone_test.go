package externalapi

import (
	"testing"
)

func initTestTransaction() *DomainTransaction {
	return &DomainTransaction{
		ID:                 "1234",
		Type:               TransactionTypeMultisignature,
		Timestamp:          5,
		SenderPublicKey:    []byte{1, 2, 3},
		SenderID:           "99R",
		RequesterPublicKey: []byte{4},
		RecipientID:        "100R",
		Amount:             6,
		Fee:                7,
		Asset: DomainTransactionAsset{
			Multisignature: &MultisignatureAsset{Min: 2, Lifetime: 24, Keysgroup: []string{"+aa", "+bb"}},
		},
		Signature:     []byte{8},
		SignSignature: []byte{9},
		Signatures:    [][]byte{{10}, {11}},
	}
}

func TestDomainTransaction_CloneEqual(t *testing.T) {
	tx := initTestTransaction()
	clone := tx.Clone()
	if !tx.Equal(clone) {
		t.Fatalf("Clone is not equal to the original transaction")
	}

	clone.Asset.Multisignature.Keysgroup[0] = "+cc"
	if tx.Asset.Multisignature.Keysgroup[0] != "+aa" {
		t.Fatalf("Mutating the clone's asset mutated the original")
	}
	if tx.Equal(clone) {
		t.Fatalf("Transactions with different keysgroups are equal")
	}

	clone = tx.Clone()
	clone.Signatures[1][0] = 12
	if tx.Equal(clone) {
		t.Fatalf("Transactions with different co-signatures are equal")
	}

	var nilTx *DomainTransaction
	if !nilTx.Equal(nil) {
		t.Fatalf("nil transactions are not equal")
	}
	if tx.Equal(nil) {
		t.Fatalf("A transaction is equal to nil")
	}
}

func TestDomainBlock_CloneEqual(t *testing.T) {
	block := &DomainBlock{
		ID:                   "42",
		Height:               3,
		PreviousBlock:        "41",
		NumberOfTransactions: 1,
		TotalFee:             7,
		PayloadHash:          []byte{1},
		GeneratorPublicKey:   []byte{2},
		BlockSignature:       []byte{3},
		Transactions:         []*DomainTransaction{initTestTransaction()},
	}
	clone := block.Clone()
	if !block.Equal(clone) {
		t.Fatalf("Clone is not equal to the original block")
	}
	clone.Transactions[0].Amount++
	if block.Equal(clone) {
		t.Fatalf("Blocks with different transactions are equal")
	}
}

func TestDomainAccount_CloneEqual(t *testing.T) {
	account := &DomainAccount{
		Address:          "1R",
		PublicKey:        []byte{1},
		Balance:          10,
		Votes:            []string{"aa"},
		UnconfirmedVotes: []string{"aa", "bb"},
	}
	clone := account.Clone()
	if !account.Equal(clone) {
		t.Fatalf("Clone is not equal to the original account")
	}
	clone.UnconfirmedVotes[1] = "cc"
	if account.UnconfirmedVotes[1] != "bb" {
		t.Fatalf("Mutating the clone's votes mutated the original")
	}
	if account.Equal(clone) {
		t.Fatalf("Accounts with different votes are equal")
	}
}
