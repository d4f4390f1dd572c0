package serialization

import (
	"testing"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
)

func TestAccountSerialization(t *testing.T) {
	account := &externalapi.DomainAccount{
		Address:                  "1234R",
		PublicKey:                []byte{1, 2, 3},
		Balance:                  100,
		UnconfirmedBalance:       -5,
		IsDelegate:               true,
		Username:                 "delegate",
		SecondPublicKey:          []byte{4},
		UnconfirmedVotes:         []string{"aa", "bb"},
		Multisignatures:          []string{"cc"},
		MultiMin:                 2,
		UnconfirmedMultiLifetime: 24,
		ProducedBlocks:           3,
		MissedBlocks:             1,
		Fees:                     -7,
		VoteWeight:               99,
	}
	deserialized, err := DeserializeAccount(SerializeAccount(account))
	if err != nil {
		t.Fatalf("DeserializeAccount: %+v", err)
	}
	if !account.Equal(deserialized) {
		t.Fatalf("account changed through serialization. Want: %s, got: %s",
			spew.Sdump(account), spew.Sdump(deserialized))
	}
}

func TestBlockSerialization(t *testing.T) {
	block := &externalapi.DomainBlock{
		ID:                   "987",
		Height:               12,
		PreviousBlock:        "986",
		Timestamp:            300,
		NumberOfTransactions: 2,
		TotalAmount:          5,
		TotalFee:             6,
		Reward:               7,
		PayloadLength:        8,
		PayloadHash:          []byte{9},
		GeneratorPublicKey:   []byte{10},
		BlockSignature:       []byte{11},
	}
	deserialized, transactionIDs, err := DeserializeBlock(SerializeBlock(block, []string{"1", "2"}))
	if err != nil {
		t.Fatalf("DeserializeBlock: %+v", err)
	}
	if !block.Equal(deserialized) {
		t.Fatalf("block changed through serialization. Want: %s, got: %s",
			spew.Sdump(block), spew.Sdump(deserialized))
	}
	if len(transactionIDs) != 2 || transactionIDs[0] != "1" || transactionIDs[1] != "2" {
		t.Fatalf("unexpected transaction ids %v", transactionIDs)
	}
}

func TestTransactionSerialization(t *testing.T) {
	transaction := &externalapi.DomainTransaction{
		ID:              "55",
		Type:            externalapi.TransactionTypeVote,
		Timestamp:       10,
		SenderPublicKey: []byte{1},
		SenderID:        "1R",
		RecipientID:     "1R",
		Fee:             100,
		Signature:       []byte{2},
		Signatures:      [][]byte{{3}, {4}},
		BlockID:         "77",
		Height:          3,
	}
	deserialized, err := DeserializeTransaction(SerializeTransaction(transaction))
	if err != nil {
		t.Fatalf("DeserializeTransaction: %+v", err)
	}
	if !transaction.Equal(deserialized) {
		t.Fatalf("transaction changed through serialization. Want: %s, got: %s",
			spew.Sdump(transaction), spew.Sdump(deserialized))
	}
}

func TestVoteWeightsSerialization(t *testing.T) {
	voteWeights := map[string]int64{"1R": 10, "2R": 0, "3R": -3}
	deserialized, err := DeserializeVoteWeights(SerializeVoteWeights(voteWeights))
	if err != nil {
		t.Fatalf("DeserializeVoteWeights: %+v", err)
	}
	if len(deserialized) != len(voteWeights) {
		t.Fatalf("got %d entries, want %d", len(deserialized), len(voteWeights))
	}
	for address, weight := range voteWeights {
		if deserialized[address] != weight {
			t.Fatalf("weight of %s is %d, want %d", address, deserialized[address], weight)
		}
	}
}

func TestDeserializeMalformed(t *testing.T) {
	_, err := DeserializeAccount([]byte{0x0a, 0x05, 'a'})
	if err == nil {
		t.Fatalf("DeserializeAccount accepted a truncated record")
	}
	// Field 3 (balance) encoded with the bytes wire type
	_, err = DeserializeAccount([]byte{0x1a, 0x01, 0x00})
	if err == nil {
		t.Fatalf("DeserializeAccount accepted a field with the wrong wire type")
	}
}
