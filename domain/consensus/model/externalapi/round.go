package externalapi

// DomainRoundRecord is the forging record persisted for every block:
// who forged it and what it collected. Round sums are aggregated from
// these records ordered by height.
type DomainRoundRecord struct {
	Height             uint64
	GeneratorPublicKey []byte
	Fee                uint64
	Reward             uint64
}

// Clone returns a clone of DomainRoundRecord
func (record *DomainRoundRecord) Clone() *DomainRoundRecord {
	if record == nil {
		return nil
	}
	clone := *record
	clone.GeneratorPublicKey = cloneBytes(record.GeneratorPublicKey)
	return &clone
}

// RoundSummary is the aggregate of all round records of a single round
type RoundSummary struct {
	Round          uint64
	RoundFees      uint64
	RoundRewards   []uint64
	RoundDelegates [][]byte
}
