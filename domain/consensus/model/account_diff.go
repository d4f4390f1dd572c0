package model

// AccountDiff is a set of numeric deltas merged into an account. Every
// forward merge has an exact inverse obtained through Negate.
type AccountDiff struct {
	Balance            int64
	UnconfirmedBalance int64
	ProducedBlocks     int64
	MissedBlocks       int64
	Fees               int64
	Rewards            int64
}

// Negate returns the diff that reverses diff
func (diff *AccountDiff) Negate() *AccountDiff {
	return &AccountDiff{
		Balance:            -diff.Balance,
		UnconfirmedBalance: -diff.UnconfirmedBalance,
		ProducedBlocks:     -diff.ProducedBlocks,
		MissedBlocks:       -diff.MissedBlocks,
		Fees:               -diff.Fees,
		Rewards:            -diff.Rewards,
	}
}
