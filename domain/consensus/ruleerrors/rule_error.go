package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrUnknownTransactionType indicates no handler is registered for
	// the transaction's type.
	ErrUnknownTransactionType = newRuleError("ErrUnknownTransactionType")

	// ErrMissingSender indicates the transaction's sender public key is
	// missing or malformed.
	ErrMissingSender = newRuleError("ErrMissingSender")

	// ErrSenderMismatch indicates the transaction's sender id does not
	// derive from its sender public key.
	ErrSenderMismatch = newRuleError("ErrSenderMismatch")

	// ErrMissingRequester indicates the transaction carries a requester
	// public key whose account does not exist.
	ErrMissingRequester = newRuleError("ErrMissingRequester")

	// ErrInvalidRequester indicates a requester public key on a
	// transaction whose sender is not a multisignature account.
	ErrInvalidRequester = newRuleError("ErrInvalidRequester")

	// ErrInvalidRecipient indicates a malformed or unexpected recipient.
	ErrInvalidRecipient = newRuleError("ErrInvalidRecipient")

	// ErrInvalidAmount indicates the amount is not allowed for the
	// transaction's type.
	ErrInvalidAmount = newRuleError("ErrInvalidAmount")

	// ErrInvalidFee indicates the transaction's fee differs from the
	// fee calculated for it.
	ErrInvalidFee = newRuleError("ErrInvalidFee")

	// ErrInvalidTimestamp indicates the transaction's timestamp is in
	// the future.
	ErrInvalidTimestamp = newRuleError("ErrInvalidTimestamp")

	// ErrInvalidSignature indicates a signature that does not verify.
	ErrInvalidSignature = newRuleError("ErrInvalidSignature")

	// ErrInvalidSecondSignature indicates a missing, unexpected or
	// invalid second signature.
	ErrInvalidSecondSignature = newRuleError("ErrInvalidSecondSignature")

	// ErrInvalidMultisignatures indicates co-signatures that are
	// duplicated, unknown to the keysgroup, or do not verify.
	ErrInvalidMultisignatures = newRuleError("ErrInvalidMultisignatures")

	// ErrInvalidTransactionID indicates the transaction's id does not
	// match its contents.
	ErrInvalidTransactionID = newRuleError("ErrInvalidTransactionID")

	// ErrInsufficientBalance indicates the sender cannot cover the
	// transaction's amount and fee.
	ErrInsufficientBalance = newRuleError("ErrInsufficientBalance")

	// ErrInvalidAsset indicates a malformed type specific payload.
	ErrInvalidAsset = newRuleError("ErrInvalidAsset")

	// ErrAlreadyDelegate indicates a delegate registration by an
	// account that is already a delegate.
	ErrAlreadyDelegate = newRuleError("ErrAlreadyDelegate")

	// ErrUsernameTaken indicates a delegate registration with a
	// username that belongs to another delegate.
	ErrUsernameTaken = newRuleError("ErrUsernameTaken")

	// ErrInvalidVote indicates a vote for an unknown delegate, a
	// duplicate vote, or the removal of a vote that was never cast.
	ErrInvalidVote = newRuleError("ErrInvalidVote")

	// ErrAlreadySecondSignature indicates a second signature
	// registration by an account that already has one.
	ErrAlreadySecondSignature = newRuleError("ErrAlreadySecondSignature")

	// ErrAlreadyMultisignature indicates a keysgroup registration by an
	// account that already has one.
	ErrAlreadyMultisignature = newRuleError("ErrAlreadyMultisignature")

	// ErrDuplicateTransaction indicates a transaction that was already
	// confirmed or is already in the pool.
	ErrDuplicateTransaction = newRuleError("ErrDuplicateTransaction")

	// ErrPayloadTooLarge indicates a block whose serialized
	// transactions exceed the maximum payload length.
	ErrPayloadTooLarge = newRuleError("ErrPayloadTooLarge")

	// ErrTooManyTransactions indicates a block with more transactions
	// than allowed.
	ErrTooManyTransactions = newRuleError("ErrTooManyTransactions")

	// ErrInvalidBlockVersion indicates an unsupported block version.
	ErrInvalidBlockVersion = newRuleError("ErrInvalidBlockVersion")

	// ErrInvalidPreviousBlock indicates a block that does not extend
	// the current tip.
	ErrInvalidPreviousBlock = newRuleError("ErrInvalidPreviousBlock")

	// ErrInvalidPayloadHash indicates a payload hash that does not match
	// the block's transactions.
	ErrInvalidPayloadHash = newRuleError("ErrInvalidPayloadHash")

	// ErrInvalidBlockTotals indicates a block whose total amount, total
	// fee, transaction count or payload length does not match its
	// transactions.
	ErrInvalidBlockTotals = newRuleError("ErrInvalidBlockTotals")

	// ErrInvalidReward indicates a block reward that differs from the
	// reward schedule.
	ErrInvalidReward = newRuleError("ErrInvalidReward")

	// ErrInvalidBlockID indicates a block id that does not match the
	// block's contents.
	ErrInvalidBlockID = newRuleError("ErrInvalidBlockID")

	// ErrInvalidBlockSlot indicates a block forged in the future, in a
	// slot not after its previous block's, or by a delegate that does
	// not own its slot.
	ErrInvalidBlockSlot = newRuleError("ErrInvalidBlockSlot")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// InvalidTransaction is a struct containing an invalid transaction id, and the error explaining why it's invalid.
type InvalidTransaction struct {
	TransactionID string
	Error         error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%s: %s)", invalid.TransactionID, invalid.Error)
}

// ErrInvalidTransactionsInNewBlock indicates that some transactions in a new block are invalid
type ErrInvalidTransactionsInNewBlock struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInNewBlock) Error() string {
	return fmt.Sprint(e.InvalidTransactions)
}

// NewErrInvalidTransactionsInNewBlock Creates a new ErrInvalidTransactionsInNewBlock error wrapped in a RuleError
func NewErrInvalidTransactionsInNewBlock(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransactionsInNewBlock",
		inner:   ErrInvalidTransactionsInNewBlock{invalidTransactions},
	})
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	return errors.As(err, &RuleError{})
}
