package transactionpool

import (
	"github.com/pkg/errors"
)

// RuleError identifies a transaction the pool refused. The caller can use
// errors.As to tell it apart from internal failures, and errors.Is to
// match the sentinel it wraps.
type RuleError struct {
	Err error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Err.Error()
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.Err
}

// ErrPoolFull indicates the queue a transaction was destined to is at
// its configured capacity
var ErrPoolFull = errors.New("transaction pool queue is full")

// ErrAlreadyInPool indicates the transaction is already held in one of
// the pool's queues
var ErrAlreadyInPool = errors.New("transaction is already in the pool")

func poolRuleError(err error, format string, args ...interface{}) error {
	return errors.WithStack(RuleError{Err: errors.Wrapf(err, format, args...)})
}
