package ruleerrors

import (
	"testing"

	"github.com/pkg/errors"
)

func TestNewErrInvalidTransactionsInNewBlock(t *testing.T) {
	outer := NewErrInvalidTransactionsInNewBlock([]InvalidTransaction{{"1337", ErrInvalidSignature}})
	expectedOuterErr := "ErrInvalidTransactionsInNewBlock: [(1337: ErrInvalidSignature)]"
	inner := &ErrInvalidTransactionsInNewBlock{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrInvalidTransactionsInNewBlock: Outer should contain ErrInvalidTransactionsInNewBlock in it")
	}

	if len(inner.InvalidTransactions) != 1 {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected len(inner.InvalidTransactions) 1, found: %d", len(inner.InvalidTransactions))
	}
	if inner.InvalidTransactions[0].Error != ErrInvalidSignature {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected ErrInvalidSignature. found: %v", inner.InvalidTransactions[0].Error)
	}
	if inner.InvalidTransactions[0].TransactionID != "1337" {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected 1337. found: %v", inner.InvalidTransactions[0].TransactionID)
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestNewErrInvalidTransactionsInNewBlock: Outer should contain RuleError in it")
	}
	if rule.message != "ErrInvalidTransactionsInNewBlock" {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected message = 'ErrInvalidTransactionsInNewBlock', found: '%s'", rule.message)
	}

	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestWrappedRuleErrors(t *testing.T) {
	err := errors.Wrapf(ErrInsufficientBalance, "account 1R has balance 0")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("a wrapped sentinel is not matched by errors.Is")
	}
	if errors.Is(err, ErrInvalidFee) {
		t.Fatalf("a wrapped sentinel matched another sentinel")
	}
	if !IsRuleError(err) {
		t.Fatalf("IsRuleError did not detect a wrapped rule error")
	}
	if IsRuleError(errors.New("some error")) {
		t.Fatalf("IsRuleError detected a plain error")
	}
}
