package model

import (
	"fmt"
	"strings"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// UnconfirmedPool is the part of the transaction pool the chain drives
// while applying and reverting blocks
type UnconfirmedPool interface {
	UndoUnconfirmedList(stagingArea *StagingArea) ([]string, error)
	ApplyUnconfirmedList(transactionIDs []string) error
	RemoveTransaction(transactionID string)
	QueueTransaction(transaction *externalapi.DomainTransaction, isBundled bool) error
}

// UndoUnconfirmedError reports the unconfirmed transactions whose undo
// failed during UndoUnconfirmedList. They are evicted from the pool, and
// the remaining transactions are undone regardless.
type UndoUnconfirmedError struct {
	TransactionIDs []string
	Errors         []error
}

func (e *UndoUnconfirmedError) Error() string {
	failures := make([]string, len(e.TransactionIDs))
	for i, transactionID := range e.TransactionIDs {
		failures[i] = fmt.Sprintf("%s: %s", transactionID, e.Errors[i])
	}
	return fmt.Sprintf("failed to undo %d unconfirmed transactions [%s]",
		len(e.TransactionIDs), strings.Join(failures, "; "))
}
