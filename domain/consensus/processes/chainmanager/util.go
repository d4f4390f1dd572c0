package chainmanager

import (
	"sort"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/pkg/errors"
)

func sortedCopy(values []string) []string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return sorted
}

// undoUnconfirmedList undoes the pool's unconfirmed list. Transactions the
// pool could not undo were already evicted by it, so they are only logged.
func (cm *chainManager) undoUnconfirmedList(stagingArea *model.StagingArea) ([]string, error) {
	unconfirmedIDs, err := cm.pool.UndoUnconfirmedList(stagingArea)
	if err != nil {
		var undoErr *model.UndoUnconfirmedError
		if !errors.As(err, &undoErr) {
			return nil, errors.Wrap(err, "cannot undo the unconfirmed transactions")
		}
		log.Warnf("Evicted unconfirmed transactions: %s", undoErr)
	}
	return unconfirmedIDs, nil
}
