package chainmanager

import (
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/util/panics"
)

var log = logger.RegisterSubSystem("CHMN")

// FatalHandler is called when the ledger can no longer be proven
// consistent. It is expected not to return.
type FatalHandler func(reason string)

func defaultFatalHandler(reason string) {
	panics.Exit(log, reason)
}
