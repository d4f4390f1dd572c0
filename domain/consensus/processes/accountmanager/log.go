package accountmanager

import (
	"github.com/RiseVision/rise-node/infrastructure/logger"
)

var log = logger.RegisterSubSystem("ACCT")
