package loader

import (
	"github.com/RiseVision/rise-node/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LDR")
