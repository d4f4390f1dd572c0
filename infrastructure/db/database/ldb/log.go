package ldb

import "github.com/RiseVision/rise-node/infrastructure/logger"

var log = logger.RegisterSubSystem("LDB")
