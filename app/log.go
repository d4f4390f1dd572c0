package app

import (
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/util/panics"
)

var log = logger.RegisterSubSystem("RISE")
var spawn = panics.GoroutineWrapperFunc(log)
