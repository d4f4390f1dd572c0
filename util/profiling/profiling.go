package profiling

import (
	"net"
	"net/http"

	// Required for profiling
	_ "net/http/pprof"

	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/util/panics"
)

// Start starts the profiling server on the given port
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		profileRedirect := http.RedirectHandler("/debug/pprof", http.StatusSeeOther)
		http.Handle("/", profileRedirect)
		log.Error(http.ListenAndServe(listenAddr, nil))
	})
}
