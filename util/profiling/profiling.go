package profiling

import (
	"net"
	"net/http"

	// Required for profiling
	_ "net/http/pprof"

	"github.com/tanglenet/tangled/infrastructure/logger"
	"github.com/tanglenet/tangled/util/panics"
)

// Start serves the pprof endpoints on the given port of all interfaces.
// Requests to / redirect to /debug/pprof.
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		mux := http.NewServeMux()
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))
		log.Error(http.ListenAndServe(listenAddr, mux))
	})
}
