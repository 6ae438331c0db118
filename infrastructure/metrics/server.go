package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server serves the /metrics endpoint of a Metrics
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer listens on listenAddress, serving the collectors of m under /metrics.
// Call Start to begin serving.
func NewServer(m *Metrics, listenAddress string) (*Server, error) {
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "error listening for metrics on %s", listenAddress)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Handler:           mux,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		listener: listener,
	}, nil
}

// Address returns the address the server listens on
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Start serves metrics in a new goroutine
func (s *Server) Start() {
	spawn("Server.Start", func() {
		log.Infof("Serving metrics on %s/metrics", s.Address())
		err := s.server.Serve(s.listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server failed: %s", err)
		}
	})
}

// Stop shuts the server down, waiting for in-flight scrapes up to a timeout
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.WithStack(s.server.Shutdown(ctx))
}
