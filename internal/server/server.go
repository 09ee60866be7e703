// Package server exposes the interception gateway over a local HTTP API so
// non-Go client surfaces can consume it out of process. It also serves the
// health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/directory"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/gateway"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policystate"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server is the sidecar HTTP API.
type Server struct {
	gateway   *gateway.Gateway
	state     *policystate.State
	directory *directory.Memory
	port      int
	logger    *zerolog.Logger
}

func New(gw *gateway.Gateway, state *policystate.State, dir *directory.Memory, port int, logger *zerolog.Logger) *Server {
	return &Server{
		gateway:   gw,
		state:     state,
		directory: dir,
		port:      port,
		logger:    logger,
	}
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/intercept/outgoing", s.handleOutgoing)
	router.Post("/intercept/forward", s.handleForward)
	router.Post("/record/delivered", s.handleDelivered)
	router.Get("/policy", s.handlePolicy)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Int("port", s.port).Msg("gateway server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown gateway server: %w", err)
	}

	return nil
}
