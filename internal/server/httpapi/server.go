// Package httpapi exposes the authentication service over HTTP: JSON
// endpoints for registration, login and refresh, the refresh-token cookie,
// and the JWT middleware guarding identity endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mkokor/jwt-based-access-management/internal/logging"
	"github.com/mkokor/jwt-based-access-management/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address   string
	logger    logging.Logger
	auth      *services.AuthService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, authService *services.AuthService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		auth:      authService,
		jwtSecret: []byte(secretKey),
	}
}

// Handler assembles the route table. Split out from Run so tests can drive
// the mux through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/authentication/register", s.handleRegister)
	mux.HandleFunc("POST /api/authentication/login", s.handleLogin)
	mux.HandleFunc("POST /api/authentication/refresh-token", s.handleRefreshToken)

	mux.Handle("GET /api/users/me", s.authenticate(http.HandlerFunc(s.handleCurrentUser)))
	mux.Handle("GET /api/users", s.authenticate(http.HandlerFunc(s.handleListUsers)))

	return mux
}

// Run serves the API until the context is cancelled, then shuts the listener
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
