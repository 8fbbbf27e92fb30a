// internal/httpserver/server.go
package httpserver

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aryodp/edgegate/internal/config"
	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/httpserver/mw"
	"github.com/aryodp/edgegate/internal/httpserver/routes"
	"github.com/aryodp/edgegate/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http     *http.Server
	logger   logger.Logger
	certFile string
	keyFile  string
}

// New builds the HTTP server (router, middlewares, route registration).
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	r := NewRouter(loggerClient, d)

	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:     s,
		logger:   loggerClient,
		certFile: cfg.TLSCertFile,
		keyFile:  cfg.TLSKeyFile,
	}
}

// NewRouter assembles the chi router with the global middleware stack
// and all registered routes. Split out so tests can exercise the full
// routing surface without binding a port.
func NewRouter(loggerClient logger.Logger, d deps.Deps) chi.Router {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)      // X-Request-ID on each request
	r.Use(mw.Recover(loggerClient))  // never crash the process on panic; JSON 500 body
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(mw.Log(loggerClient)) // structured access logs
	r.Use(mw.CORS())            // open CORS; answers OPTIONS preflight with 204

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"Method Not Allowed"}`))
	})

	// Auto-register all routes
	routes.RegisterAll(r, d)

	return r
}

// Start runs the HTTP server (blocks until error or shutdown). When
// the configured certificate material exists the server speaks TLS,
// otherwise it falls back to plaintext with a log line.
func (s *Server) Start() error {
	var err error
	if s.tlsReady() {
		s.logger.Infof("HTTPS server listening on %s", s.http.Addr)
		err = s.http.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		s.logger.Infof("HTTP server listening on %s (TLS certs not found, running in HTTP mode)", s.http.Addr)
		err = s.http.ListenAndServe()
	}

	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}

func (s *Server) tlsReady() bool {
	if s.certFile == "" || s.keyFile == "" {
		return false
	}
	if _, err := os.Stat(s.certFile); err != nil {
		return false
	}
	if _, err := os.Stat(s.keyFile); err != nil {
		return false
	}
	return true
}
