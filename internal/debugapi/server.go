// Package debugapi exposes a small localhost-only, read-only HTTP surface
// for inspecting the monitor's state: health, task status, and recent log
// entries. Grounded on the teacher's management API controller, scaled
// down — no auth token, no mutation routes, since the link's command
// protocol is the only write path into this system.
package debugapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rx178nwj/SoilMonitorRev2/internal/log"
	"github.com/rx178nwj/SoilMonitorRev2/internal/ring"
	"github.com/rx178nwj/SoilMonitorRev2/internal/sensors"
)

// StatusSource supplies the data behind GET /status.
type StatusSource interface {
	TaskStatus() map[string]bool
	Store() *ring.Store
	Capabilities() sensors.Capabilities
}

// Server is the debug HTTP surface.
type Server struct {
	http   *http.Server
	logger *zap.SugaredLogger
}

// New constructs a Server bound to listenAddr (expected to be a loopback
// address; nothing here enforces that, matching the caller's
// responsibility to configure it that way).
func New(listenAddr string, source StatusSource, logger *zap.SugaredLogger) *Server {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/healthz", handleHealthz).Methods("GET")
	router.HandleFunc("/status", handleStatus(source)).Methods("GET")
	router.HandleFunc("/logs", handleLogs).Methods("GET")

	return &Server{
		http: &http.Server{
			Addr:              listenAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Name implements managers.Component.
func (s *Server) Name() string { return "debug-api" }

// Start implements managers.Component; the HTTP server runs on its own
// goroutine, tracked by wg, until Stop is called or it errors out.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorw("debug api server exited", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func loggingMiddleware(logger *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debugw("debug api request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleStatus(source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := source.Store().GetStats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks":        source.TaskStatus(),
			"store":        stats,
			"capabilities": source.Capabilities().String(),
		})
	}
}

// handleLogs serves the recent log tail as JSON by default, or as msgpack
// when the caller asks for it, matching the bulk-history-export encoding
// the link protocol already uses for the same reason (§4.7).
func handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := log.GetLogBuffer().GetLogs(false)

	if r.Header.Get("Accept") == "application/msgpack" {
		encoded, err := log.MarshalLogEntries(entries)
		if err != nil {
			http.Error(w, "failed to encode logs", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		_, _ = w.Write(encoded)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}
