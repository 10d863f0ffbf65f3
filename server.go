package fleettracking

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/fleet-tracking/config"
	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

// Server frames the tracking core over HTTP and WebSocket. It is a
// collaborator of the core: all state lives in the injected tracker.
type Server struct {
	cfg     config.AppConfig
	tracker *tracking.Tracker
	httpSrv *http.Server
}

// NewServer wires the gateway to its tracker.
func NewServer(cfg config.AppConfig, tracker *tracking.Tracker) *Server {
	return &Server{cfg: cfg, tracker: tracker}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/assets/{id}/position", s.handleReadPosition)
	mux.HandleFunc("POST /api/assets/{id}/position", s.handleWritePosition)
	mux.HandleFunc("PUT /api/assets/{id}/status", s.handleWriteStatus)
	mux.HandleFunc("GET /api/stops/nearest", s.handleNearestStop)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	mux := s.routes()
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, then drains the HTTP
// server and runs any extra stop functions (feed ingest cancel, etc.).
func (s *Server) HandleGracefulShutdown(stops ...func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	for _, stop := range stops {
		stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		} else {
			log.Printf("server shut down successfully")
		}
	}
}
