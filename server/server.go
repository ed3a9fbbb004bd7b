// Package server runs the http server that upgrades game websockets and
// exposes health and admin endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlex/doodlex/server/gateway"
)

type (
	// Server runs the site.
	Server struct {
		wg         sync.WaitGroup
		log        *log.Logger
		gateway    Gateway
		httpServer *http.Server
		startTime  time.Time
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// Port is the TCP port to serve on.
		Port int
		// StopDur is how long a graceful shutdown may take.
		StopDur time.Duration
		// AdminKeyHash is the bcrypt hash of the key for admin endpoints.
		// When empty, admin endpoints reject every request.
		AdminKeyHash []byte
		// TimeFunc supplies the current time.
		TimeFunc func() time.Time
	}

	// Gateway handles websocket connections and reports room state.
	Gateway interface {
		Run(ctx context.Context, wg *sync.WaitGroup)
		Handle(w http.ResponseWriter, r *http.Request)
		Stats() (rooms, connections int)
		RoomSummaries(ctx context.Context) []gateway.RoomSummary
	}

	healthPayload struct {
		Status      string `json:"status"`
		UptimeSec   int    `json:"uptimeSec"`
		Rooms       int    `json:"rooms"`
		Connections int    `json:"connections"`
		ServerTime  int64  `json:"serverTime"`
	}
)

// adminKeyHeader carries the key for admin endpoints.
const adminKeyHeader = "X-Admin-Key"

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(log *log.Logger, g Gateway) (*Server, error) {
	if err := cfg.validate(log, g); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	serveMux := new(http.ServeMux)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: serveMux,
	}
	s := Server{
		log:        log,
		gateway:    g,
		httpServer: httpServer,
		startTime:  cfg.TimeFunc(),
		Config:     cfg,
	}
	serveMux.HandleFunc("/", s.handle)
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(log *log.Logger, g Gateway) error {
	switch {
	case log == nil:
		return fmt.Errorf("log required")
	case g == nil:
		return fmt.Errorf("gateway required")
	case cfg.Port <= 0:
		return fmt.Errorf("invalid port: %v", cfg.Port)
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	}
	return nil
}

// Run starts the gateway and the http server asynchronously.  Errors from the
// http server are sent to the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 1)
	ctx, cancelFunc := context.WithCancel(ctx)
	s.gateway.Run(ctx, &s.wg)
	s.httpServer.RegisterOnShutdown(cancelFunc)
	s.log.Printf("starting server at http://127.0.0.1%v", s.httpServer.Addr)
	go func() {
		errC <- s.httpServer.ListenAndServe()
	}()
	return errC
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.wg.Wait()
	return nil
}

// handle routes requests.  Only GET endpoints exist.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		s.httpError(w, http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/ws":
		s.gateway.Handle(w, r)
	case "/health":
		s.handleHealth(w, r)
	case "/rooms":
		s.handleRooms(w, r)
	default:
		s.httpError(w, http.StatusNotFound)
	}
}

// handleHealth reports uptime and room/connection counts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rooms, connections := s.gateway.Stats()
	now := s.TimeFunc()
	s.writeJSON(w, healthPayload{
		Status:      "ok",
		UptimeSec:   int(now.Sub(s.startTime).Seconds()),
		Rooms:       rooms,
		Connections: connections,
		ServerTime:  now.UnixMilli(),
	})
}

// handleRooms lists room summaries for operators holding the admin key.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAdminKey(r); err != nil {
		s.log.Printf("rejecting admin request: %v", err)
		s.httpError(w, http.StatusUnauthorized)
		return
	}
	summaries := s.gateway.RoomSummaries(r.Context())
	s.writeJSON(w, struct {
		Rooms []gateway.RoomSummary `json:"rooms"`
	}{Rooms: summaries})
}

// checkAdminKey ensures the request's admin key matches the configured hash.
func (s *Server) checkAdminKey(r *http.Request) error {
	if len(s.AdminKeyHash) == 0 {
		return fmt.Errorf("no admin key configured")
	}
	key := r.Header.Get(adminKeyHeader)
	if err := bcrypt.CompareHashAndPassword(s.AdminKeyHash, []byte(key)); err != nil {
		return fmt.Errorf("incorrect admin key: %w", err)
	}
	return nil
}

// writeJSON writes the value as a json response.
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("encoding response: %v", err)
	}
}

// httpError writes the error status code.
func (*Server) httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
