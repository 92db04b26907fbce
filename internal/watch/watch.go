// Package watch implements `neo watch`: recompile a source file whenever
// it changes and broadcast the resulting diagnostics to any connected
// editor clients over a websocket.
//
// Grounded on the teacher's build.Watch() (poll-and-rebuild) and its
// internal/lsp / internal/vm network_websocket_server.go (serving live
// compiler state to a connected client over a socket). Recompilation
// reuses internal/build.Pipeline verbatim — watch mode supervises the
// pipeline, it does not reimplement it (§5's exception).
package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"neo/internal/build"
)

// Frame is the JSON payload broadcast to connected clients after each
// recompilation attempt.
type Frame struct {
	Path        string   `json:"path"`
	OK          bool     `json:"ok"`
	Error       string   `json:"error,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server supervises a single watched file and its websocket listeners.
type Server struct {
	Addr string

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
	pollEvery time.Duration
}

// NewServer creates a watch Server listening on addr (e.g. ":7777").
func NewServer(addr string) *Server {
	return &Server{Addr: addr, clients: make(map[*websocket.Conn]struct{}), pollEvery: 300 * time.Millisecond}
}

// Run polls path for modifications and recompiles on change, broadcasting
// a Frame to every connected client each time, until ctx is cancelled.
// Three goroutines are coordinated with golang.org/x/sync/errgroup: the
// poller (which also recompiles), the websocket accept loop, and one that
// closes the HTTP server once ctx is cancelled.
func (s *Server) Run(ctx context.Context, path string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	httpServer := &http.Server{Addr: s.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return httpServer.Close()
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.pollAndRebuild(ctx, path)
	})

	return g.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

func (s *Server) pollAndRebuild(ctx context.Context, path string) error {
	var lastMod time.Time
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()

	rebuild := func() {
		info, err := os.Stat(path)
		if err != nil {
			s.broadcast(Frame{Path: path, OK: false, Error: err.Error()})
			return
		}
		if !info.ModTime().After(lastMod) {
			return
		}
		lastMod = info.ModTime()

		source, err := os.ReadFile(path)
		if err != nil {
			s.broadcast(Frame{Path: path, OK: false, Error: err.Error()})
			return
		}
		p := build.NewPipeline()
		_, err = p.Compile(path, string(source), true)
		frame := Frame{Path: path, OK: err == nil}
		if err != nil {
			frame.Error = err.Error()
		}
		for _, d := range p.Bag.Items() {
			frame.Diagnostics = append(frame.Diagnostics, d.Error())
		}
		s.broadcast(frame)
	}

	rebuild()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rebuild()
		}
	}
}
