package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/hushmaze/level"
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/navigation"
	"github.com/lixenwraith/hushmaze/vmath"
)

const shutdownTimeout = 2 * time.Second

// Options configure path queries and client queues
type Options struct {
	EdgeThickness float64
	AgentRadius   float64 // Default radius for /api/path
	SendBuffer    int     // Per-client queue length
}

// Server exposes read-only views of a running level over HTTP and websocket
// Publish is called from the simulation goroutine; handlers only read the published copy
type Server struct {
	opts     Options
	hub      *Hub
	upgrader websocket.Upgrader
	router   chi.Router

	mu        sync.RWMutex
	snap      level.Snapshot
	published bool
}

// NewServer creates a server with its routes
func NewServer(opts Options) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	s := &Server{
		opts: opts,
		hub:  NewHub(),
		upgrader: websocket.Upgrader{
			// Local debug feed, any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/maze", s.handleMaze)
		r.Get("/path", s.handlePath)
		r.Get("/sounds", s.handleSounds)
		r.Get("/state", s.handleState)
	})
	r.Get("/ws", s.handleWS)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub for attaching to a sound router
func (s *Server) Hub() *Hub {
	return s.hub
}

// Publish replaces the snapshot served to handlers; snap must not be modified afterwards
func (s *Server) Publish(snap level.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.published = true
	s.mu.Unlock()
}

func (s *Server) snapshot() (level.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.published
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("spectate: shutdown: %v", err)
		}
	}()

	log.Printf("spectate: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// MazeResponse is the GET /api/maze body
type MazeResponse struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	CellSize float64    `json:"cell_size"`
	Exit     maze.Point `json:"exit"`
	Walls    [][]int    `json:"walls"` // [y][x] wall bitmask, Right=1 Forward=2 Left=4 Back=8
	ASCII    string     `json:"ascii"`
}

// PathResponse is the GET /api/path body
type PathResponse struct {
	Waypoints []vmath.Vec2 `json:"waypoints"`
	Distance  float64      `json:"distance"`
}

func (s *Server) handleMaze(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot()
	if !ok || snap.Grid == nil {
		respondError(w, http.StatusServiceUnavailable, "no level published")
		return
	}
	g := snap.Grid
	walls := make([][]int, g.Height)
	for y := range walls {
		walls[y] = make([]int, g.Width)
		for x := range walls[y] {
			walls[y][x] = int(g.Cell(x, y))
		}
	}
	respondJSON(w, http.StatusOK, MazeResponse{
		Width:    g.Width,
		Height:   g.Height,
		CellSize: snap.CellSize,
		Exit:     snap.Exit,
		Walls:    walls,
		ASCII:    g.String(),
	})
}

// handlePath runs a private finder over the published grid copy
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot()
	if !ok || snap.Grid == nil {
		respondError(w, http.StatusServiceUnavailable, "no level published")
		return
	}

	q := r.URL.Query()
	var coords [4]float64
	for i, key := range []string{"sx", "sy", "ex", "ey"} {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid "+key)
			return
		}
		coords[i] = v
	}
	radius := s.opts.AgentRadius
	if rs := q.Get("r"); rs != "" {
		v, err := strconv.ParseFloat(rs, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "invalid r")
			return
		}
		radius = v
	}

	finder := navigation.NewPathFinder(snap.Grid, navigation.NewMapper(snap.CellSize), s.opts.EdgeThickness, nil)
	path, err := finder.FindPath(vmath.Vec2{X: coords[0], Y: coords[1]}, vmath.Vec2{X: coords[2], Y: coords[3]}, radius)
	if err != nil {
		if errors.Is(err, navigation.ErrNoPath) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, PathResponse{
		Waypoints: path.Pending(),
		Distance:  path.Distance(),
	})
}

func (s *Server) handleSounds(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "no level published")
		return
	}
	sounds := snap.Sounds
	if sounds == nil {
		sounds = []level.SoundState{}
	}
	respondJSON(w, http.StatusOK, sounds)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "no level published")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("spectate: upgrade: %v", err)
		return
	}

	conn := newConnection(ws, s.opts.SendBuffer)
	s.hub.register(conn)
	go conn.WritePump()
	conn.ReadPump(s.hub)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("spectate: encode: %v", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
