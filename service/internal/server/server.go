// internal/server/server.go
//
// HTTP and WebSocket surface for versus matches.
//   - POST /matches                creates a match
//   - POST /matches/{id}/join      takes a seat and returns a seat ticket
//   - GET  /matches/{id}           current public view
//   - GET  /matches/{id}/result    stored final result
//   - GET  /matches/{id}/replay    re-simulates the journal
//   - GET  /matches/{id}/ws        seat socket, ?ticket= required
//   - GET  /matches/{id}/watch     spectator socket
package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
	"github.com/jason-s-yu/stackfall/service/internal/auth"
	"github.com/jason-s-yu/stackfall/service/internal/cache"
	"github.com/jason-s-yu/stackfall/service/internal/database"
	"github.com/jason-s-yu/stackfall/service/internal/match"
	"github.com/sirupsen/logrus"
)

// JournalStore appends and reads match journals. *cache.Journal satisfies it.
type JournalStore interface {
	match.Journal
	Read(ctx context.Context, matchID uuid.UUID) ([]cache.MatchRecord, error)
}

// ResultStore records and loads final results. *database.Store satisfies it.
type ResultStore interface {
	match.ResultRecorder
	GetResult(ctx context.Context, matchID uuid.UUID) (database.MatchResult, error)
}

// Options configures a Server. Journal and Results may be nil.
type Options struct {
	Rules     engine.Rules
	Tick      time.Duration
	Issuer    *auth.Issuer
	Journal   JournalStore
	Results   ResultStore
	ResultTTL time.Duration // how long a finished match stays reachable; 0 means 5 minutes
	Seed      func() uint64 // nil draws a random seed per match
}

// Server owns the router, the live matches and their socket hubs.
type Server struct {
	r       *chi.Mux
	opts    Options
	matches *match.Registry

	mu   sync.Mutex
	hubs map[uuid.UUID]*hub

	ctx    context.Context // parent of every match loop
	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = 5 * time.Minute
	}
	if opts.Seed == nil {
		opts.Seed = rand.Uint64
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		r:       chi.NewRouter(),
		opts:    opts,
		matches: match.NewRegistry(),
		hubs:    make(map[uuid.UUID]*hub),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	// Sockets live as long as the match, so they skip the handler timeout.
	s.r.Get("/matches/{id}/ws", s.handleSeatSocket)
	s.r.Get("/matches/{id}/watch", s.handleWatchSocket)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "matches": s.matches.Len()})
		})
		r.Post("/matches", s.handleCreate)
		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/join", s.handleJoin)
			r.Get("/result", s.handleResult)
			r.Get("/replay", s.handleReplay)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.r }

// Close aborts running matches, waits for their loops and flushes their
// background writes.
func (s *Server) Close() {
	s.cancel()
	s.loops.Wait()
	for _, m := range s.matches.All() {
		m.Flush()
	}
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	writeJSON(w, status, map[string]string{"error": code})
}

// matchParam parses {id} and finds the match, writing the error response
// when it cannot.
func (s *Server) matchParam(w http.ResponseWriter, r *http.Request) (*match.Match, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	m, found := s.matches.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "match_not_found")
		return nil, false
	}
	return m, true
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_match_id")
		return uuid.Nil, false
	}
	return id, true
}
