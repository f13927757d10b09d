package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dolthub/swiss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"battleship-ai/internal/app"
	"battleship-ai/internal/targeting"
)

const maxBody = 1 << 20

// Server is the targeting advisor. It never sees the defender's fleet:
// clients report outcomes and ask for the next cell.
type Server struct {
	params targeting.Params
	seed   uint64
	log    zerolog.Logger

	mu       sync.RWMutex
	sessions *swiss.Map[uuid.UUID, *session]

	requests atomic.Uint64
	// Milliseconds since epoch when this server booted
	startAt int64
}

func New(p targeting.Params, seed uint64, log zerolog.Logger) *Server {
	return &Server{
		params:   p,
		seed:     seed,
		log:      log,
		sessions: swiss.NewMap[uuid.UUID, *session](64),
		startAt:  time.Now().UnixMilli(),
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/advise", s.handleAdvise)

	mux.HandleFunc("POST /v1/games", s.handleCreate)
	mux.HandleFunc("GET /v1/games/{id}", s.handleGet)
	mux.HandleFunc("POST /v1/games/{id}/next", s.handleNext)
	mux.HandleFunc("POST /v1/games/{id}/result", s.handleResult)
	mux.HandleFunc("DELETE /v1/games/{id}", s.handleDelete)

	mux.HandleFunc("GET /v1/status", s.handleStatus)
}

// Handler is the full API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return s.withRequestLog(WithCORS(mux))
}

// rng hands every engine its own generator so no two requests share one.
func (s *Server) rng() *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, s.requests.Add(1)))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	return nil
}

// === Stateless advice ===

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	var req app.AdviseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	adv, err := app.Advise(req, s.params, s.rng(), s.log)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

// === Status ===

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	n := s.sessions.Count()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"startedAt": s.startAt,
		"sessions":  n,
		"params":    s.params,
	})
}

// === CORS ===

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// In dev we allow any origin. For production, set this to the specific origin(s).
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.code).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

var errNoSession = errors.New("no such game")
