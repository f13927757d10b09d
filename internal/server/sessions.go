package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"battleship-ai/internal/app"
	"battleship-ai/internal/game"
	"battleship-ai/internal/targeting"
)

// session is one game the advisor is tracking. Its mutex serialises
// decisions and outcome reports for that game only.
type session struct {
	mu      sync.Mutex
	id      uuid.UUID
	st      *targeting.State
	eng     *targeting.Engine
	pending *game.Coord // last suggested cell
	shots   int
	created time.Time
}

type createReq struct {
	Size    int               `json:"size,omitempty"`
	Lengths []int             `json:"lengths,omitempty"`
	Params  *targeting.Params `json:"params,omitempty"`
}

type resultReq struct {
	Row  int          `json:"row"`
	Col  int          `json:"col"`
	Hit  bool         `json:"hit"`
	Sunk []game.Coord `json:"sunk,omitempty"` // every cell of the ship this shot sank
}

type snapshot struct {
	ID        uuid.UUID      `json:"id"`
	Strategy  targeting.Kind `json:"strategy"`
	Size      int            `json:"size"`
	Mode      targeting.Mode `json:"mode"`
	Shots     int            `json:"shots"`
	Hits      []game.Coord   `json:"hits"`
	Misses    []game.Coord   `json:"misses"`
	Run       []game.Coord   `json:"run"`
	Sunk      game.Fleet     `json:"sunk"`
	Remaining []int          `json:"remaining"`
	Pending   *game.Coord    `json:"pending,omitempty"`
	Over      bool           `json:"over"`
	CreatedAt time.Time      `json:"createdAt"`
}

// snapshot must be called with sess.mu held.
func (sess *session) snapshot() snapshot {
	sunk := sess.st.Fleet
	if sunk == nil {
		sunk = game.Fleet{}
	}
	return snapshot{
		ID:        sess.id,
		Strategy:  sess.eng.Params().Kind,
		Size:      sess.st.Size,
		Mode:      sess.st.Mode(),
		Shots:     sess.shots,
		Hits:      nonNil(sess.st.Hits.Slice()),
		Misses:    nonNil(sess.st.Misses.Slice()),
		Run:       nonNil(sess.st.Run),
		Sunk:      sunk,
		Remaining: nonNil(sess.st.Remaining()),
		Pending:   sess.pending,
		Over:      sess.st.AllSunk(),
		CreatedAt: sess.created,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) lookup(r *http.Request) (*session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoSession, err)
	}
	s.mu.RLock()
	sess, ok := s.sessions.Get(id)
	s.mu.RUnlock()
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.Size == 0 {
		req.Size = game.DefaultSize
	}
	if len(req.Lengths) == 0 {
		req.Lengths = game.CanonicalLengths
	}
	p := s.params
	if req.Params != nil {
		p = *req.Params
	}
	if req.Size < 1 || req.Size > game.MaxSize {
		writeError(w, http.StatusBadRequest, fmt.Errorf("size must be in 1..%d, got %d", game.MaxSize, req.Size))
		return
	}
	for _, l := range req.Lengths {
		if l < 1 || l > req.Size {
			writeError(w, http.StatusBadRequest, fmt.Errorf("ship length %d does not fit a %dx%d board", l, req.Size, req.Size))
			return
		}
	}
	eng, err := targeting.NewEngine(p, s.rng(), s.log)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := &session{
		id:      uuid.New(),
		st:      targeting.NewState(req.Size, req.Lengths, nil),
		eng:     eng,
		created: time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions.Put(sess.id, sess)
	s.mu.Unlock()
	s.log.Info().Stringer("game", sess.id).Str("strategy", string(p.Kind)).Msg("game created")

	sess.mu.Lock()
	snap := sess.snapshot()
	sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	sess.mu.Lock()
	snap := sess.snapshot()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.st.AllSunk() {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "game is over", "shots": sess.shots})
		return
	}
	adv := app.Decide(sess.eng, sess.st)
	if adv.Found {
		c := adv.Cell
		sess.pending = &c
	} else {
		sess.pending = nil
	}
	writeJSON(w, http.StatusOK, adv)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req resultReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c := game.Coord{Row: req.Row, Col: req.Col}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.record(c, req.Hit, game.Ship(req.Sunk)); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, errAlreadyShot) {
			code = http.StatusConflict
		}
		writeError(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.snapshot())
}

var errAlreadyShot = errors.New("cell already shot")

// record applies a reported outcome. The sunk ship, when given, must be a
// straight run of hits that includes the reported cell.
func (sess *session) record(c game.Coord, hit bool, sunk game.Ship) error {
	st := sess.st
	if !st.Occupied.InBounds(c) {
		return fmt.Errorf("cell %v out of bounds", c)
	}
	if !st.Occupied.IsFree(c) {
		return fmt.Errorf("%w: %s", errAlreadyShot, c)
	}
	if len(sunk) > 0 {
		if !hit || !sunk.Contains(c) || !sunk.Valid(st.Size) {
			return fmt.Errorf("sunk ship must be a straight run containing the hit at %s", c)
		}
		for _, p := range sunk {
			if p != c && !st.Hits.Has(p) {
				return fmt.Errorf("sunk ship cell %s was never hit", p)
			}
			if _, ok := st.Fleet.ShipAt(p); ok {
				return fmt.Errorf("sunk ship cell %s belongs to a ship already sunk", p)
			}
		}
		if !slices.Contains(st.Remaining(), sunk.Len()) {
			return fmt.Errorf("no ship of length %d is left afloat", sunk.Len())
		}
	}
	st.Apply(c, hit)
	if len(sunk) > 0 {
		st.RecordSunk(sunk)
	}
	sess.shots++
	sess.pending = nil
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.mu.Lock()
	s.sessions.Delete(sess.id)
	s.mu.Unlock()
	s.log.Info().Stringer("game", sess.id).Msg("game deleted")
	w.WriteHeader(http.StatusNoContent)
}
