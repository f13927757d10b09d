package app

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"

	"battleship-ai/internal/game"
	"battleship-ai/internal/targeting"
)

// AdviseRequest is the attacker's knowledge at one decision. Run may be
// omitted; it then defaults to the hits not on a sunk ship, in row-major
// order.
type AdviseRequest struct {
	Size    int               `json:"size,omitempty"`
	Lengths []int             `json:"lengths,omitempty"`
	Hits    []game.Coord      `json:"hits"`
	Misses  []game.Coord      `json:"misses"`
	Run     []game.Coord      `json:"run"`
	Sunk    []game.Ship       `json:"sunk"`
	Params  *targeting.Params `json:"params,omitempty"`
}

type Advice struct {
	Cell  game.Coord     `json:"cell"`
	Found bool           `json:"found"`
	Mode  targeting.Mode `json:"mode"`
	Run   []game.Coord   `json:"run"`
}

// State rebuilds a validated targeting state from the request.
func (r AdviseRequest) State() (*targeting.State, error) {
	n := r.Size
	if n == 0 {
		n = game.DefaultSize
	}
	if n < 1 || n > game.MaxSize {
		return nil, fmt.Errorf("%w: size %d outside 1..%d", targeting.ErrInvalidState, n, game.MaxSize)
	}
	lengths := r.Lengths
	if len(lengths) == 0 {
		lengths = game.CanonicalLengths
	}
	st := targeting.NewState(n, lengths, nil)
	for _, c := range append(slices.Clip(r.Hits), r.Misses...) {
		if !st.Occupied.InBounds(c) {
			return nil, fmt.Errorf("%w: cell %v out of bounds", targeting.ErrInvalidState, c)
		}
	}
	for _, c := range r.Misses {
		st.Occupied.Mark(c)
		st.Misses.Add(c)
	}
	for _, c := range r.Hits {
		st.Occupied.Mark(c)
		st.Hits.Add(c)
	}
	for _, s := range r.Sunk {
		st.RecordSunk(s)
	}
	if r.Run != nil {
		st.Run = r.Run
	} else {
		st.Run = st.UnsunkHits().Slice()
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Advise makes one targeting decision. Request params, when present,
// replace defaults.
func Advise(req AdviseRequest, defaults targeting.Params, rng *rand.Rand, log zerolog.Logger) (Advice, error) {
	p := defaults
	if req.Params != nil {
		p = *req.Params
	}
	st, err := req.State()
	if err != nil {
		return Advice{}, err
	}
	eng, err := targeting.NewEngine(p, rng, log)
	if err != nil {
		return Advice{}, err
	}
	return Decide(eng, st), nil
}

// Decide runs the engine once on st, updating its run.
func Decide(eng *targeting.Engine, st *targeting.State) Advice {
	c, ok := eng.Next(st)
	run := st.Run
	if run == nil {
		run = []game.Coord{}
	}
	return Advice{Cell: c, Found: ok, Mode: st.Mode(), Run: run}
}
