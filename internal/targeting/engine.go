package targeting

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"battleship-ai/internal/game"
)

// Outcome is the defender's answer to one shot. Sunk is set when the shot
// finished a ship.
type Outcome struct {
	Hit  bool      `json:"hit"`
	Sunk game.Ship `json:"sunk,omitempty"`
}

// Oracle answers shots against the hidden fleet.
type Oracle interface {
	Fire(c game.Coord) (Outcome, error)
}

// Shot is one completed turn.
type Shot struct {
	Cell game.Coord `json:"cell"`
	Mode Mode       `json:"mode"` // mode the shot was chosen in
	Outcome
}

// Engine is the hunt/target state machine. It keeps no game state of its
// own; every call works on the State it is given.
type Engine struct {
	params Params
	hunter Strategy
	log    zerolog.Logger
}

func NewEngine(p Params, rng *rand.Rand, log zerolog.Logger) (*Engine, error) {
	hunter, err := NewStrategy(p, rng, log)
	if err != nil {
		return nil, err
	}
	return &Engine{params: p, hunter: hunter, log: log}, nil
}

func (e *Engine) Params() Params { return e.params }

// Next chooses the next cell. In TARGET mode it chases the run; when the run
// is pruned empty or exhausted it is cleared and the hunt strategy answers
// in the same call. st.Run is updated in place. It returns false only when
// no free cell is left.
func (e *Engine) Next(st *State) (game.Coord, bool) {
	if st.Mode() == Target {
		c, ok, run := NextTarget(st.Run, st.Occupied, st.Hits, st.Fleet)
		st.Run = run
		if ok {
			return c, true
		}
		e.log.Debug().Int("dropped", len(run)).Msg("target exhausted, back to hunt")
		st.Run = nil
	}
	return e.hunter.Hunt(st)
}

// Turn chooses a cell, fires it through the oracle and records the outcome.
func (e *Engine) Turn(st *State, oracle Oracle) (Shot, bool, error) {
	c, ok := e.Next(st)
	if !ok {
		return Shot{}, false, nil
	}
	out, err := oracle.Fire(c)
	if err != nil {
		return Shot{}, false, fmt.Errorf("fire %s: %w", c, err)
	}
	mode := st.Mode()
	st.Apply(c, out.Hit)
	if len(out.Sunk) > 0 {
		st.RecordSunk(out.Sunk)
	}
	return Shot{Cell: c, Mode: mode, Outcome: out}, true, nil
}
