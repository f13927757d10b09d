package targeting

import (
	"math/rand/v2"

	"github.com/rs/zerolog"

	"battleship-ai/internal/game"
)

// Strategy picks a shot while no partially hit ship is being chased.
type Strategy interface {
	Name() Kind
	Hunt(st *State) (game.Coord, bool)
}

// NewStrategy builds the hunt strategy named by p.Kind.
func NewStrategy(p Params, rng *rand.Rand, log zerolog.Logger) (Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindDensity:
		return &DensityArgmax{Parity: p.Parity}, nil
	case KindMonteCarlo:
		return &MonteCarlo{Samples: p.Samples, MaxAttempts: p.MaxAttempts, rng: rng, log: log}, nil
	default:
		return &Expectimax{Params: p}, nil
	}
}

// DensityArgmax shoots the densest free cell.
type DensityArgmax struct {
	Parity bool
}

func (*DensityArgmax) Name() Kind { return KindDensity }

func (s *DensityArgmax) Hunt(st *State) (game.Coord, bool) {
	return ComputeDensity(st.Occupied, st.Remaining()).Argmax(st.Occupied, s.Parity)
}

// MonteCarlo shoots the cell most often covered by sampled configurations.
type MonteCarlo struct {
	Samples     int
	MaxAttempts int

	rng *rand.Rand
	log zerolog.Logger
}

func (*MonteCarlo) Name() Kind { return KindMonteCarlo }

func (s *MonteCarlo) Hunt(st *State) (game.Coord, bool) {
	c, score, ok := EvaluateCandidates(s.rng, st.Occupied, st.UnsunkHits(), st.Blocked(), st.Remaining(), s.Samples, s.MaxAttempts)
	if ok {
		s.log.Debug().Stringer("cell", c).Float64("score", score).Msg("monte carlo pick")
	}
	return c, ok
}

// Expectimax shoots the root move of a depth-bounded expectimax search.
type Expectimax struct {
	Params Params
}

func (*Expectimax) Name() Kind { return KindExpectimax }

func (s *Expectimax) Hunt(st *State) (game.Coord, bool) {
	_, c, ok := BestMove(st, s.Params.Depth, s.Params)
	if !ok {
		// depth 0 or every known ship sunk: fall back to the density pick
		return ComputeDensity(st.Occupied, st.Remaining()).Argmax(st.Occupied, false)
	}
	return c, true
}
