package targeting

import (
	"errors"
	"fmt"
	"slices"

	"battleship-ai/internal/game"
)

// Mode is the targeting phase.
type Mode int

const (
	Hunt Mode = iota
	Target
)

func (m Mode) String() string {
	if m == Target {
		return "target"
	}
	return "hunt"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

var ErrInvalidState = errors.New("invalid targeting state")

// State is everything the attacker knows about one game. Each game owns its
// own State; nothing is shared between games.
type State struct {
	Size     int
	Lengths  []int       // the fleet's ship lengths
	Occupied *game.Board // cells already shot
	Hits     *game.CoordSet
	Misses   *game.CoordSet
	Run      []game.Coord // hits on ships not yet known to be sunk
	Fleet    game.Fleet   // ships available for sunk checks
}

// NewState starts a game on an n×n board. fleet may be the full hidden fleet
// (self-play) or only the ships announced sunk so far.
func NewState(n int, lengths []int, fleet game.Fleet) *State {
	return &State{
		Size:     n,
		Lengths:  slices.Clone(lengths),
		Occupied: game.NewBoard(n),
		Hits:     game.NewCoordSet(n),
		Misses:   game.NewCoordSet(n),
		Fleet:    fleet,
	}
}

// Mode is derived from the run: TARGET while it holds any hit.
func (s *State) Mode() Mode {
	if len(s.Run) == 0 {
		return Hunt
	}
	return Target
}

// Clone copies the mutable parts. Fleet and Lengths are shared read-only.
func (s *State) Clone() *State {
	return &State{
		Size:     s.Size,
		Lengths:  s.Lengths,
		Occupied: s.Occupied.Clone(),
		Hits:     s.Hits.Clone(),
		Misses:   s.Misses.Clone(),
		Run:      slices.Clone(s.Run),
		Fleet:    s.Fleet,
	}
}

// Remaining lists the lengths of ships not yet sunk: the fleet lengths minus
// one entry for each sunk ship.
func (s *State) Remaining() []int {
	out := slices.Clone(s.Lengths)
	for _, ship := range s.Fleet {
		if !ship.Sunk(s.Hits) {
			continue
		}
		if i := slices.Index(out, ship.Len()); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
	}
	return out
}

// AllSunk reports whether every ship of the fleet is known to be sunk.
func (s *State) AllSunk() bool { return len(s.Remaining()) == 0 }

// UnsunkHits are hits not explained by a sunk ship.
func (s *State) UnsunkHits() *game.CoordSet {
	out := game.NewCoordSet(s.Size)
	for _, c := range s.Hits.Slice() {
		if !s.Fleet.SunkAt(c, s.Hits) {
			out.Add(c)
		}
	}
	return out
}

// Blocked are cells no unsunk ship can cover: misses and sunk-ship cells.
func (s *State) Blocked() *game.CoordSet {
	out := s.Misses.Clone()
	for _, ship := range s.Fleet {
		if ship.Sunk(s.Hits) {
			for _, c := range ship {
				out.Add(c)
			}
		}
	}
	return out
}

// Apply records the outcome of a shot. A hit on a ship that is not sunk
// joins the run; a sinking hit leaves the run alone and pruning drops the
// sunk ship's cells on the next decision.
func (s *State) Apply(c game.Coord, hit bool) {
	s.Occupied.Mark(c)
	if !hit {
		s.Misses.Add(c)
		return
	}
	s.Hits.Add(c)
	if !s.Fleet.SunkAt(c, s.Hits) {
		s.Run = append(s.Run, c)
	}
}

// RecordSunk adds an announced sunk ship to the fleet used for sunk checks.
func (s *State) RecordSunk(ship game.Ship) {
	if len(ship) == 0 {
		return
	}
	if known, ok := s.Fleet.ShipAt(ship[0]); ok && slices.Equal(known, ship) {
		return
	}
	s.Fleet = append(slices.Clip(s.Fleet), ship)
}

// Validate checks the caller's contract: cells in bounds, the run is made
// of hits, hits and misses are disjoint and every outcome cell was shot.
// Fleet ships may not overlap and each sunk ship must use up one of the
// fleet lengths.
func (s *State) Validate() error {
	if s.Size < 1 || s.Occupied == nil || s.Hits == nil || s.Misses == nil {
		return fmt.Errorf("%w: uninitialised", ErrInvalidState)
	}
	if s.Occupied.Size() != s.Size || s.Hits.Size() != s.Size || s.Misses.Size() != s.Size {
		return fmt.Errorf("%w: grid sizes disagree", ErrInvalidState)
	}
	for _, c := range s.Run {
		if !s.Occupied.InBounds(c) {
			return fmt.Errorf("%w: run cell %v out of bounds", ErrInvalidState, c)
		}
		if !s.Hits.Has(c) {
			return fmt.Errorf("%w: run cell %s is not a hit", ErrInvalidState, c)
		}
	}
	if s.Hits.Intersects(s.Misses) {
		return fmt.Errorf("%w: a cell is both hit and miss", ErrInvalidState)
	}
	for _, c := range s.Hits.Union(s.Misses).Slice() {
		if s.Occupied.IsFree(c) {
			return fmt.Errorf("%w: outcome at %s without a shot", ErrInvalidState, c)
		}
	}
	placed := game.NewCoordSet(s.Size)
	afloat := slices.Clone(s.Lengths)
	for i, ship := range s.Fleet {
		if !ship.Valid(s.Size) {
			return fmt.Errorf("%w: fleet ship %d malformed", ErrInvalidState, i)
		}
		for _, c := range ship {
			if placed.Has(c) {
				return fmt.Errorf("%w: fleet ships overlap at %s", ErrInvalidState, c)
			}
			placed.Add(c)
		}
		if !ship.Sunk(s.Hits) {
			continue
		}
		j := slices.Index(afloat, ship.Len())
		if j < 0 {
			return fmt.Errorf("%w: sunk ship %d has length %d, none left afloat", ErrInvalidState, i, ship.Len())
		}
		afloat = slices.Delete(afloat, j, j+1)
	}
	return nil
}
