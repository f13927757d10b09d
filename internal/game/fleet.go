package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// CanonicalLengths is the standard fleet: 17 ship cells in total.
var CanonicalLengths = []int{5, 4, 3, 3, 2}

const (
	// PlacementAttempts bounds the random tries for a single ship.
	PlacementAttempts = 100
	// FleetAttempts bounds how many times a whole fleet is restarted after a
	// ship could not be placed.
	FleetAttempts = 100
)

var (
	ErrPlacement    = errors.New("failed to place ships")
	ErrInvalidFleet = errors.New("invalid fleet")
)

// Ship is an ordered run of contiguous cells in one row or one column.
type Ship []Coord

func (s Ship) Len() int { return len(s) }

func (s Ship) Contains(c Coord) bool {
	for _, p := range s {
		if p == c {
			return true
		}
	}
	return false
}

// Sunk reports whether every cell of the ship has been hit.
func (s Ship) Sunk(hits *CoordSet) bool {
	if len(s) == 0 {
		return false
	}
	for _, p := range s {
		if !hits.Has(p) {
			return false
		}
	}
	return true
}

func (s Ship) Horizontal() bool {
	return len(s) < 2 || s[0].Row == s[1].Row
}

// Valid checks bounds, collinearity and contiguity on an n×n board.
func (s Ship) Valid(n int) bool {
	if len(s) == 0 {
		return false
	}
	dr, dc := 0, 1
	if !s.Horizontal() {
		dr, dc = 1, 0
	}
	for i, p := range s {
		if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
			return false
		}
		if i > 0 && (p.Row != s[0].Row+dr*i || p.Col != s[0].Col+dc*i) {
			return false
		}
	}
	return true
}

// Fleet is the set of ships on one board.
type Fleet []Ship

// ShipAt returns the ship covering c.
func (f Fleet) ShipAt(c Coord) (Ship, bool) {
	for _, s := range f {
		if s.Contains(c) {
			return s, true
		}
	}
	return nil, false
}

// SunkAt reports whether c belongs to a ship that is fully hit.
func (f Fleet) SunkAt(c Coord, hits *CoordSet) bool {
	s, ok := f.ShipAt(c)
	return ok && s.Sunk(hits)
}

func (f Fleet) AllSunk(hits *CoordSet) bool {
	for _, s := range f {
		if !s.Sunk(hits) {
			return false
		}
	}
	return true
}

func (f Fleet) Cells(n int) *CoordSet {
	out := NewCoordSet(n)
	for _, s := range f {
		for _, p := range s {
			out.Add(p)
		}
	}
	return out
}

func (f Fleet) Lengths() []int {
	out := make([]int, len(f))
	for i, s := range f {
		out[i] = s.Len()
	}
	return out
}

// Validate checks the fleet holds exactly the given lengths, in bounds,
// straight and non-overlapping.
func (f Fleet) Validate(n int, lengths []int) error {
	want := make(map[int]int)
	for _, l := range lengths {
		want[l]++
	}
	seen := NewCoordSet(n)
	for i, s := range f {
		if !s.Valid(n) {
			return fmt.Errorf("%w: ship %d is not a straight in-bounds run", ErrInvalidFleet, i)
		}
		for _, p := range s {
			if seen.Has(p) {
				return fmt.Errorf("%w: ships overlap at %s", ErrInvalidFleet, p)
			}
			seen.Add(p)
		}
		want[s.Len()]--
	}
	for l, k := range want {
		if k != 0 {
			return fmt.Errorf("%w: ship length %d count off by %d", ErrInvalidFleet, l, -k)
		}
	}
	return nil
}

// Layout renders the fleet onto the defender's standard 10x10 grid.
func (f Fleet) Layout() (Layout, error) {
	var l Layout
	for _, s := range f {
		for _, p := range s {
			if p.Row < 0 || p.Row >= DefaultSize || p.Col < 0 || p.Col >= DefaultSize {
				return Layout{}, fmt.Errorf("%w: %s outside the %dx%d grid", ErrInvalidFleet, p, DefaultSize, DefaultSize)
			}
			l.Cells[p.Row][p.Col] = 1
		}
	}
	return l, nil
}

// GenerateFleet places ships of the given lengths at random without overlap.
// A ship that cannot be placed within PlacementAttempts tries discards the
// whole fleet and generation starts over.
func GenerateFleet(rng *rand.Rand, n int, lengths []int) (Fleet, error) {
	return GenerateFleetWithin(rng, n, lengths, PlacementAttempts)
}

// GenerateFleetWithin is GenerateFleet with a custom per-ship try budget.
func GenerateFleetWithin(rng *rand.Rand, n int, lengths []int, placementAttempts int) (Fleet, error) {
	for attempt := 0; attempt < FleetAttempts; attempt++ {
		if f, ok := tryFleet(rng, n, lengths, placementAttempts); ok {
			return f, nil
		}
	}
	return nil, ErrPlacement
}

func tryFleet(rng *rand.Rand, n int, lengths []int, placementAttempts int) (Fleet, bool) {
	taken := NewCoordSet(n)
	fleet := make(Fleet, 0, len(lengths))
	for _, l := range lengths {
		s, ok := PlaceShip(rng, n, l, taken, placementAttempts)
		if !ok {
			return nil, false
		}
		for _, p := range s {
			taken.Add(p)
		}
		fleet = append(fleet, s)
	}
	return fleet, true
}

// PlaceShip samples a start cell and orientation uniformly until the ship
// avoids every blocked cell or the attempt budget runs out.
func PlaceShip(rng *rand.Rand, n, l int, blocked *CoordSet, attempts int) (Ship, bool) {
	for i := 0; i < attempts; i++ {
		r, c := rng.IntN(n), rng.IntN(n)
		vert := rng.IntN(2) == 1
		if s, ok := buildShip(n, l, r, c, vert, blocked); ok {
			return s, true
		}
	}
	return nil, false
}

func buildShip(n, l, r, c int, vert bool, blocked *CoordSet) (Ship, bool) {
	if vert && r+l > n || !vert && c+l > n {
		return nil, false
	}
	s := make(Ship, l)
	for i := 0; i < l; i++ {
		p := Coord{r, c + i}
		if vert {
			p = Coord{r + i, c}
		}
		if blocked.Has(p) {
			return nil, false
		}
		s[i] = p
	}
	return s, true
}
