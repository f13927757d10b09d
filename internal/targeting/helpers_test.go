package targeting

import (
	"math/rand/v2"

	"battleship-ai/internal/game"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed+1)) }

func c(r, col int) game.Coord { return game.Coord{Row: r, Col: col} }

// boardWith returns a 10x10 board with the given cells shot.
func boardWith(cells ...game.Coord) *game.Board {
	b := game.NewBoard(game.DefaultSize)
	for _, p := range cells {
		b.Mark(p)
	}
	return b
}

func setOf(cells ...game.Coord) *game.CoordSet {
	return game.NewCoordSet(game.DefaultSize, cells...)
}

// fixedFleet is a hand-placed canonical fleet.
func fixedFleet() game.Fleet {
	return game.Fleet{
		{c(0, 0), c(0, 1), c(0, 2), c(0, 3), c(0, 4)},
		{c(2, 2), c(3, 2), c(4, 2), c(5, 2)},
		{c(7, 5), c(7, 6), c(7, 7)},
		{c(9, 0), c(9, 1), c(9, 2)},
		{c(4, 7), c(5, 7)},
	}
}

// fleetOracle answers shots from a known fleet.
type fleetOracle struct {
	fleet game.Fleet
	hits  *game.CoordSet
}

func newFleetOracle(f game.Fleet) *fleetOracle {
	return &fleetOracle{fleet: f, hits: setOf()}
}

func (o *fleetOracle) Fire(p game.Coord) (Outcome, error) {
	ship, ok := o.fleet.ShipAt(p)
	if !ok {
		return Outcome{}, nil
	}
	o.hits.Add(p)
	out := Outcome{Hit: true}
	if ship.Sunk(o.hits) {
		out.Sunk = ship
	}
	return out, nil
}
