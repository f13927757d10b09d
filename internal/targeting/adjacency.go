package targeting

import (
	"slices"

	"battleship-ai/internal/game"
)

// Prune drops run cells whose ship is known to be sunk. Cells not covered by
// any ship in fleet are kept. The input slice is not modified.
func Prune(run []game.Coord, hits *game.CoordSet, fleet game.Fleet) []game.Coord {
	out := make([]game.Coord, 0, len(run))
	for _, c := range run {
		if !fleet.SunkAt(c, hits) {
			out = append(out, c)
		}
	}
	return out
}

// NextTarget proposes the next shot while chasing partially hit ships. It
// returns false when the pruned run is empty or has no free cell around it;
// the caller then clears the run and hunts. The pruned run is always
// returned.
func NextTarget(run []game.Coord, occupied *game.Board, hits *game.CoordSet, fleet game.Fleet) (game.Coord, bool, []game.Coord) {
	run = Prune(run, hits, fleet)
	if len(run) == 0 {
		return game.Coord{}, false, run
	}
	if len(run) >= 2 {
		if c, ok := extendLine(run, occupied); ok {
			return c, true, run
		}
	}
	if c, ok := firstNeighbor(run, occupied); ok {
		return c, true, run
	}
	return game.Coord{}, false, run
}

// extendLine takes the axis from the two smallest hits and tries one step
// past the low end, then one step past the high end.
func extendLine(run []game.Coord, occupied *game.Board) (game.Coord, bool) {
	sorted := slices.SortedFunc(slices.Values(run), compareCoord)
	a, b := sorted[0], sorted[1]

	lo, hi := a, a
	switch {
	case a.Row == b.Row:
		for _, c := range run {
			lo.Col = min(lo.Col, c.Col)
			hi.Col = max(hi.Col, c.Col)
		}
		lo.Col--
		hi.Col++
	case a.Col == b.Col:
		for _, c := range run {
			lo.Row = min(lo.Row, c.Row)
			hi.Row = max(hi.Row, c.Row)
		}
		lo.Row--
		hi.Row++
	default:
		return game.Coord{}, false
	}

	if occupied.IsFree(lo) {
		return lo, true
	}
	if occupied.IsFree(hi) {
		return hi, true
	}
	return game.Coord{}, false
}

// firstNeighbor returns the smallest free orthogonal neighbour of any run cell.
func firstNeighbor(run []game.Coord, occupied *game.Board) (game.Coord, bool) {
	best, found := game.Coord{}, false
	for _, c := range run {
		for _, nb := range c.Neighbors() {
			if occupied.IsFree(nb) && (!found || nb.Less(best)) {
				best, found = nb, true
			}
		}
	}
	return best, found
}

func compareCoord(a, b game.Coord) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
