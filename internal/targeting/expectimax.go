package targeting

import (
	"math"
	"slices"

	"battleship-ai/internal/game"
)

// BestMove runs a depth-bounded expectimax over shot outcomes. Only the TopK
// densest free cells are expanded; a cell's hit chance is its density over
// the densest candidate's, a monotone proxy rather than a probability.
//
//	EV = p·(1 + γ·V(hit)) + (1−p)·γ·V(miss)
//
// At depth 0, with every ship sunk or with no free cell it returns the
// heuristic value and no move.
func BestMove(st *State, depth int, p Params) (float64, game.Coord, bool) {
	remaining := st.Remaining()
	if depth <= 0 || len(remaining) == 0 {
		return heuristicValue(st), game.Coord{}, false
	}

	density := ComputeDensity(st.Occupied, remaining)
	candidates := topCandidates(st.Occupied, density, p.TopK)
	if len(candidates) == 0 {
		return heuristicValue(st), game.Coord{}, false
	}
	maxHeat := max(density.At(candidates[0]), 1)

	bestVal, best := math.Inf(-1), game.Coord{}
	for _, c := range candidates {
		pHit := float64(density.At(c)) / float64(maxHeat)

		onHit := st.Clone()
		simulateHit(onHit, c)
		vHit, _, _ := BestMove(onHit, depth-1, p)

		onMiss := st.Clone()
		onMiss.Apply(c, false)
		vMiss, _, _ := BestMove(onMiss, depth-1, p)

		ev := pHit*(1+p.Gamma*vHit) + (1-pHit)*(p.Gamma*vMiss)
		if ev > bestVal {
			bestVal, best = ev, c
		}
	}
	return bestVal, best, true
}

// heuristicValue rewards confirmed hits and lightly penalises misses.
func heuristicValue(st *State) float64 {
	return float64(st.Hits.Len()) - missPenalty*float64(st.Misses.Len())
}

// topCandidates sorts free cells by density, highest first, keeping
// row-major order among equals, and keeps the first k.
func topCandidates(occupied *game.Board, d Density, k int) []game.Coord {
	cells := occupied.FreeCells()
	slices.SortStableFunc(cells, func(a, b game.Coord) int {
		return d.At(b) - d.At(a)
	})
	if len(cells) > k {
		cells = cells[:k]
	}
	return cells
}

// simulateHit assumes c is a hit. If that sinks a known ship its cells leave
// the run right away.
func simulateHit(st *State, c game.Coord) {
	st.Occupied.Mark(c)
	st.Hits.Add(c)
	st.Run = append(st.Run, c)
	if st.Fleet.SunkAt(c, st.Hits) {
		st.Run = Prune(st.Run, st.Hits, st.Fleet)
	}
}
