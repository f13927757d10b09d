package targeting

import (
	"math/rand/v2"

	"battleship-ai/internal/game"
)

// SampleConfiguration draws one random placement of the given lengths that
// avoids blocked cells, never overlaps and covers every hit. Ships are placed
// one at a time with placementTries tries each; a ship that does not fit
// throws the whole attempt away. Up to maxAttempts attempts are made.
func SampleConfiguration(rng *rand.Rand, n int, lengths []int, hits, blocked *game.CoordSet, placementTries, maxAttempts int) (*game.CoordSet, bool) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		taken := blocked.Clone()
		cells := game.NewCoordSet(n)
		placed := true
		for _, l := range lengths {
			ship, ok := game.PlaceShip(rng, n, l, taken, placementTries)
			if !ok {
				placed = false
				break
			}
			for _, c := range ship {
				taken.Add(c)
				cells.Add(c)
			}
		}
		if placed && hits.IsSubsetOf(cells) {
			return cells, true
		}
	}
	return nil, false
}

// EvaluateCandidates scores unshot cells by how often a sampled
// configuration puts a ship on them and returns the best cell with its hit
// fraction. Candidates keep to even checkerboard cells while any is free:
// every ship of length two or more covers one. With no valid configuration
// it falls back to a uniformly random candidate with score 0. It returns
// false only when no cell is left to shoot.
func EvaluateCandidates(rng *rand.Rand, occupied *game.Board, hits, misses *game.CoordSet, remaining []int, samples, maxAttempts int) (game.Coord, float64, bool) {
	candidates := occupied.FreeCells()
	if len(candidates) == 0 {
		return game.Coord{}, 0, false
	}
	if even := parityCells(candidates); len(even) > 0 {
		candidates = even
	}

	n := occupied.Size()
	configs := make([]*game.CoordSet, 0, samples)
	for i := 0; i < samples; i++ {
		if cfg, ok := SampleConfiguration(rng, n, remaining, hits, misses, samplerPlacementTries, maxAttempts); ok {
			configs = append(configs, cfg)
		}
	}
	if len(configs) == 0 {
		return candidates[rng.IntN(len(candidates))], 0, true
	}

	best, bestScore := candidates[0], -1.0
	for _, c := range candidates {
		covered := 0
		for _, cfg := range configs {
			if cfg.Has(c) {
				covered++
			}
		}
		if score := float64(covered) / float64(len(configs)); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore, true
}
