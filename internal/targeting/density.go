package targeting

import "battleship-ai/internal/game"

// Density counts, per cell, the placements of the remaining ships that fit
// entirely on free cells. It is a count, not a probability.
type Density [][]int

// ComputeDensity enumerates every horizontal and vertical placement of each
// remaining length and adds one to each cell of every placement that avoids
// all shot cells. Lengths repeat: two ships of length 3 count twice.
func ComputeDensity(occupied *game.Board, remaining []int) Density {
	n := occupied.Size()
	d := make(Density, n)
	for r := range d {
		d[r] = make([]int, n)
	}
	for _, l := range remaining {
		if l < 1 || l > n {
			continue
		}
		// horizontal
		for r := 0; r < n; r++ {
			for c := 0; c+l <= n; c++ {
				if fits(occupied, r, c, 0, 1, l) {
					for k := 0; k < l; k++ {
						d[r][c+k]++
					}
				}
			}
		}
		// vertical
		for r := 0; r+l <= n; r++ {
			for c := 0; c < n; c++ {
				if fits(occupied, r, c, 1, 0, l) {
					for k := 0; k < l; k++ {
						d[r+k][c]++
					}
				}
			}
		}
	}
	return d
}

func fits(occupied *game.Board, r, c, dr, dc, l int) bool {
	for k := 0; k < l; k++ {
		if !occupied.IsFree(game.Coord{Row: r + dr*k, Col: c + dc*k}) {
			return false
		}
	}
	return true
}

func (d Density) At(c game.Coord) int { return d[c.Row][c.Col] }

// Total sums every cell.
func (d Density) Total() int {
	t := 0
	for _, row := range d {
		for _, v := range row {
			t += v
		}
	}
	return t
}

// Argmax returns the first free cell, in row-major order, holding the
// highest count. With parityOnly the search keeps to even checkerboard cells
// while any of them is free.
func (d Density) Argmax(occupied *game.Board, parityOnly bool) (game.Coord, bool) {
	free := occupied.FreeCells()
	if parityOnly {
		if even := parityCells(free); len(even) > 0 {
			free = even
		}
	}
	best, found := game.Coord{}, false
	bestVal := -1
	for _, c := range free {
		if v := d.At(c); v > bestVal {
			best, bestVal, found = c, v, true
		}
	}
	return best, found
}

// Placements is the number of in-bounds placements of a ship of length l on
// an empty n×n board.
func Placements(n, l int) int {
	if l < 1 || l > n {
		return 0
	}
	return 2 * n * (n - l + 1)
}

func parityCells(cells []game.Coord) []game.Coord {
	out := make([]game.Coord, 0, len(cells)/2+1)
	for _, c := range cells {
		if c.Parity() {
			out = append(out, c)
		}
	}
	return out
}
