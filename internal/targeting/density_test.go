package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship-ai/internal/game"
)

func TestDensityConservation(t *testing.T) {
	empty := boardWith()
	for l := 1; l <= game.DefaultSize; l++ {
		d := ComputeDensity(empty, []int{l})
		assert.Equal(t, l*Placements(game.DefaultSize, l), d.Total(), "length %d", l)
	}
}

func TestDensitySumsLengths(t *testing.T) {
	empty := boardWith()
	want := 0
	for _, l := range game.CanonicalLengths {
		want += ComputeDensity(empty, []int{l}).Total()
	}
	assert.Equal(t, want, ComputeDensity(empty, game.CanonicalLengths).Total())
}

func TestDensityOccupiedCellsBlockPlacements(t *testing.T) {
	b := boardWith(c(0, 2))
	d := ComputeDensity(b, []int{3})

	assert.Zero(t, d.At(c(0, 2)))
	// (0,0) is only reachable vertically now
	assert.Equal(t, 1, d.At(c(0, 0)))
	// (0,1) keeps its single vertical placement
	assert.Equal(t, 1, d.At(c(0, 1)))
	// (0,3): horizontal (0,3..5) and vertical (0..2,3)
	assert.Equal(t, 2, d.At(c(0, 3)))
}

func TestDensitySmallBoardExact(t *testing.T) {
	b := game.NewBoard(3)
	d := ComputeDensity(b, []int{2})
	want := Density{
		{2, 3, 2},
		{3, 4, 3},
		{2, 3, 2},
	}
	assert.Equal(t, want, d)
}

func TestDensityIgnoresOversizedLengths(t *testing.T) {
	d := ComputeDensity(game.NewBoard(3), []int{4, 0})
	assert.Zero(t, d.Total())
}

func TestArgmax(t *testing.T) {
	empty := boardWith()
	d := ComputeDensity(empty, game.CanonicalLengths)

	got, ok := d.Argmax(empty, false)
	require.True(t, ok)
	assert.Equal(t, c(4, 4), got)

	shot := boardWith(c(4, 4))
	d = ComputeDensity(shot, game.CanonicalLengths)
	got, ok = d.Argmax(shot, true)
	require.True(t, ok)
	assert.True(t, got.Parity())
	assert.NotEqual(t, c(4, 4), got)
}

func TestArgmaxParityFallsBackToOddCells(t *testing.T) {
	b := game.NewBoard(2)
	b.Mark(c(0, 0))
	b.Mark(c(1, 1))
	got, ok := ComputeDensity(b, []int{1}).Argmax(b, true)
	require.True(t, ok)
	assert.Equal(t, c(0, 1), got)
}

func TestArgmaxFullBoard(t *testing.T) {
	b := game.NewBoard(1)
	b.Mark(c(0, 0))
	_, ok := ComputeDensity(b, []int{1}).Argmax(b, false)
	assert.False(t, ok)
}

// Every placement of a ship of length two or more covers an even cell, so
// hunting only even cells cannot miss a ship.
func TestParitySufficiency(t *testing.T) {
	n := game.DefaultSize
	for _, l := range []int{2, 3, 4, 5} {
		for r := 0; r < n; r++ {
			for col := 0; col < n; col++ {
				for _, vert := range []bool{false, true} {
					if vert && r+l > n || !vert && col+l > n {
						continue
					}
					covered := false
					for k := 0; k < l; k++ {
						p := c(r, col+k)
						if vert {
							p = c(r+k, col)
						}
						covered = covered || p.Parity()
					}
					assert.True(t, covered, "length %d at (%d,%d) vertical=%v", l, r, col, vert)
				}
			}
		}
	}
}
