package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func TestGenerateFleetValidity(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		f, err := GenerateFleet(newRand(seed), DefaultSize, CanonicalLengths)
		require.NoError(t, err)
		require.Len(t, f, len(CanonicalLengths))
		require.NoError(t, f.Validate(DefaultSize, CanonicalLengths), "seed %d", seed)
		assert.Equal(t, CanonicalLengths, f.Lengths())
		assert.Equal(t, 17, f.Cells(DefaultSize).Len())
	}
}

func TestGenerateFleetImpossible(t *testing.T) {
	// A length-4 ship never fits on a 3x3 board.
	_, err := GenerateFleet(newRand(1), 3, []int{4, 4, 4})
	assert.ErrorIs(t, err, ErrPlacement)
}

func TestGenerateFleetWithinBudget(t *testing.T) {
	_, err := GenerateFleetWithin(newRand(1), DefaultSize, CanonicalLengths, 0)
	assert.ErrorIs(t, err, ErrPlacement)

	f, err := GenerateFleetWithin(newRand(1), DefaultSize, CanonicalLengths, 1000)
	require.NoError(t, err)
	assert.NoError(t, f.Validate(DefaultSize, CanonicalLengths))
}

func TestGenerateFleetDeterministic(t *testing.T) {
	a, err := GenerateFleet(newRand(7), DefaultSize, CanonicalLengths)
	require.NoError(t, err)
	b, err := GenerateFleet(newRand(7), DefaultSize, CanonicalLengths)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestShipValid(t *testing.T) {
	tests := []struct {
		name string
		ship Ship
		want bool
	}{
		{"horizontal", Ship{{0, 0}, {0, 1}, {0, 2}}, true},
		{"vertical", Ship{{3, 9}, {4, 9}}, true},
		{"gap", Ship{{0, 0}, {0, 2}}, false},
		{"bent", Ship{{0, 0}, {0, 1}, {1, 1}}, false},
		{"out of bounds", Ship{{9, 9}, {9, 10}}, false},
		{"empty", Ship{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ship.Valid(DefaultSize))
		})
	}
}

func TestFleetValidateRejects(t *testing.T) {
	overlap := Fleet{
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}},
		{{0, 4}, {1, 4}, {2, 4}, {3, 4}},
		{{5, 0}, {5, 1}, {5, 2}},
		{{7, 0}, {7, 1}, {7, 2}},
		{{9, 0}, {9, 1}},
	}
	assert.ErrorIs(t, overlap.Validate(DefaultSize, CanonicalLengths), ErrInvalidFleet)

	short := Fleet{{{0, 0}, {0, 1}}}
	assert.ErrorIs(t, short.Validate(DefaultSize, CanonicalLengths), ErrInvalidFleet)
}

func TestSunkChecks(t *testing.T) {
	f := Fleet{
		{{0, 0}, {0, 1}},
		{{2, 0}, {2, 1}, {2, 2}},
	}
	hits := NewCoordSet(DefaultSize, Coord{0, 0}, Coord{0, 1}, Coord{2, 0})

	assert.True(t, f.SunkAt(Coord{0, 1}, hits))
	assert.False(t, f.SunkAt(Coord{2, 0}, hits))
	assert.False(t, f.SunkAt(Coord{5, 5}, hits))
	assert.False(t, f.AllSunk(hits))

	hits.Add(Coord{2, 1})
	hits.Add(Coord{2, 2})
	assert.True(t, f.AllSunk(hits))

	s, ok := f.ShipAt(Coord{2, 2})
	require.True(t, ok)
	assert.True(t, s.Horizontal())
}
