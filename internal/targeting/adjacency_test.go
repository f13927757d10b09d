package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship-ai/internal/game"
)

func TestNextTargetExtendsTowardMinimumFirst(t *testing.T) {
	run := []game.Coord{c(3, 3), c(3, 4)}
	occ := boardWith(run...)
	got, ok, pruned := NextTarget(run, occ, setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(3, 2), got)
	assert.Equal(t, run, pruned)
}

func TestNextTargetExtendsTowardMaximumAtEdge(t *testing.T) {
	fleet := game.Fleet{{c(0, 0), c(0, 1), c(0, 2), c(0, 3), c(0, 4)}}
	run := []game.Coord{c(0, 0), c(0, 1)}
	got, ok, _ := NextTarget(run, boardWith(run...), setOf(run...), fleet)
	require.True(t, ok)
	assert.Equal(t, c(0, 2), got)
}

func TestNextTargetVertical(t *testing.T) {
	run := []game.Coord{c(6, 2), c(4, 2), c(5, 2)}
	occ := boardWith(append(run, c(3, 2))...)
	got, ok, _ := NextTarget(run, occ, setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(7, 2), got)
}

func TestNextTargetSingleHitUsesSmallestNeighbor(t *testing.T) {
	run := []game.Coord{c(5, 5)}
	got, ok, _ := NextTarget(run, boardWith(run...), setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(4, 5), got)

	occ := boardWith(c(5, 5), c(4, 5))
	got, ok, _ = NextTarget(run, occ, setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(5, 4), got)
}

func TestNextTargetBlockedLineFallsBackToNeighbors(t *testing.T) {
	run := []game.Coord{c(3, 3), c(3, 4)}
	occ := boardWith(c(3, 2), c(3, 3), c(3, 4), c(3, 5))
	got, ok, _ := NextTarget(run, occ, setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(2, 3), got)
}

func TestNextTargetNonCollinearRun(t *testing.T) {
	run := []game.Coord{c(2, 2), c(3, 3)}
	got, ok, _ := NextTarget(run, boardWith(run...), setOf(run...), nil)
	require.True(t, ok)
	assert.Equal(t, c(1, 2), got)
}

func TestNextTargetExhaustionSignalsHunt(t *testing.T) {
	run := []game.Coord{c(0, 0)}
	occ := boardWith(c(0, 0), c(0, 1), c(1, 0))
	_, ok, pruned := NextTarget(run, occ, setOf(run...), nil)
	assert.False(t, ok)
	assert.Equal(t, run, pruned)
}

func TestNextTargetPrunesSunkShips(t *testing.T) {
	fleet := game.Fleet{{c(4, 4), c(4, 5)}}
	hits := setOf(c(4, 4), c(4, 5))
	run := []game.Coord{c(4, 4), c(4, 5)}
	_, ok, pruned := NextTarget(run, boardWith(run...), hits, fleet)
	assert.False(t, ok)
	assert.Empty(t, pruned)
}

func TestNextTargetKeepsAdjacentUnsunkShip(t *testing.T) {
	fleet := game.Fleet{
		{c(4, 4), c(4, 5)},
		{c(5, 4), c(6, 4), c(7, 4)},
	}
	hits := setOf(c(4, 4), c(4, 5), c(5, 4))
	run := []game.Coord{c(4, 4), c(4, 5), c(5, 4)}
	got, ok, pruned := NextTarget(run, boardWith(run...), hits, fleet)
	require.True(t, ok)
	assert.Equal(t, []game.Coord{c(5, 4)}, pruned)
	// (4,4) is shot, so the first free neighbour of (5,4) is (5,3)
	assert.Equal(t, c(5, 3), got)
}

func TestPruneIdempotent(t *testing.T) {
	fleet := fixedFleet()
	hits := setOf(c(4, 7), c(5, 7), c(2, 2), c(3, 2))
	run := []game.Coord{c(2, 2), c(4, 7), c(3, 2), c(5, 7)}

	once := Prune(run, hits, fleet)
	twice := Prune(once, hits, fleet)
	assert.Equal(t, once, twice)
	assert.Equal(t, []game.Coord{c(2, 2), c(3, 2)}, once)
	assert.Len(t, run, 4, "input must not be modified")
}

func TestPruneKeepsCellsOfUnknownShips(t *testing.T) {
	run := []game.Coord{c(8, 8)}
	assert.Equal(t, run, Prune(run, setOf(c(8, 8)), game.Fleet{{c(0, 0), c(0, 1)}}))
}
