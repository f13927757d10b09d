package targeting

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship-ai/internal/game"
)

func newEngine(t *testing.T, kind Kind, seed uint64) *Engine {
	t.Helper()
	p := DefaultParams()
	p.Kind = kind
	e, err := NewEngine(p, newRand(seed), zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsParams(t *testing.T) {
	p := DefaultParams()
	p.TopK = 0
	_, err := NewEngine(p, newRand(1), zerolog.Nop())
	assert.Error(t, err)
}

func TestNextHuntsDensity(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	got, ok := e.Next(NewState(game.DefaultSize, game.CanonicalLengths, nil))
	require.True(t, ok)
	assert.Equal(t, c(4, 4), got)
}

func TestNextTargetsRun(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
	st.Apply(c(3, 3), true)
	st.Apply(c(3, 4), true)
	got, ok := e.Next(st)
	require.True(t, ok)
	assert.Equal(t, c(3, 2), got)
}

func TestNextFallsThroughToHunt(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
	st.Apply(c(0, 0), true)
	st.Apply(c(0, 1), false)
	st.Apply(c(1, 0), false)
	require.Equal(t, Target, st.Mode())

	got, ok := e.Next(st)
	require.True(t, ok)
	assert.Empty(t, st.Run)
	assert.Equal(t, Hunt, st.Mode())
	assert.Equal(t, c(4, 4), got)
}

func TestNextFullBoard(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	st := NewState(2, []int{2}, nil)
	for _, p := range []game.Coord{c(0, 0), c(0, 1), c(1, 0), c(1, 1)} {
		st.Apply(p, false)
	}
	_, ok := e.Next(st)
	assert.False(t, ok)
}

func TestTurnRecordsOutcome(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	ship := game.Ship{c(4, 2), c(4, 3), c(4, 4), c(4, 5), c(4, 6)}
	st := NewState(game.DefaultSize, []int{5}, nil)
	oracle := newFleetOracle(game.Fleet{ship})

	shot, ok, err := e.Turn(st, oracle)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c(4, 4), shot.Cell)
	assert.Equal(t, Hunt, shot.Mode)
	assert.True(t, shot.Hit)
	assert.Empty(t, shot.Sunk)

	for !st.AllSunk() {
		shot, ok, err = e.Turn(st, oracle)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Target, shot.Mode)
	}
	assert.Equal(t, ship, shot.Sunk)
	// (3,4) and (4,1) are the only misses
	assert.Equal(t, 7, st.Occupied.Count())
	assert.Equal(t, []game.Coord{c(3, 4), c(4, 1)}, st.Misses.Slice())
}

type failingOracle struct{}

var errOffline = errors.New("offline")

func (failingOracle) Fire(game.Coord) (Outcome, error) { return Outcome{}, errOffline }

func TestTurnOracleError(t *testing.T) {
	e := newEngine(t, KindDensity, 1)
	st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
	_, ok, err := e.Turn(st, failingOracle{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, errOffline)
	assert.Zero(t, st.Occupied.Count())
}

func TestFullGames(t *testing.T) {
	for _, kind := range []Kind{KindDensity, KindMonteCarlo, KindExpectimax} {
		t.Run(string(kind), func(t *testing.T) {
			if kind == KindExpectimax && testing.Short() {
				t.Skip("expectimax game is slow")
			}
			e := newEngine(t, kind, 42)
			// only announced ships are known to the attacker
			st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
			oracle := newFleetOracle(fixedFleet())

			shots := 0
			for !st.AllSunk() {
				_, ok, err := e.Turn(st, oracle)
				require.NoError(t, err)
				require.True(t, ok, "ran out of cells after %d shots", shots)
				shots++
				require.NoError(t, st.Validate())
			}
			assert.LessOrEqual(t, shots, 100)
			assert.Equal(t, 17, st.Hits.Len())
			assert.Len(t, st.Fleet, 5)
		})
	}
}

// outcomeLog remembers every hit and miss seen so far and fails the test if
// a later state has lost one.
type outcomeLog struct {
	hits, misses []game.Coord
}

func (l *outcomeLog) check(t *testing.T, st *State, step string) {
	t.Helper()
	for _, p := range l.hits {
		require.True(t, st.Hits.Has(p), "%s: hit %s dropped", step, p)
	}
	for _, p := range l.misses {
		require.True(t, st.Misses.Has(p), "%s: miss %s dropped", step, p)
	}
	l.hits, l.misses = st.Hits.Slice(), st.Misses.Slice()
}

func TestOutcomesOnlyGrow(t *testing.T) {
	t.Run("prune and fall through", func(t *testing.T) {
		e := newEngine(t, KindDensity, 3)
		st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
		var seen outcomeLog

		st.Apply(c(2, 2), false)
		seen.check(t, st, "miss")
		st.Apply(c(4, 4), true)
		seen.check(t, st, "first hit")
		st.Apply(c(4, 5), true)
		st.RecordSunk(game.Ship{c(4, 4), c(4, 5)})
		seen.check(t, st, "sinking hit")
		require.Equal(t, Target, st.Mode())

		_, ok := e.Next(st)
		require.True(t, ok)
		assert.Equal(t, Hunt, st.Mode())
		seen.check(t, st, "pruned")
		assert.Equal(t, []int{5, 4, 3, 3}, st.Remaining())
	})

	for _, kind := range []Kind{KindDensity, KindMonteCarlo} {
		t.Run(string(kind), func(t *testing.T) {
			e := newEngine(t, kind, 11)
			st := NewState(game.DefaultSize, game.CanonicalLengths, nil)
			oracle := newFleetOracle(fixedFleet())
			var seen outcomeLog

			for i := 0; !st.AllSunk(); i++ {
				before := st.Mode()
				shot, ok, err := e.Turn(st, oracle)
				require.NoError(t, err)
				require.True(t, ok)
				if before == Target && shot.Mode == Hunt {
					t.Logf("shot %d fell back to hunt", i)
				}
				seen.check(t, st, shot.Cell.String())
			}
			assert.Len(t, seen.hits, 17)
		})
	}
}
