package selfplay

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"battleship-ai/internal/game"
	"battleship-ai/internal/targeting"
	"battleship-ai/internal/zk"
)

// ShotRecord is one turn of a recorded game.
type ShotRecord struct {
	Cell game.Coord `json:"cell"`
	Mode string     `json:"mode"`
	Hit  bool       `json:"hit"`
	Sunk int        `json:"sunk,omitempty"` // length of the ship this shot sank
}

type Record struct {
	ID       string         `json:"id"`
	Strategy targeting.Kind `json:"strategy"`
	Seed     uint64         `json:"seed"`
	Stream   uint64         `json:"stream"`
	Fleet    game.Fleet     `json:"fleet"`
	Shots    []ShotRecord   `json:"shots"`
	Won      bool           `json:"won"`
	Proven   bool           `json:"proven,omitempty"`
}

type Options struct {
	Size    int
	Lengths []int
	// recorded only; together they reproduce the game
	Seed   uint64
	Stream uint64
}

// Play runs one game to the end. The attacker learns sinkings only from
// the defender's announcements. A game is won when every ship is sunk; it
// cannot take more than Size² shots.
func Play(ctx context.Context, eng *targeting.Engine, def Defender, opts Options) (Record, error) {
	st := targeting.NewState(opts.Size, opts.Lengths, nil)
	rec := Record{
		ID:       uuid.NewString(),
		Strategy: eng.Params().Kind,
		Seed:     opts.Seed,
		Stream:   opts.Stream,
		Fleet:    def.Fleet(),
	}
	_, rec.Proven = def.(*ProvingReferee)

	for len(rec.Shots) < opts.Size*opts.Size && !st.AllSunk() {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		shot, ok, err := eng.Turn(st, def)
		if err != nil {
			return rec, err
		}
		if !ok {
			break
		}
		rec.Shots = append(rec.Shots, ShotRecord{
			Cell: shot.Cell,
			Mode: shot.Mode.String(),
			Hit:  shot.Hit,
			Sunk: len(shot.Sunk),
		})
	}
	rec.Won = st.AllSunk()
	return rec, nil
}

// Batch describes a run of independent games.
type Batch struct {
	Games   int
	Workers int
	Seed    uint64
	Size    int
	Lengths []int
	Params  targeting.Params
	// PlacementAttempts bounds the tries per ship when hiding a fleet;
	// zero means game.PlacementAttempts.
	PlacementAttempts int
	Keys              *zk.Keys // non-nil: every answer is proven
	Log               zerolog.Logger
}

// Run plays b.Games games on up to b.Workers goroutines. Each game gets its
// own generator seeded from (b.Seed, game index), its own referee and its
// own state, so results do not depend on scheduling. Records come back in
// game order.
func Run(ctx context.Context, b Batch) (Stats, []Record, error) {
	if b.Games < 1 {
		return Stats{}, nil, fmt.Errorf("games must be positive, got %d", b.Games)
	}
	if err := b.Params.Validate(); err != nil {
		return Stats{}, nil, err
	}
	if b.Size == 0 {
		b.Size = game.DefaultSize
	}
	if len(b.Lengths) == 0 {
		b.Lengths = game.CanonicalLengths
	}
	if b.PlacementAttempts == 0 {
		b.PlacementAttempts = game.PlacementAttempts
	}
	workers := max(b.Workers, 1)
	records := make([]Record, b.Games)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range b.Games {
		g.Go(func() error {
			rec, err := playOne(ctx, b, uint64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			records[i] = rec
			b.Log.Debug().Int("game", i).Int("shots", len(rec.Shots)).Bool("won", rec.Won).Msg("game finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, nil, err
	}

	stats := Summarize(records)
	b.Log.Info().
		Int("games", stats.Games).
		Float64("avg_shots", stats.AvgShots).
		Dur("took", time.Since(start)).
		Msg("self-play batch done")
	return stats, records, nil
}

func playOne(ctx context.Context, b Batch, stream uint64) (Record, error) {
	rng := rand.New(rand.NewPCG(b.Seed, stream))
	fleet, err := game.GenerateFleetWithin(rng, b.Size, b.Lengths, b.PlacementAttempts)
	if err != nil {
		return Record{}, err
	}
	var def Defender = NewReferee(b.Size, fleet)
	if b.Keys != nil {
		if def, err = NewProvingReferee(b.Size, fleet, b.Keys, b.Log); err != nil {
			return Record{}, err
		}
	}
	eng, err := targeting.NewEngine(b.Params, rng, b.Log)
	if err != nil {
		return Record{}, err
	}
	return Play(ctx, eng, def, Options{Size: b.Size, Lengths: b.Lengths, Seed: b.Seed, Stream: stream})
}
