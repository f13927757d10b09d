package selfplay

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"battleship-ai/internal/app"
	"battleship-ai/internal/codec"
	"battleship-ai/internal/game"
	"battleship-ai/internal/targeting"
	"battleship-ai/internal/zk"
)

var ErrRepeatedShot = errors.New("cell already shot")

// Defender answers shots against a hidden fleet it can reveal afterwards.
type Defender interface {
	targeting.Oracle
	Fleet() game.Fleet
}

// Referee holds the hidden fleet and announces hits and sinkings.
type Referee struct {
	fleet game.Fleet
	shot  *game.Board
	hits  *game.CoordSet
}

func NewReferee(n int, fleet game.Fleet) *Referee {
	return &Referee{fleet: fleet, shot: game.NewBoard(n), hits: game.NewCoordSet(n)}
}

func (r *Referee) Fleet() game.Fleet { return r.fleet }

func (r *Referee) Fire(c game.Coord) (targeting.Outcome, error) {
	if !r.shot.InBounds(c) {
		return targeting.Outcome{}, fmt.Errorf("cell %v out of bounds", c)
	}
	if !r.shot.IsFree(c) {
		return targeting.Outcome{}, fmt.Errorf("%w: %s", ErrRepeatedShot, c)
	}
	r.shot.Mark(c)
	ship, ok := r.fleet.ShipAt(c)
	if !ok {
		return targeting.Outcome{}, nil
	}
	r.hits.Add(c)
	out := targeting.Outcome{Hit: true}
	if ship.Sunk(r.hits) {
		out.Sunk = ship
	}
	return out, nil
}

// ProvingReferee commits to its fleet up front and backs every answer with
// a groth16 proof. The attacker side verifies each proof against the
// published root before the answer is used.
type ProvingReferee struct {
	*Referee

	keys   *zk.Keys
	secret codec.Secret
	root   *big.Int
	log    zerolog.Logger
}

func NewProvingReferee(n int, fleet game.Fleet, keys *zk.Keys, log zerolog.Logger) (*ProvingReferee, error) {
	if n != game.DefaultSize {
		return nil, fmt.Errorf("proofs need the %dx%d grid, got %d", game.DefaultSize, game.DefaultSize, n)
	}
	res, err := app.NewSecret(fleet, rand.Reader)
	if err != nil {
		return nil, err
	}
	root, err := codec.ParseHex(res.RootHex)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("root", res.RootHex).Msg("fleet committed")
	return &ProvingReferee{Referee: NewReferee(n, fleet), keys: keys, secret: res.Secret, root: root, log: log}, nil
}

func (r *ProvingReferee) Fire(c game.Coord) (targeting.Outcome, error) {
	out, err := r.Referee.Fire(c)
	if err != nil {
		return out, err
	}
	shot, err := app.ShootWith(r.keys, r.secret, c)
	if err != nil {
		return targeting.Outcome{}, fmt.Errorf("prove %s: %w", c, err)
	}
	v, err := app.VerifyWith(r.keys, r.root, shot.Payload, c)
	if err != nil {
		return targeting.Outcome{}, fmt.Errorf("verify %s: %w", c, err)
	}
	if (v.Hit == 1) != out.Hit {
		return targeting.Outcome{}, fmt.Errorf("proof for %s disagrees with the announced answer", c)
	}
	r.log.Trace().Stringer("cell", c).Bool("hit", out.Hit).Msg("answer proven")
	return out, nil
}
