package app

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand/v2"

	"battleship-ai/internal/codec"
	"battleship-ai/internal/game"
	"battleship-ai/internal/merkle"
	"battleship-ai/internal/zk"
)

type CommitResult struct {
	RootHex string
	Secret  codec.Secret
}

// InitFleet places a random canonical fleet on the standard grid.
func InitFleet(rng *mrand.Rand) (game.Fleet, error) {
	return game.GenerateFleet(rng, game.DefaultSize, game.CanonicalLengths)
}

// NewSecret commits to fleet with a salt read from entropy.
func NewSecret(fleet game.Fleet, entropy io.Reader) (*CommitResult, error) {
	if err := fleet.Validate(game.DefaultSize, game.CanonicalLengths); err != nil {
		return nil, err
	}
	layout, err := fleet.Layout()
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(game.CanonicalLengths); err != nil {
		return nil, err
	}
	t, err := merkle.Build(layout.Flatten())
	if err != nil {
		return nil, err
	}

	// this is to make root unique for same boards
	salt, err := merkle.NewSalt(entropy)
	if err != nil {
		return nil, err
	}
	sec := codec.Secret{Fleet: fleet, Tree: t, SaltHex: codec.FormatHex(salt)}
	return &CommitResult{RootHex: codec.FormatHex(merkle.SaltedRoot(salt, t.Root())), Secret: sec}, nil
}

// Commit builds the secret and makes sure proving keys exist in keysDir.
func Commit(fleet game.Fleet, keysDir string) (*CommitResult, error) {
	res, err := NewSecret(fleet, rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := zk.EnsureShotKeys(keysDir); err != nil {
		return nil, err
	}
	return res, nil
}

type ShootResult struct {
	Payload codec.ShotProofPayload
	Bit     uint8
}

// ShootWith answers a shot at c and proves the answer with keys.
func ShootWith(keys *zk.Keys, sec codec.Secret, c game.Coord) (*ShootResult, error) {
	w, err := witness(sec, c)
	if err != nil {
		return nil, err
	}
	proof, pub, err := keys.Prove(w)
	if err != nil {
		return nil, err
	}
	return &ShootResult{Payload: codec.ShotProofPayload{Proof: proof, Public: pub}, Bit: w.Bit}, nil
}

func Shoot(sec codec.Secret, keysDir string, c game.Coord) (*ShootResult, error) {
	w, err := witness(sec, c)
	if err != nil {
		return nil, err
	}
	proof, pub, err := zk.ProveShot(keysDir, w)
	if err != nil {
		return nil, err
	}
	return &ShootResult{Payload: codec.ShotProofPayload{Proof: proof, Public: pub}, Bit: w.Bit}, nil
}

func witness(sec codec.Secret, c game.Coord) (zk.Witness, error) {
	if c.Row < 0 || c.Row >= game.DefaultSize || c.Col < 0 || c.Col >= game.DefaultSize {
		return zk.Witness{}, fmt.Errorf("cell %v out of range", c)
	}
	if sec.Tree == nil {
		return zk.Witness{}, fmt.Errorf("secret has no tree")
	}
	salt, err := sec.Salt()
	if err != nil {
		return zk.Witness{}, err
	}
	idx := CellIndex(c)
	path, err := sec.Tree.Path(idx)
	if err != nil {
		return zk.Witness{}, err
	}
	var bit uint8
	if _, ok := sec.Fleet.ShipAt(c); ok {
		bit = 1
	}
	return zk.Witness{
		Bit:   bit,
		Index: idx,
		Path:  path,
		Salt:  salt,
		Root:  merkle.SaltedRoot(salt, sec.Tree.Root()),
	}, nil
}

// CellIndex is the leaf index of c in the commitment tree.
func CellIndex(c game.Coord) int { return c.Row*game.DefaultSize + c.Col }

type VerifyResult struct {
	Valid bool
	Hit   uint8
}

// VerifyWith checks payload answers the shot at c under the committed root.
func VerifyWith(keys *zk.Keys, root *big.Int, payload codec.ShotProofPayload, c game.Coord) (*VerifyResult, error) {
	return verify(payload, c, func() error { return keys.Verify(payload.Proof, payload.Public, root) })
}

func Verify(vkPath string, root *big.Int, payload codec.ShotProofPayload, c game.Coord) (*VerifyResult, error) {
	return verify(payload, c, func() error { return zk.VerifyShot(vkPath, payload.Proof, payload.Public, root) })
}

func verify(payload codec.ShotProofPayload, c game.Coord, check func() error) (*VerifyResult, error) {
	if payload.Public.Index != CellIndex(c) {
		return nil, fmt.Errorf("proof is for cell %d but the shot was %s", payload.Public.Index, c)
	}
	if err := check(); err != nil {
		return nil, err
	}
	return &VerifyResult{Valid: true, Hit: payload.Public.Hit}, nil
}
