package merkle

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

const (
	Depth  = 7
	Leaves = 1 << Depth // 128, enough for a 10x10 layout
)

var ErrIndex = errors.New("leaf index out of range")

// --- encode BN254 field elements as 32-byte big-endian ---
func feBytes(x *big.Int) []byte {
	out := make([]byte, fr.Bytes)
	x.FillBytes(out)
	return out
}

// MiMC helpers (off-chain), consistent with in-circuit MiMC
func HashLeaf(bit uint8) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(new(big.Int).SetUint64(uint64(bit))))
	return new(big.Int).SetBytes(h.Sum(nil))
}

func HashNode(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(left))
	h.Write(feBytes(right))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// SaltedRoot hides the layout: two commitments to the same fleet differ.
func SaltedRoot(salt, root *big.Int) *big.Int { return HashNode(salt, root) }

// NewSalt draws a random field element from r.
func NewSalt(r io.Reader) (*big.Int, error) {
	b := make([]byte, fr.Bytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(b), fr.Modulus()), nil
}

// Tree is a fixed-size binary Merkle tree stored level by level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// Build hashes bits into a Leaves-wide tree padded with HashLeaf(0).
func Build(bits []uint8) (*Tree, error) {
	if len(bits) > Leaves {
		return nil, fmt.Errorf("too many leaves: %d > %d", len(bits), Leaves)
	}
	pad := HashLeaf(0)
	level := make([]*big.Int, Leaves)
	for i := range level {
		if i < len(bits) {
			level[i] = HashLeaf(bits[i])
		} else {
			level[i] = pad
		}
	}

	levels := [][]*big.Int{level}
	for len(level) > 1 {
		up := make([]*big.Int, len(level)/2)
		for i := range up {
			up[i] = HashNode(level[2*i], level[2*i+1])
		}
		levels = append(levels, up)
		level = up
	}
	return &Tree{Depth: len(levels) - 1, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[t.Depth][0]) }

// Path returns the sibling hashes from leaf idx up to the root. The
// direction at each level is bit i of idx: 1 means the current node is a
// right child.
func (t *Tree) Path(idx int) ([]*big.Int, error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, fmt.Errorf("%w: %d", ErrIndex, idx)
	}
	path := make([]*big.Int, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		path = append(path, new(big.Int).Set(t.Levels[level][cur^1]))
		cur /= 2
	}
	return path, nil
}

// RootFromPath recomputes the root for leaf at idx.
func RootFromPath(leaf *big.Int, idx int, path []*big.Int) *big.Int {
	cur := leaf
	for i, sib := range path {
		if idx>>i&1 == 1 {
			cur = HashNode(sib, cur)
		} else {
			cur = HashNode(cur, sib)
		}
	}
	return cur
}
