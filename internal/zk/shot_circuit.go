package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"battleship-ai/internal/merkle"
)

const MerkleDepth = merkle.Depth // 128 leaves

// ShotCircuit proves that the cell at Index of the committed layout holds
// Hit. The path directions come from the public Index, so a proof answers
// for exactly one cell.
type ShotCircuit struct {
	Bit  frontend.Variable              `gnark:",secret"`
	Path [MerkleDepth]frontend.Variable `gnark:",secret"`
	Salt frontend.Variable              `gnark:",secret"`

	Root  frontend.Variable `gnark:",public"` // salted root
	Index frontend.Variable `gnark:",public"`
	Hit   frontend.Variable `gnark:",public"`
}

func (c *ShotCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.Bit)
	api.AssertIsEqual(c.Hit, c.Bit)

	dir := api.ToBinary(c.Index, MerkleDepth)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Bit)
	curr := h.Sum()

	for i := 0; i < MerkleDepth; i++ {
		h.Reset()
		left := api.Select(dir[i], c.Path[i], curr)
		right := api.Select(dir[i], curr, c.Path[i])
		h.Write(left, right)
		curr = h.Sum()
	}

	h.Reset()
	h.Write(c.Salt, curr)
	api.AssertIsEqual(h.Sum(), c.Root)
	return nil
}
