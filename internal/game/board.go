package game

import (
	"encoding/json"
	"errors"

	"github.com/bits-and-blooms/bitset"
)

// DefaultSize is the side of the standard board.
const DefaultSize = 10

// MaxSize bounds the board side accepted from callers. Grids and density
// maps are allocated per cell.
const MaxSize = 64

// Board is the attacker's N×N view of the opponent's waters: a cell is
// either free or already shot. Outcomes live in separate hit/miss sets.
type Board struct {
	n    int
	shot *bitset.BitSet
}

func NewBoard(n int) *Board {
	return &Board{n: n, shot: bitset.New(uint(n * n))}
}

func (b *Board) Size() int { return b.n }

func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.n && c.Col >= 0 && c.Col < b.n
}

// IsFree reports whether c is on the board and has not been targeted.
func (b *Board) IsFree(c Coord) bool {
	return b.InBounds(c) && !b.shot.Test(b.index(c))
}

// Mark records a shot at c. Out-of-bounds cells are ignored.
func (b *Board) Mark(c Coord) {
	if b.InBounds(c) {
		b.shot.Set(b.index(c))
	}
}

func (b *Board) Count() int { return int(b.shot.Count()) }

func (b *Board) Clone() *Board {
	return &Board{n: b.n, shot: b.shot.Clone()}
}

// FreeCells lists untargeted cells in row-major order.
func (b *Board) FreeCells() []Coord {
	out := make([]Coord, 0, b.n*b.n-b.Count())
	for r := 0; r < b.n; r++ {
		for c := 0; c < b.n; c++ {
			if !b.shot.Test(uint(r*b.n + c)) {
				out = append(out, Coord{r, c})
			}
		}
	}
	return out
}

func (b *Board) index(c Coord) uint { return uint(c.Row*b.n + c.Col) }

// CoordSet is a set of cells on an N×N grid.
type CoordSet struct {
	n    int
	bits *bitset.BitSet
}

func NewCoordSet(n int, cs ...Coord) *CoordSet {
	s := &CoordSet{n: n, bits: bitset.New(uint(n * n))}
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

func (s *CoordSet) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < s.n && c.Col >= 0 && c.Col < s.n
}

// Add inserts c. Cells outside the grid are ignored.
func (s *CoordSet) Add(c Coord) {
	if s.inBounds(c) {
		s.bits.Set(uint(c.Row*s.n + c.Col))
	}
}

func (s *CoordSet) Has(c Coord) bool {
	return s.inBounds(c) && s.bits.Test(uint(c.Row*s.n+c.Col))
}

func (s *CoordSet) Len() int { return int(s.bits.Count()) }

func (s *CoordSet) Size() int { return s.n }

func (s *CoordSet) Clone() *CoordSet {
	return &CoordSet{n: s.n, bits: s.bits.Clone()}
}

// Union returns a new set holding the cells of both sets.
func (s *CoordSet) Union(o *CoordSet) *CoordSet {
	return &CoordSet{n: s.n, bits: s.bits.Union(o.bits)}
}

// Intersects reports whether the sets share a cell.
func (s *CoordSet) Intersects(o *CoordSet) bool {
	return s.bits.IntersectionCardinality(o.bits) > 0
}

func (s *CoordSet) IsSubsetOf(o *CoordSet) bool {
	return s.bits.DifferenceCardinality(o.bits) == 0
}

// Slice lists the members in row-major order.
func (s *CoordSet) Slice() []Coord {
	out := make([]Coord, 0, s.Len())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, Coord{int(i) / s.n, int(i) % s.n})
	}
	return out
}

func (s *CoordSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON needs the grid size to be known, so the set must be created
// with NewCoordSet before decoding into it.
func (s *CoordSet) UnmarshalJSON(data []byte) error {
	if s.n == 0 {
		return errors.New("coord set: size unknown")
	}
	var cs []Coord
	if err := json.Unmarshal(data, &cs); err != nil {
		return err
	}
	s.bits.ClearAll()
	for _, c := range cs {
		s.Add(c)
	}
	return nil
}

// Layout is the defender's hidden grid. Cell: 0=water, 1=ship.
type Layout struct {
	Cells [DefaultSize][DefaultSize]uint8 `json:"cells"`
}

// Validate checks binary cells and the expected number of ship cells.
func (l *Layout) Validate(lengths []int) error {
	want := 0
	for _, n := range lengths {
		want += n
	}
	total := 0
	for r := 0; r < DefaultSize; r++ {
		for c := 0; c < DefaultSize; c++ {
			v := l.Cells[r][c]
			if v != 0 && v != 1 {
				return errors.New("layout has non-binary cell")
			}
			total += int(v)
		}
	}
	if total != want {
		return errors.New("layout ship cell count does not match the fleet")
	}
	return nil
}

// Flatten returns the cells in row-major order, the leaf order of the commitment tree.
func (l *Layout) Flatten() []uint8 {
	out := make([]uint8, 0, DefaultSize*DefaultSize)
	for r := 0; r < DefaultSize; r++ {
		out = append(out, l.Cells[r][:]...)
	}
	return out
}
