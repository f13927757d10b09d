package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a 0-indexed (row, col) cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less orders coordinates by row, then column.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Parity reports whether the cell is on the even checkerboard colour.
func (c Coord) Parity() bool { return (c.Row+c.Col)%2 == 0 }

// Neighbors returns the four orthogonal neighbours: up, down, left, right.
// Bounds are not checked.
func (c Coord) Neighbors() [4]Coord {
	return [4]Coord{
		{c.Row - 1, c.Col},
		{c.Row + 1, c.Col},
		{c.Row, c.Col - 1},
		{c.Row, c.Col + 1},
	}
}

// String renders the cell as "A1": row letter, 1-based column.
func (c Coord) String() string {
	if c.Row < 0 || c.Row > 25 {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return fmt.Sprintf("%c%d", 'A'+c.Row, c.Col+1)
}

// ParseCoord converts "A1" to row 0, col 0.
func ParseCoord(s string) (Coord, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Coord{}, fmt.Errorf("invalid coordinate: %q", s)
	}
	row := strings.ToUpper(s[:1])[0]
	if row < 'A' || row > 'Z' {
		return Coord{}, fmt.Errorf("invalid row: %q", s[:1])
	}
	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 1 {
		return Coord{}, fmt.Errorf("invalid column: %q", s[1:])
	}
	return Coord{Row: int(row - 'A'), Col: col - 1}, nil
}
