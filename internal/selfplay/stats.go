package selfplay

import (
	"fmt"
	"io"
	"slices"
)

const recentGames = 5

// Stats summarises a batch of games.
type Stats struct {
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	TotalShots int     `json:"totalShots"`
	AvgShots   float64 `json:"avgShots"`
	MinShots   int     `json:"minShots"`
	MaxShots   int     `json:"maxShots"`
	Recent     []int   `json:"recent"` // shots in the last games, oldest first
}

func Summarize(records []Record) Stats {
	var s Stats
	shots := make([]int, 0, len(records))
	for _, r := range records {
		n := len(r.Shots)
		shots = append(shots, n)
		s.Games++
		s.TotalShots += n
		if r.Won {
			s.Wins++
		}
	}
	if s.Games == 0 {
		return s
	}
	s.AvgShots = float64(s.TotalShots) / float64(s.Games)
	s.MinShots = slices.Min(shots)
	s.MaxShots = slices.Max(shots)
	s.Recent = slices.Clone(shots[max(0, len(shots)-recentGames):])
	return s
}

func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "Games played:  %d\n", s.Games)
	fmt.Fprintf(w, "Games won:     %d\n", s.Wins)
	fmt.Fprintf(w, "Total shots:   %d\n", s.TotalShots)
	fmt.Fprintf(w, "Average shots: %.2f\n", s.AvgShots)
	fmt.Fprintf(w, "Fewest shots:  %d\n", s.MinShots)
	fmt.Fprintf(w, "Most shots:    %d\n", s.MaxShots)
	fmt.Fprintf(w, "Last games:    %v\n", s.Recent)
}
