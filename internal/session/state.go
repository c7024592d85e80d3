package session

import (
	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// Phase is the client-visible position in the interaction cycle.
type Phase int

const (
	PhaseNoGame Phase = iota
	PhaseIdle
	PhaseSelected
	PhaseCandidatesLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseCandidatesLoaded:
		return "candidates_loaded"
	default:
		return "no_game"
	}
}

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Notice is the one-line message shown under the board after an action.
type Notice struct {
	Kind NoticeKind
	Text string
}

// State is everything the client knows. The game service owns the truth;
// State only mirrors its last answers plus the local selection.
type State struct {
	Game       *chessdto.Game
	Figures    []chessdto.Figure
	Selected   *chessdto.Coord
	Candidates []chessdto.Coord
	// CandidatesLoaded is set once the destinations for the current selection arrived.
	CandidatesLoaded bool
	// RefreshSeq counts requested game refreshes.
	RefreshSeq uint64
	Notice     Notice
}

func (s State) Phase() Phase {
	switch {
	case s.Game == nil:
		return PhaseNoGame
	case s.Selected == nil:
		return PhaseIdle
	case s.CandidatesLoaded:
		return PhaseCandidatesLoaded
	default:
		return PhaseSelected
	}
}

// Props is the board view of the state.
func (s State) Props() board.Props {
	return board.Props{Figures: s.Figures, Selected: s.Selected, Candidates: s.Candidates}
}

func (s State) clone() State {
	out := s
	if s.Game != nil {
		g := *s.Game
		out.Game = &g
	}
	if s.Selected != nil {
		c := *s.Selected
		out.Selected = &c
	}
	out.Figures = append([]chessdto.Figure(nil), s.Figures...)
	out.Candidates = append([]chessdto.Coord(nil), s.Candidates...)
	return out
}

// normalizeFigures drops figures off the board and every figure after the first
// on a square. It returns the kept list and how many were dropped.
func normalizeFigures(in []chessdto.Figure) ([]chessdto.Figure, int) {
	out := make([]chessdto.Figure, 0, len(in))
	var taken [board.Size][board.Size]bool
	for _, f := range in {
		c := f.Coord()
		if !c.Valid() || taken[c.X][c.Y] {
			continue
		}
		taken[c.X][c.Y] = true
		out = append(out, f)
	}
	return out, len(in) - len(out)
}

func normalizeCoords(in []chessdto.Coord) []chessdto.Coord {
	out := make([]chessdto.Coord, 0, len(in))
	seen := make(map[chessdto.Coord]struct{}, len(in))
	for _, c := range in {
		if !c.Valid() {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
