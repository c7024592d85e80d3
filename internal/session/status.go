package session

import (
	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// StatusLines describes s for a status bar: game and side to move, a
// check/checkmate/stalemate banner when flagged, and the selection.
func StatusLines(s State, msgs *msgcat.Catalog) []string {
	if s.Game == nil {
		return []string{msgs.Text("status.no_game", nil)}
	}
	g := s.Game
	lines := []string{
		msgs.Text("status.game", map[string]any{"ID": g.ID}) + "  " + msgs.Text("status.turn", map[string]any{"Turn": g.InTurn}),
	}
	switch {
	case g.Checkmate:
		lines = append(lines, msgs.Text("status.checkmate", map[string]any{"Winner": opponent(g.InTurn)}))
	case g.Stalemate:
		lines = append(lines, msgs.Text("status.stalemate", nil))
	case g.Check:
		lines = append(lines, msgs.Text("status.check", map[string]any{"Turn": g.InTurn}))
	}
	if s.Selected != nil {
		sq := squareName(*s.Selected)
		if s.CandidatesLoaded && board.FigureAt(s.Figures, *s.Selected) != nil {
			lines = append(lines, msgs.Text("status.candidates", map[string]any{"Count": len(s.Candidates), "Square": sq}))
		} else {
			lines = append(lines, msgs.Text("status.selected", map[string]any{"Square": sq}))
		}
	}
	return lines
}

func opponent(side string) string {
	switch chessdto.Side(side) {
	case chessdto.White:
		return string(chessdto.Black)
	case chessdto.Black:
		return string(chessdto.White)
	default:
		return "the other side"
	}
}
