package devserver

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// Record is what the store keeps per game. The move list is the source of
// truth; Figures carries the stable figure ids the client addresses.
type Record struct {
	ID        int64             `json:"id"`
	MovesUCI  []string          `json:"movesUci"`
	MovesSAN  []string          `json:"movesSan"`
	Figures   []chessdto.Figure `json:"figures"`
	Outcome   string            `json:"outcome,omitempty"`
	Method    string            `json:"method,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Finished reports whether the game reached an outcome.
func (r *Record) Finished() bool {
	return r.Outcome != "" && r.Outcome != nchess.NoOutcome.String()
}

func newRecord(id int64, now time.Time) *Record {
	rec := &Record{ID: id, MovesUCI: []string{}, MovesSAN: []string{}, CreatedAt: now, UpdatedAt: now}
	board := nchess.NewGame().Position().Board()
	var next int64 = 1
	for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			rec.Figures = append(rec.Figures, chessdto.Figure{
				ID:        next,
				PositionX: int(file),
				PositionY: int(rank),
				Colour:    sideOf(piece.Color()),
				Name:      kindOf(piece.Type()),
			})
			next++
		}
	}
	return rec
}

// replay rebuilds the engine game from the stored UCI moves.
func replay(rec *Record) (*nchess.Game, error) {
	game := nchess.NewGame()
	for _, mv := range rec.MovesUCI {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay game %d move %q: %w", rec.ID, mv, err)
		}
	}
	return game, nil
}

// view builds the public game record from the engine state.
func view(rec *Record, game *nchess.Game) chessdto.Game {
	out := chessdto.Game{
		ID:     rec.ID,
		InTurn: string(sideOf(game.Position().Turn())),
	}
	out.Check = lastMoveGivesCheck(game)
	switch game.Method() {
	case nchess.Checkmate:
		out.Checkmate = true
		out.Check = true
	case nchess.Stalemate:
		out.Stalemate = true
	}
	return out
}

// lastMoveGivesCheck looks the last move up among the moves generated for the
// position before it, since only generated moves carry the full tag set.
func lastMoveGivesCheck(game *nchess.Game) bool {
	moves := game.Moves()
	positions := game.Positions()
	if len(moves) == 0 || len(positions) < 2 {
		return false
	}
	last := moves[len(moves)-1]
	if last.HasTag(nchess.Check) {
		return true
	}
	prev := positions[len(positions)-2]
	for _, mv := range prev.ValidMoves() {
		if mv.S1() == last.S1() && mv.S2() == last.S2() && mv.Promo() == last.Promo() {
			return mv.HasTag(nchess.Check)
		}
	}
	return false
}

// destinations lists the squares the figure standing on from may move to.
// Promotion choices collapse into one destination.
func destinations(game *nchess.Game, from chessdto.Coord) chessdto.CoordPairs {
	out := chessdto.CoordPairs{}
	if !from.Valid() {
		return out
	}
	s1 := toSquare(from)
	for _, mv := range game.ValidMoves() {
		if mv.S1() != s1 {
			continue
		}
		to := fromSquare(mv.S2())
		if !out.Contains(to) {
			out = append(out, to)
		}
	}
	return out
}

// applyMove plays from→to on game and mirrors it onto rec. Pawns reaching the
// last rank become queens.
func applyMove(rec *Record, game *nchess.Game, from, to chessdto.Coord, now time.Time) error {
	if rec.Finished() {
		return ErrIllegalMove
	}
	if !from.Valid() || !to.Valid() || !destinations(game, from).Contains(to) {
		return ErrIllegalMove
	}
	mover := figureIndexAt(rec.Figures, from)
	if mover < 0 {
		return ErrIllegalMove
	}

	uci := toSquare(from).String() + toSquare(to).String()
	promote := rec.Figures[mover].Name == chessdto.Pawn && (to.Y == 0 || to.Y == chessdto.BoardSize-1)
	if promote {
		uci += "q"
	}

	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := game.Move(mv, nil); err != nil {
		return ErrIllegalMove
	}

	rec.Figures = moveFigures(rec.Figures, from, to, promote)
	rec.MovesUCI = append(rec.MovesUCI, uci)
	rec.MovesSAN = append(rec.MovesSAN, san)
	rec.UpdatedAt = now
	if outcome := game.Outcome(); outcome != nchess.NoOutcome {
		rec.Outcome = outcome.String()
		rec.Method = strings.ToLower(game.Method().String())
	}
	return nil
}

// moveFigures updates the figure list for a legal move, keeping ids: the
// captured figure (including en passant) is removed, a castling rook follows
// its king, and a promoted pawn changes kind.
func moveFigures(figs []chessdto.Figure, from, to chessdto.Coord, promote bool) []chessdto.Figure {
	mover := figs[figureIndexAt(figs, from)]
	captured := to
	if mover.Name == chessdto.Pawn && from.X != to.X && figureIndexAt(figs, to) < 0 {
		captured = chessdto.Coord{X: to.X, Y: from.Y}
	}

	out := make([]chessdto.Figure, 0, len(figs))
	for _, f := range figs {
		if f.Coord() == captured && f.ID != mover.ID {
			continue
		}
		if f.ID == mover.ID {
			f.PositionX, f.PositionY = to.X, to.Y
			if promote {
				f.Name = chessdto.Queen
			}
		}
		out = append(out, f)
	}

	if mover.Name == chessdto.King && abs(to.X-from.X) == 2 {
		rookFrom, rookTo := chessdto.Coord{X: 7, Y: from.Y}, chessdto.Coord{X: 5, Y: from.Y}
		if to.X < from.X {
			rookFrom, rookTo = chessdto.Coord{X: 0, Y: from.Y}, chessdto.Coord{X: 3, Y: from.Y}
		}
		if i := figureIndexAt(out, rookFrom); i >= 0 {
			out[i].PositionX, out[i].PositionY = rookTo.X, rookTo.Y
		}
	}
	return out
}

func figureIndexAt(figs []chessdto.Figure, c chessdto.Coord) int {
	for i := range figs {
		if figs[i].Coord() == c {
			return i
		}
	}
	return -1
}

func figureByID(figs []chessdto.Figure, id int64) (chessdto.Figure, bool) {
	for _, f := range figs {
		if f.ID == id {
			return f, true
		}
	}
	return chessdto.Figure{}, false
}

func toSquare(c chessdto.Coord) nchess.Square {
	return nchess.NewSquare(nchess.File(c.X), nchess.Rank(c.Y))
}

func fromSquare(sq nchess.Square) chessdto.Coord {
	return chessdto.Coord{X: int(sq.File()), Y: int(sq.Rank())}
}

func sideOf(c nchess.Color) chessdto.Side {
	if c == nchess.Black {
		return chessdto.Black
	}
	return chessdto.White
}

func kindOf(pt nchess.PieceType) chessdto.Kind {
	switch pt {
	case nchess.King:
		return chessdto.King
	case nchess.Queen:
		return chessdto.Queen
	case nchess.Rook:
		return chessdto.Rook
	case nchess.Bishop:
		return chessdto.Bishop
	case nchess.Knight:
		return chessdto.Knight
	default:
		return chessdto.Pawn
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
