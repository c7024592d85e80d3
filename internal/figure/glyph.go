// Package figure maps a piece's side and kind to its display symbol.
package figure

import (
	"strings"

	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

var (
	blackGlyphs = map[chessdto.Kind]string{
		chessdto.Bishop: "♝",
		chessdto.King:   "♚",
		chessdto.Queen:  "♛",
		chessdto.Pawn:   "♟",
		chessdto.Rook:   "♜",
		chessdto.Knight: "♞",
	}
	whiteGlyphs = map[chessdto.Kind]string{
		chessdto.Bishop: "♗",
		chessdto.King:   "♔",
		chessdto.Queen:  "♕",
		chessdto.Pawn:   "♙",
		chessdto.Rook:   "♖",
		chessdto.Knight: "♘",
	}
	letters = map[chessdto.Kind]string{
		chessdto.Bishop: "B",
		chessdto.King:   "K",
		chessdto.Queen:  "Q",
		chessdto.Pawn:   "P",
		chessdto.Rook:   "R",
		chessdto.Knight: "N",
	}
)

// Glyph returns the Unicode chess symbol for side and kind. Anything that is not
// black is drawn with the white set; an unknown kind yields "".
func Glyph(side chessdto.Side, kind chessdto.Kind) string {
	if side == chessdto.Black {
		return blackGlyphs[kind]
	}
	return whiteGlyphs[kind]
}

// Letter is the ASCII fallback: upper case for white, lower case for black.
func Letter(side chessdto.Side, kind chessdto.Kind) string {
	l := letters[kind]
	if side == chessdto.Black {
		return strings.ToLower(l)
	}
	return l
}

// Of is a shorthand for Glyph(f.Colour, f.Name).
func Of(f chessdto.Figure) string { return Glyph(f.Colour, f.Name) }
