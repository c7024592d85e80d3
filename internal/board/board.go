// Package board turns a figure list, a selection and a candidate set into an
// 8x8 grid, and turns clicks on that grid into intents for the session.
package board

import (
	"github.com/park285/Cheese-board-client/internal/figure"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

const Size = chessdto.BoardSize

// Props is everything the board needs to draw itself.
type Props struct {
	Figures    []chessdto.Figure
	Selected   *chessdto.Coord
	Candidates []chessdto.Coord
}

type Shade int

const (
	Light Shade = iota
	Dark
)

func (s Shade) String() string {
	if s == Dark {
		return "black"
	}
	return "white"
}

type Cell struct {
	Coord     chessdto.Coord
	Shade     Shade
	Glyph     string
	Figure    *chessdto.Figure
	Selected  bool
	Candidate bool
	Clickable bool
}

// Grid holds rows from y=7 down to y=0; each row runs x=0..7.
type Grid [Size][Size]Cell

// At returns the cell for a board coordinate.
func (g *Grid) At(c chessdto.Coord) *Cell {
	if !c.Valid() {
		return nil
	}
	return &g[Size-1-c.Y][c.X]
}

func ShadeOf(c chessdto.Coord) Shade {
	if (c.X+c.Y)%2 == 0 {
		return Light
	}
	return Dark
}

// Render lays out the board. Figures off the board are ignored and the first
// figure claiming a square wins it.
func Render(p Props) Grid {
	var g Grid
	for row := 0; row < Size; row++ {
		y := Size - 1 - row
		for x := 0; x < Size; x++ {
			c := chessdto.Coord{X: x, Y: y}
			g[row][x] = Cell{Coord: c, Shade: ShadeOf(c)}
		}
	}
	for i := range p.Figures {
		f := p.Figures[i]
		cell := g.At(f.Coord())
		if cell == nil || cell.Figure != nil {
			continue
		}
		fc := f
		cell.Figure = &fc
		cell.Glyph = figure.Of(fc)
		cell.Clickable = true
	}
	if p.Selected != nil {
		if cell := g.At(*p.Selected); cell != nil {
			cell.Selected = true
		}
	}
	for _, c := range p.Candidates {
		if cell := g.At(c); cell != nil {
			cell.Candidate = true
		}
	}
	return g
}

// FigureAt returns the first figure standing on c.
func FigureAt(figures []chessdto.Figure, c chessdto.Coord) *chessdto.Figure {
	for i := range figures {
		if figures[i].PositionX == c.X && figures[i].PositionY == c.Y {
			f := figures[i]
			return &f
		}
	}
	return nil
}

type IntentKind int

const (
	IntentSelect IntentKind = iota
	IntentClear
	IntentMove
)

func (k IntentKind) String() string {
	switch k {
	case IntentClear:
		return "clear"
	case IntentMove:
		return "move"
	default:
		return "select"
	}
}

// Intent is what a click asks the session to do.
type Intent struct {
	Kind IntentKind
	From chessdto.Coord
	To   chessdto.Coord
}

// Click decides from the current props alone: a candidate square submits a move
// from the selection, the selected square clears it, anything else becomes the
// new selection whether or not it is occupied.
func Click(p Props, c chessdto.Coord) Intent {
	if p.Selected != nil && containsCoord(p.Candidates, c) {
		return Intent{Kind: IntentMove, From: *p.Selected, To: c}
	}
	if p.Selected != nil && *p.Selected == c {
		return Intent{Kind: IntentClear}
	}
	return Intent{Kind: IntentSelect, To: c}
}

func containsCoord(list []chessdto.Coord, c chessdto.Coord) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
