// Package tui is the terminal front end: a clickable board, a status panel
// and key bindings, all driving a session.Controller.
package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/internal/figure"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

const (
	// cellWidth is the number of terminal columns per square.
	cellWidth = 2
	// labelWidth leaves room for the rank numbers left of the board.
	labelWidth = 2
)

var (
	lightBG     = tcell.NewRGBColor(233, 207, 163)
	darkBG      = tcell.NewRGBColor(187, 136, 96)
	selectedBG  = tcell.NewRGBColor(246, 222, 110)
	candidateBG = tcell.NewRGBColor(120, 170, 110)
	cursorBG    = tcell.NewRGBColor(110, 150, 210)
	pieceFG     = tcell.ColorBlack
)

// BoardView draws a board.Grid into a tview.Box and maps screen positions
// back to board coordinates.
type BoardView struct {
	*tview.Box

	mu      sync.Mutex
	grid    board.Grid
	cursor  *chessdto.Coord
	ascii   bool
	originX int
	originY int
}

func NewBoardView() *BoardView {
	bv := &BoardView{Box: tview.NewBox()}
	bv.grid = board.Render(board.Props{})
	bv.Box.SetDrawFunc(bv.draw)
	return bv
}

// SetGrid replaces what is drawn on the next redraw.
func (bv *BoardView) SetGrid(g board.Grid) {
	bv.mu.Lock()
	bv.grid = g
	bv.mu.Unlock()
}

// SetASCII switches to letters for terminals without chess glyphs.
func (bv *BoardView) SetASCII(on bool) {
	bv.mu.Lock()
	bv.ascii = on
	bv.mu.Unlock()
}

// Cursor returns the keyboard cursor, placing it on e2 the first time.
func (bv *BoardView) Cursor() chessdto.Coord {
	bv.mu.Lock()
	defer bv.mu.Unlock()
	if bv.cursor == nil {
		c := chessdto.Coord{X: 4, Y: 1}
		bv.cursor = &c
	}
	return *bv.cursor
}

// MoveCursor shifts the cursor by dx files and dy ranks, staying on the board.
func (bv *BoardView) MoveCursor(dx, dy int) {
	c := bv.Cursor()
	bv.mu.Lock()
	defer bv.mu.Unlock()
	bv.cursor = &chessdto.Coord{X: clamp(c.X + dx), Y: clamp(c.Y + dy)}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v >= board.Size {
		return board.Size - 1
	}
	return v
}

// CellAt maps a screen position to the square drawn there.
func (bv *BoardView) CellAt(x, y int) (chessdto.Coord, bool) {
	bv.mu.Lock()
	ox, oy := bv.originX, bv.originY
	bv.mu.Unlock()
	return cellAt(ox, oy, x, y)
}

func cellAt(originX, originY, x, y int) (chessdto.Coord, bool) {
	col := x - originX - labelWidth
	row := y - originY
	if col < 0 || row < 0 || col >= board.Size*cellWidth || row >= board.Size {
		return chessdto.Coord{}, false
	}
	return chessdto.Coord{X: col / cellWidth, Y: board.Size - 1 - row}, true
}

func (bv *BoardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	bv.mu.Lock()
	defer bv.mu.Unlock()
	bv.originX, bv.originY = x, y

	labelStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for row := 0; row < board.Size; row++ {
		screen.SetContent(x, y+row, rune('1'+board.Size-1-row), nil, labelStyle)
		for col := 0; col < board.Size; col++ {
			cell := bv.grid[row][col]
			style := tcell.StyleDefault.Background(squareColor(cell, bv.cursor)).Foreground(pieceFG)
			left, right := cellRunes(cell, bv.ascii)
			px := x + labelWidth + col*cellWidth
			screen.SetContent(px, y+row, left, nil, style)
			screen.SetContent(px+1, y+row, right, nil, style)
		}
	}
	for col := 0; col < board.Size; col++ {
		screen.SetContent(x+labelWidth+col*cellWidth, y+board.Size, rune(board.FileLabel(col)[0]), nil, labelStyle)
	}
	return x, y + board.Size + 1, width, height - board.Size - 1
}

func squareColor(cell board.Cell, cursor *chessdto.Coord) tcell.Color {
	switch {
	case cursor != nil && *cursor == cell.Coord:
		return cursorBG
	case cell.Selected:
		return selectedBG
	case cell.Candidate:
		return candidateBG
	case cell.Shade == board.Dark:
		return darkBG
	default:
		return lightBG
	}
}

func cellRunes(cell board.Cell, ascii bool) (rune, rune) {
	if cell.Figure == nil {
		if cell.Candidate {
			return '·', ' '
		}
		return ' ', ' '
	}
	s := cell.Glyph
	if ascii {
		s = figure.Letter(cell.Figure.Colour, cell.Figure.Name)
	}
	for _, r := range s {
		return r, ' '
	}
	return '?', ' '
}
