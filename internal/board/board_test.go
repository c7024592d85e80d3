package board

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

func sampleFigures() []chessdto.Figure {
	return []chessdto.Figure{
		{ID: 1, PositionX: 4, PositionY: 0, Colour: chessdto.White, Name: chessdto.King},
		{ID: 2, PositionX: 4, PositionY: 1, Colour: chessdto.White, Name: chessdto.Pawn},
		{ID: 3, PositionX: 4, PositionY: 7, Colour: chessdto.Black, Name: chessdto.King},
	}
}

func TestRenderPlacesOneGlyphPerOccupiedCell(t *testing.T) {
	g := Render(Props{Figures: sampleFigures()})
	occupied := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			cell := g[row][col]
			if cell.Figure != nil {
				occupied++
				if cell.Glyph == "" || !cell.Clickable {
					t.Fatalf("occupied cell %v missing glyph or clickability", cell.Coord)
				}
			} else if cell.Glyph != "" || cell.Clickable {
				t.Fatalf("empty cell %v has glyph %q", cell.Coord, cell.Glyph)
			}
		}
	}
	if occupied != 3 {
		t.Fatalf("expected 3 occupied cells, got %d", occupied)
	}
	if got := g.At(chessdto.Coord{X: 4, Y: 7}).Glyph; got != "♚" {
		t.Fatalf("black king glyph = %q", got)
	}
}

func TestRenderRowOrderAndShade(t *testing.T) {
	g := Render(Props{})
	if g[0][0].Coord != (chessdto.Coord{X: 0, Y: 7}) {
		t.Fatalf("first row should be y=7, got %v", g[0][0].Coord)
	}
	if g[7][0].Coord != (chessdto.Coord{X: 0, Y: 0}) {
		t.Fatalf("last row should be y=0, got %v", g[7][0].Coord)
	}
	if g.At(chessdto.Coord{X: 0, Y: 0}).Shade != Light {
		t.Fatalf("(0,0) should be light")
	}
	if g.At(chessdto.Coord{X: 1, Y: 0}).Shade != Dark {
		t.Fatalf("(1,0) should be dark")
	}
	if Light.String() != "white" || Dark.String() != "black" {
		t.Fatalf("unexpected shade names")
	}
}

func TestRenderIgnoresDuplicatesAndOffBoard(t *testing.T) {
	figs := []chessdto.Figure{
		{ID: 1, PositionX: 2, PositionY: 2, Colour: chessdto.White, Name: chessdto.Rook},
		{ID: 2, PositionX: 2, PositionY: 2, Colour: chessdto.Black, Name: chessdto.Queen},
		{ID: 3, PositionX: 8, PositionY: 0, Colour: chessdto.Black, Name: chessdto.Queen},
		{ID: 4, PositionX: -1, PositionY: 3, Colour: chessdto.Black, Name: chessdto.Queen},
	}
	g := Render(Props{Figures: figs})
	cell := g.At(chessdto.Coord{X: 2, Y: 2})
	if cell.Figure == nil || cell.Figure.ID != 1 {
		t.Fatalf("first figure should win the square, got %+v", cell.Figure)
	}
	count := 0
	for row := range g {
		for col := range g[row] {
			if g[row][col].Figure != nil {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected 1 occupied cell, got %d", count)
	}
}

func TestRenderMarksSelectionAndCandidates(t *testing.T) {
	sel := chessdto.Coord{X: 4, Y: 1}
	g := Render(Props{
		Figures:    sampleFigures(),
		Selected:   &sel,
		Candidates: []chessdto.Coord{{X: 4, Y: 2}, {X: 4, Y: 3}, {X: 9, Y: 9}},
	})
	if !g.At(sel).Selected {
		t.Fatalf("selected cell not marked")
	}
	if !g.At(chessdto.Coord{X: 4, Y: 2}).Candidate || !g.At(chessdto.Coord{X: 4, Y: 3}).Candidate {
		t.Fatalf("candidates not marked")
	}
	if g.At(chessdto.Coord{X: 4, Y: 4}).Candidate {
		t.Fatalf("unexpected candidate at (4,4)")
	}
}

func TestClickIntents(t *testing.T) {
	sel := chessdto.Coord{X: 4, Y: 1}
	p := Props{Figures: sampleFigures(), Selected: &sel, Candidates: []chessdto.Coord{{X: 4, Y: 2}}}

	in := Click(p, chessdto.Coord{X: 4, Y: 2})
	if in.Kind != IntentMove || in.From != sel || in.To != (chessdto.Coord{X: 4, Y: 2}) {
		t.Fatalf("candidate click = %+v", in)
	}
	if in := Click(p, sel); in.Kind != IntentClear {
		t.Fatalf("selected click = %v", in.Kind)
	}
	empty := chessdto.Coord{X: 0, Y: 5}
	if in := Click(p, empty); in.Kind != IntentSelect || in.To != empty {
		t.Fatalf("other click = %+v", in)
	}
}

func TestClickCandidateWithoutSelectionSelects(t *testing.T) {
	p := Props{Candidates: []chessdto.Coord{{X: 4, Y: 2}}}
	if in := Click(p, chessdto.Coord{X: 4, Y: 2}); in.Kind != IntentSelect {
		t.Fatalf("expected select, got %v", in.Kind)
	}
}

func TestFigureAt(t *testing.T) {
	figs := sampleFigures()
	if f := FigureAt(figs, chessdto.Coord{X: 4, Y: 1}); f == nil || f.ID != 2 {
		t.Fatalf("FigureAt returned %+v", f)
	}
	if f := FigureAt(figs, chessdto.Coord{X: 0, Y: 0}); f != nil {
		t.Fatalf("expected nil, got %+v", f)
	}
}

func TestRenderText(t *testing.T) {
	sel := chessdto.Coord{X: 4, Y: 1}
	out := RenderText(Render(Props{
		Figures:    sampleFigures(),
		Selected:   &sel,
		Candidates: []chessdto.Coord{{X: 4, Y: 2}},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "8 ") || !strings.HasPrefix(lines[7], "1 ") {
		t.Fatalf("rank labels out of order:\n%s", out)
	}
	if !strings.Contains(lines[6], "[♙]") {
		t.Fatalf("selection bracket missing on rank 2: %q", lines[6])
	}
	if !strings.Contains(lines[5], " * ") {
		t.Fatalf("candidate marker missing on rank 3: %q", lines[5])
	}
	if !strings.Contains(lines[8], "a") || !strings.Contains(lines[8], "h") {
		t.Fatalf("file labels missing: %q", lines[8])
	}
}

func TestRenderPNG(t *testing.T) {
	sel := chessdto.Coord{X: 4, Y: 1}
	g := Render(Props{Figures: sampleFigures(), Selected: &sel, Candidates: []chessdto.Coord{{X: 4, Y: 2}}})
	data, err := NewPNGRenderer().RenderPNG(context.Background(), g, Options{Title: "Game #1", Turn: "white to move"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() < Size*64 || img.Bounds().Dy() < Size*64 {
		t.Fatalf("image too small: %v", img.Bounds())
	}
}

func TestRenderPNGCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGRenderer().RenderPNG(ctx, Render(Props{}), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPieceAssetsLoad(t *testing.T) {
	for _, kind := range chessdto.Kinds {
		for _, side := range []chessdto.Side{chessdto.White, chessdto.Black} {
			if _, err := renderPieceImage(side, kind, 32); err != nil {
				t.Fatalf("piece %s %s: %v", side, kind, err)
			}
		}
	}
}
