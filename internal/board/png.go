package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options carries the text drawn above the board.
type Options struct {
	Title string
	Turn  string
}

type PNGRenderer interface {
	RenderPNG(ctx context.Context, g Grid, opts Options) ([]byte, error)
}

type svgRenderer struct {
	squareSize int
}

func NewPNGRenderer() PNGRenderer {
	return &svgRenderer{squareSize: 64}
}

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	backgroundColor     = color.RGBA{24, 26, 38, 255}
	selectedOverlay     = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	candidateDot        = color.NRGBA{R: 40, G: 110, B: 60, A: 170}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func (r *svgRenderer) RenderPNG(ctx context.Context, g Grid, opts Options) ([]byte, error) {
	const (
		sideMargin   = 28
		topMargin    = 84
		bottomMargin = 28
		panelHeight  = 26
		panelGap     = 8
		panelRadius  = 8
	)
	squareSize := r.squareSize
	boardSize := squareSize * Size
	origin := image.Point{X: sideMargin, Y: topMargin}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Chess"
	}
	titleRect := image.Rect(origin.X, 12, origin.X+boardSize, 12+panelHeight)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	if turn := strings.TrimSpace(opts.Turn); turn != "" {
		turnRect := image.Rect(origin.X, titleRect.Max.Y+panelGap, origin.X+boardSize, titleRect.Max.Y+panelGap+panelHeight)
		drawRoundedPanel(img, turnRect, panelRadius, hudPanelColor)
		drawCenteredString(drawer, turnRect, turn, hudTurnTextColor)
	}

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			cell := g[row][col]
			rect := squareRect(row, col, squareSize, origin)
			clr := lightSquare
			if cell.Shade == Dark {
				clr = darkSquare
			}
			imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Src)
			if cell.Selected {
				imagedraw.Draw(img, rect, image.NewUniform(selectedOverlay), image.Point{}, imagedraw.Over)
			}
			if cell.Figure != nil {
				piece, err := renderPieceImage(cell.Figure.Colour, cell.Figure.Name, squareSize)
				if err == nil {
					imagedraw.Draw(img, rect, piece, image.Point{}, imagedraw.Over)
				}
			}
			if cell.Candidate {
				center := image.Pt(rect.Min.X+squareSize/2, rect.Min.Y+squareSize/2)
				radius := squareSize / 7
				if cell.Figure != nil {
					center = image.Pt(rect.Max.X-squareSize/6, rect.Min.Y+squareSize/6)
					radius = squareSize / 10
				}
				drawDisc(img, center, radius, candidateDot)
			}
		}
	}

	drawCoordinates(drawer, squareSize, origin, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func squareRect(row, col, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawCoordinates(drawer *font.Drawer, squareSize int, origin image.Point, margin int) {
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	drawer.Src = image.NewUniform(coordinateTextColor)
	boardEnd := origin.Y + Size*squareSize
	for i := 0; i < Size; i++ {
		rankCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('1'+Size-1-i)), origin.X-margin/2, rankCenter+ascent/2)
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, FileLabel(i), fileCenter, boardEnd+ascent+4)
	}
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if img == nil || rect.Empty() {
		return
	}
	maxRadius := rect.Dx() / 2
	if r := rect.Dy() / 2; r < maxRadius {
		maxRadius = r
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	fill := image.NewUniform(clr)
	if radius <= 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, center := range corners {
		drawQuarterFill(img, center, radius, clr)
	}
}

// drawQuarterFill paints the disc around a corner centre, skipping pixels the
// straight bands already covered so translucent panels do not double blend.
func drawQuarterFill(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			if x == 0 || y == 0 {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if img == nil || !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 1 - srcA
	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(float64(sr)/257.0 + float64(dst.R)*inv),
		G: floatToUint8(float64(sg)/257.0 + float64(dst.G)*inv),
		B: floatToUint8(float64(sb)/257.0 + float64(dst.B)*inv),
		A: floatToUint8(srcA*255.0 + float64(dst.A)*inv),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
