package board

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	side chessdto.Side
	kind chessdto.Kind
	size int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

var pieceAssetNames = map[chessdto.Kind]string{
	chessdto.King:   "K",
	chessdto.Queen:  "Q",
	chessdto.Rook:   "R",
	chessdto.Bishop: "B",
	chessdto.Knight: "N",
	chessdto.Pawn:   "P",
}

func renderPieceImage(side chessdto.Side, kind chessdto.Kind, size int) (image.Image, error) {
	if side != chessdto.Black {
		side = chessdto.White
	}
	key := pieceCacheKey{side: side, kind: kind, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	name, ok := pieceAssetNames[kind]
	if !ok {
		return nil, fmt.Errorf("no piece asset for kind %q", kind)
	}
	data, err := pieceFiles.ReadFile("assets/pieces/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(tintSVG(data, side)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

// tintSVG fills the FILL/STROKE placeholders of a piece template for one side.
func tintSVG(svg []byte, side chessdto.Side) []byte {
	fill, stroke := "#ffffff", "#000000"
	if side == chessdto.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	out := bytes.ReplaceAll(svg, []byte(`"FILL"`), []byte(`"`+fill+`"`))
	return bytes.ReplaceAll(out, []byte(`"STROKE"`), []byte(`"`+stroke+`"`))
}
