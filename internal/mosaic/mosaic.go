// Package mosaic assembles scene preview tiles into a single
// georeferenced image.
package mosaic

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/planet"
)

const (
	// TileSize is the pixel edge of one server tile.
	TileSize = 256

	// FullSceneSide is the grid side used for the zoomed-out full scene view.
	FullSceneSide = 15
)

// placeholder fill for tiles the server could not render
var missingTileGray = color.RGBA{200, 200, 200, 255}

// GridSide converts an AOI grid size to the mosaic side in tiles. Even
// sizes have no centre tile, so they round up to the next odd count.
func GridSide(gridSize int) int {
	return 2*(gridSize/2) + 1
}

// Mosaic is a composed preview image with its geographic footprint.
type Mosaic struct {
	Image  *image.RGBA
	Side   int        // tiles per side
	NW     geo.Tile   // top-left tile of the grid
	Bounds geo.Bounds // geographic extent of the image
	Center geo.Point  // AOI centre the grid was built around
	Failed int        // tiles that could not be fetched
}

// Builder fetches tile grids and composes them into mosaics.
type Builder struct {
	tiles       planet.TileClient
	concurrency int
}

// NewBuilder creates a mosaic builder on top of a tile client.
func NewBuilder(tiles planet.TileClient) *Builder {
	return &Builder{
		tiles:       tiles,
		concurrency: 8,
	}
}

// Build fetches the tile grid centred on the AOI and composes it. At
// least one tile must arrive, a fully failed grid is an error.
func (b *Builder) Build(ctx context.Context, itemType, itemID string, center geo.Point, gridSize int) (*Mosaic, error) {
	return b.build(ctx, itemType, itemID, center, GridSide(gridSize))
}

// BuildFullScene fetches the wider fixed grid used for whole scene context.
func (b *Builder) BuildFullScene(ctx context.Context, itemType, itemID string, center geo.Point) (*Mosaic, error) {
	return b.build(ctx, itemType, itemID, center, FullSceneSide)
}

func (b *Builder) build(ctx context.Context, itemType, itemID string, center geo.Point, side int) (*Mosaic, error) {
	centerTile := geo.TileForPoint(center, geo.PreviewZoom)
	offset := side / 2
	nw := geo.Tile{Zoom: geo.PreviewZoom, X: centerTile.X - offset, Y: centerTile.Y - offset}

	images := make([]image.Image, side*side)

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.concurrency)
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			wg.Add(1)
			go func(row, col int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				tile := geo.Tile{Zoom: geo.PreviewZoom, X: nw.X + col, Y: nw.Y + row}
				data, err := b.tiles.FetchTile(ctx, itemType, itemID, tile)
				if err != nil {
					return
				}
				img, err := png.Decode(bytes.NewReader(data))
				if err != nil {
					return
				}
				images[row*side+col] = img
			}(row, col)
		}
	}
	wg.Wait()

	canvas := image.NewRGBA(image.Rect(0, 0, side*TileSize, side*TileSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(missingTileGray), image.Point{}, draw.Src)

	failed := 0
	for i, img := range images {
		if img == nil {
			failed++
			continue
		}
		x := (i % side) * TileSize
		y := (i / side) * TileSize
		rect := image.Rect(x, y, x+TileSize, y+TileSize)
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Src)
	}

	if failed == side*side {
		return nil, fmt.Errorf("no tiles could be fetched for %s", itemID)
	}

	se := geo.Tile{Zoom: geo.PreviewZoom, X: nw.X + side - 1, Y: nw.Y + side - 1}
	nwBounds := nw.Bounds()
	seBounds := se.Bounds()

	return &Mosaic{
		Image: canvas,
		Side:  side,
		NW:    nw,
		Bounds: geo.Bounds{
			MinLat: seBounds.MinLat,
			MinLon: nwBounds.MinLon,
			MaxLat: nwBounds.MaxLat,
			MaxLon: seBounds.MaxLon,
		},
		Center: center,
		Failed: failed,
	}, nil
}

// PixelSize returns the geographic size of one pixel as (lonPerPx, latPerPx).
// The latitude step is negative since pixel rows grow southward.
func (m *Mosaic) PixelSize() (float64, float64) {
	w := float64(m.Image.Bounds().Dx())
	h := float64(m.Image.Bounds().Dy())
	return (m.Bounds.MaxLon - m.Bounds.MinLon) / w, (m.Bounds.MinLat - m.Bounds.MaxLat) / h
}

// MarkCenter draws a crosshair on the AOI centre so the reviewer can spot
// the survey target. Call on a copy when a clean export is also needed.
func (m *Mosaic) MarkCenter() {
	lonPerPx, latPerPx := m.PixelSize()
	px := int((m.Center.Lon - m.Bounds.MinLon) / lonPerPx)
	py := int((m.Center.Lat - m.Bounds.MaxLat) / latPerPx)

	red := color.RGBA{220, 30, 30, 255}
	const arm = 12
	b := m.Image.Bounds()
	for d := -arm; d <= arm; d++ {
		if d >= -3 && d <= 3 {
			continue // leave the target itself unobscured
		}
		if x := px + d; x >= b.Min.X && x < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
			m.Image.SetRGBA(x, py, red)
		}
		if y := py + d; y >= b.Min.Y && y < b.Max.Y && px >= b.Min.X && px < b.Max.X {
			m.Image.SetRGBA(px, y, red)
		}
	}
}

// Clone returns a deep copy so markers do not leak into exports.
func (m *Mosaic) Clone() *Mosaic {
	dup := *m
	dup.Image = image.NewRGBA(m.Image.Bounds())
	copy(dup.Image.Pix, m.Image.Pix)
	return &dup
}

// EncodePNG writes the mosaic as a PNG stream.
func (m *Mosaic) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.Image)
}
