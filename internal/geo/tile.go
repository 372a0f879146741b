package geo

import (
	"fmt"
	"math"
)

// PreviewZoom is the zoom level used for imagery preview tiles.
const PreviewZoom = 17

// Tile identifies a web-mercator tile.
type Tile struct {
	Zoom int
	X    int
	Y    int
}

// TileForPoint returns the tile containing p at the given zoom.
func TileForPoint(p Point, zoom int) Tile {
	n := math.Pow(2, float64(zoom))

	x := int((p.Lon + 180) / 360 * n)

	latRad := p.Lat * math.Pi / 180
	y := int((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)

	// Clamp for points at the map edge.
	max := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}

	return Tile{Zoom: zoom, X: x, Y: y}
}

// Bounds returns the geographic bounding box of the tile.
func (t Tile) Bounds() Bounds {
	n := math.Pow(2, float64(t.Zoom))

	west := float64(t.X)/n*360 - 180
	east := float64(t.X+1)/n*360 - 180
	north := mercatorToLat(math.Pi * (1 - 2*float64(t.Y)/n))
	south := mercatorToLat(math.Pi * (1 - 2*float64(t.Y+1)/n))

	return Bounds{MinLat: south, MinLon: west, MaxLat: north, MaxLon: east}
}

// String renders the tile as z/x/y.
func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// mercatorToLat converts a web-mercator Y angle to latitude degrees.
func mercatorToLat(mercatorY float64) float64 {
	return 180 / math.Pi * math.Atan(math.Sinh(mercatorY))
}
