// Package geo provides the geographic primitives used across the
// application: points, AOI footprint computation, bounding boxes,
// web-mercator tile math, and great-circle distance.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// TileEdgeMeters is the ground edge length of a single imagery tile:
	// a zoom-17 web-mercator tile at the equator (40075016.686 m / 2^17).
	TileEdgeMeters = 305.75

	// MetersPerDegreeLat is the WGS84 approximation for one degree of
	// latitude, treated as latitude-independent.
	MetersPerDegreeLat = 111320.0

	// MinGridSize and MaxGridSize bound the supported N x N tile grids.
	MinGridSize = 1
	MaxGridSize = 9

	// maxCosLat caps the latitude used for the longitude scale factor so
	// footprints at the exact poles stay finite.
	maxCosLat = 89.9
)

// ErrInvalidArgument reports geographic input outside the supported range.
var ErrInvalidArgument = errors.New("invalid argument")

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is an axis-aligned geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p falls inside the box.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Polygon is a closed ring of vertices, first and last equal.
type Polygon []Point

// ComputeAOI converts a center point and an N x N tile grid size into the
// rectangular footprint covering those tiles. The east-west extent widens
// with |latitude| because a degree of longitude shrinks toward the poles.
func ComputeAOI(centerLat, centerLon float64, gridSize int) (Polygon, error) {
	if centerLat < -90 || centerLat > 90 {
		return nil, fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidArgument, centerLat)
	}
	if centerLon < -180 || centerLon > 180 {
		return nil, fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidArgument, centerLon)
	}
	if gridSize < MinGridSize || gridSize > MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d out of range [%d, %d]", ErrInvalidArgument, gridSize, MinGridSize, MaxGridSize)
	}

	halfM := float64(gridSize) * TileEdgeMeters / 2

	// Clamp the scale latitude so cos() never reaches zero at the poles.
	scaleLat := centerLat
	if scaleLat > maxCosLat {
		scaleLat = maxCosLat
	} else if scaleLat < -maxCosLat {
		scaleLat = -maxCosLat
	}

	latDelta := halfM / MetersPerDegreeLat
	lonDelta := halfM / (MetersPerDegreeLat * math.Cos(scaleLat*math.Pi/180))

	return Polygon{
		{Lat: centerLat - latDelta, Lon: centerLon - lonDelta},
		{Lat: centerLat - latDelta, Lon: centerLon + lonDelta},
		{Lat: centerLat + latDelta, Lon: centerLon + lonDelta},
		{Lat: centerLat + latDelta, Lon: centerLon - lonDelta},
		{Lat: centerLat - latDelta, Lon: centerLon - lonDelta},
	}, nil
}

// Bounds returns the bounding box of the ring.
func (p Polygon) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: p[0].Lat, MaxLat: p[0].Lat,
		MinLon: p[0].Lon, MaxLon: p[0].Lon,
	}
	for _, pt := range p[1:] {
		b.MinLat = math.Min(b.MinLat, pt.Lat)
		b.MaxLat = math.Max(b.MaxLat, pt.Lat)
		b.MinLon = math.Min(b.MinLon, pt.Lon)
		b.MaxLon = math.Max(b.MaxLon, pt.Lon)
	}
	return b
}

// Centroid averages the distinct vertices, excluding the closing one.
func (p Polygon) Centroid() Point {
	if len(p) < 2 {
		if len(p) == 1 {
			return p[0]
		}
		return Point{}
	}
	ring := p[:len(p)-1]
	var lat, lon float64
	for _, pt := range ring {
		lat += pt.Lat
		lon += pt.Lon
	}
	n := float64(len(ring))
	return Point{Lat: lat / n, Lon: lon / n}
}

// GeoJSONPolygon is the GeoJSON geometry object for a polygon. Coordinates
// are [lon, lat] pairs in a single outer ring.
type GeoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// GeoJSON serializes the ring as a GeoJSON Polygon geometry.
func (p Polygon) GeoJSON() GeoJSONPolygon {
	ring := make([][2]float64, len(p))
	for i, pt := range p {
		ring[i] = [2]float64{pt.Lon, pt.Lat}
	}
	return GeoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{ring},
	}
}

// DistanceKM returns the great-circle distance between two points.
func DistanceKM(a, b Point) float64 {
	const earthRadiusKM = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
