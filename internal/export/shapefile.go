package export

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/htarver/tidesat/internal/geo"
)

// SaveAOIShapefile writes the AOI ring as a single-feature ESRI shapefile
// with the site name and centre stored as attributes. ESRI wants outer
// rings clockwise, the reverse of the GeoJSON winding.
func SaveAOIShapefile(path, siteName string, aoi geo.Polygon) error {
	if len(aoi) < 4 {
		return fmt.Errorf("AOI ring has %d points, need a closed rectangle", len(aoi))
	}

	writer, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("creating shapefile: %w", err)
	}
	defer writer.Close()

	fields := []shp.Field{
		shp.StringField("NAME", 50),
		shp.FloatField("CEN_LAT", 13, 8),
		shp.FloatField("CEN_LON", 13, 8),
	}
	if err := writer.SetFields(fields); err != nil {
		return fmt.Errorf("setting fields: %w", err)
	}

	ring := make([]shp.Point, len(aoi))
	for i, pt := range aoi {
		// reversed vertex order flips the winding to clockwise
		ring[len(aoi)-1-i] = shp.Point{X: pt.Lon, Y: pt.Lat}
	}

	poly := (*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring}))
	writer.Write(poly)

	center := aoi.Centroid()
	if err := writer.WriteAttribute(0, 0, siteName); err != nil {
		return fmt.Errorf("writing name attribute: %w", err)
	}
	if err := writer.WriteAttribute(0, 1, center.Lat); err != nil {
		return fmt.Errorf("writing latitude attribute: %w", err)
	}
	if err := writer.WriteAttribute(0, 2, center.Lon); err != nil {
		return fmt.Errorf("writing longitude attribute: %w", err)
	}

	return writePRJ(strings.TrimSuffix(path, ".shp") + ".prj")
}
