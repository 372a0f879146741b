package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/htarver/tidesat/internal/mosaic"
)

// SaveMosaicPNG writes the mosaic as a PNG beside a .pgw world file so
// GIS tools can place it.
func SaveMosaicPNG(path string, m *mosaic.Mosaic) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, m.Image); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return writeWorldFile(WorldFilePath(path), m)
}

// SaveMosaicTIFF writes the mosaic as an LZW-compressed TIFF beside a
// .tfw world file and a .prj declaring WGS84, which together carry the
// georeference GIS tools expect.
func SaveMosaicTIFF(path string, m *mosaic.Mosaic) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	opts := &tiff.Options{Compression: tiff.LZW, Predictor: true}
	if err := tiff.Encode(f, m.Image, opts); err != nil {
		return fmt.Errorf("encoding tiff: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := writeWorldFile(WorldFilePath(path), m); err != nil {
		return err
	}
	return writePRJ(strings.TrimSuffix(path, filepath.Ext(path)) + ".prj")
}

// wgs84WKT is the ESRI well-known text for EPSG:4326.
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

func writePRJ(path string) error {
	if err := os.WriteFile(path, []byte(wgs84WKT), 0o644); err != nil {
		return fmt.Errorf("writing prj file: %w", err)
	}
	return nil
}

// WorldFilePath derives the sidecar name from the image name, following
// the first-letter last-letter convention (.tif -> .tfw, .png -> .pgw).
func WorldFilePath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	base := strings.TrimSuffix(imagePath, ext)
	if len(ext) >= 3 {
		e := strings.TrimPrefix(ext, ".")
		return base + "." + string(e[0]) + string(e[len(e)-1]) + "w"
	}
	return base + ".wld"
}

// writeWorldFile emits the six-line affine transform. Lines five and six
// hold the centre of the top-left pixel, not its corner.
func writeWorldFile(path string, m *mosaic.Mosaic) error {
	lonPerPx, latPerPx := m.PixelSize()

	originX := m.Bounds.MinLon + lonPerPx/2
	originY := m.Bounds.MaxLat + latPerPx/2

	content := fmt.Sprintf("%.12f\n0.0\n0.0\n%.12f\n%.12f\n%.12f\n",
		lonPerPx, latPerPx, originX, originY)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing world file: %w", err)
	}
	return nil
}
