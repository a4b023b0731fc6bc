package parcel

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// dbfNameLimit is the maximum attribute name length in a .dbf table.
const dbfNameLimit = 10

// ReadShapefile loads parcel features from a .shp file (with its .dbf
// sidecar) or from a .zip archive containing one.
func ReadShapefile(path string, fields FieldMap) ([]Feature, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		dir, err := os.MkdirTemp("", "urbanmind-shp-*")
		if err != nil {
			return nil, eris.Wrap(err, "parcel: create extract dir")
		}
		defer func() { _ = os.RemoveAll(dir) }()

		if err := extractZIP(path, dir); err != nil {
			return nil, eris.Wrapf(err, "parcel: extract %s", path)
		}
		shpPath, err := findFileByExt(dir, ".shp")
		if err != nil {
			return nil, eris.Wrapf(err, "parcel: find .shp in %s", path)
		}
		path = shpPath
	}
	return readShp(path, fields.withDefaults())
}

func readShp(path string, fields FieldMap) ([]Feature, error) {
	log := zap.L().With(zap.String("component", "parcel.shapefile"))

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	keyIdx := fieldIndex(reader, fields.Key)
	if keyIdx < 0 {
		return nil, eris.Errorf("parcel: shapefile %s has no %s field", path, fields.Key)
	}
	codeIdx := fieldIndex(reader, fields.ZoneCode)
	descIdx := fieldIndex(reader, fields.ZoneDescription)
	secIdx := fieldIndex(reader, fields.SecondaryCode)

	var features []Feature
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		key, ok := parseKeyString(attribute(reader, keyIdx))
		if !ok {
			log.Warn("skipping record without parcel key", zap.Int("record", n))
			skipped++
			continue
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			log.Warn("skipping record with empty polygon", zap.Int("record", n), zap.Int64("parcel_key", key))
			skipped++
			continue
		}

		features = append(features, Feature{
			Key:             key,
			ZoneCode:        attribute(reader, codeIdx),
			ZoneDescription: attribute(reader, descIdx),
			SecondaryCode:   attribute(reader, secIdx),
			Geometry:        g,
		})
	}

	log.Info("shapefile read",
		zap.String("path", path),
		zap.Int("features", len(features)),
		zap.Int("skipped", skipped),
	)
	return features, nil
}

// fieldIndex returns the index of a named field, or -1. Names longer than the
// dBASE limit also match their truncated form.
func fieldIndex(reader *shp.Reader, name string) int {
	short := name
	if len(short) > dbfNameLimit {
		short = short[:dbfNameLimit]
	}
	for i, f := range reader.Fields() {
		got := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(got, name) || strings.EqualFold(got, short) {
			return i
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// polygonToMultiPolygon groups shapefile rings into polygons. Clockwise rings
// start a new polygon; counter-clockwise rings are holes of the current one.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current != nil && current.NumLinearRings() > 0 {
			if err := mp.Push(current); err != nil {
				zap.L().Debug("parcel: skipping malformed polygon part", zap.Error(err))
			}
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedArea(flat) <= 0 || current == nil {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("parcel: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace sum over an XY ring; negative means clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}

// extractZIP extracts a ZIP archive into destDir, flattening directories.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
