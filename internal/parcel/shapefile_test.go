package parcel

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
)

type shpRecord struct {
	key   int
	code  string
	desc  string
	rings [][]shp.Point
}

// clockwise returns a closed clockwise ring (shapefile outer ring).
func clockwise(minX, minY, maxX, maxY float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY},
		{X: minX, Y: maxY},
		{X: maxX, Y: maxY},
		{X: maxX, Y: minY},
		{X: minX, Y: minY},
	}
}

// counterClockwise returns a closed counter-clockwise ring (shapefile hole).
func counterClockwise(minX, minY, maxX, maxY float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}
}

func newShpPolygon(rings [][]shp.Point) *shp.Polygon {
	var (
		parts  []int32
		points []shp.Point
	)
	for _, r := range rings {
		parts = append(parts, int32(len(points)))
		points = append(points, r...)
	}
	return &shp.Polygon{
		NumParts:  int32(len(parts)),
		NumPoints: int32(len(points)),
		Parts:     parts,
		Points:    points,
	}
}

// writeShapefile writes records to dir/name.shp with dBASE-truncated
// attribute names, the way ArcGIS exports the zoning layer.
func writeShapefile(t *testing.T, dir, name string, records []shpRecord) string {
	t.Helper()
	path := filepath.Join(dir, name+".shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.NumberField("SL_LAND_PR", 12),
		shp.StringField("INT_ZONE_C", 16),
		shp.StringField("INT_ZONE_D", 80),
	}))

	for _, rec := range records {
		row := int(w.Write(newShpPolygon(rec.rings)))
		require.NoError(t, w.WriteAttribute(row, 0, rec.key))
		require.NoError(t, w.WriteAttribute(row, 1, rec.code))
		require.NoError(t, w.WriteAttribute(row, 2, rec.desc))
	}
	w.Close()
	return path
}

func sampleRecords() []shpRecord {
	return []shpRecord{
		{
			key:   12345,
			code:  "GR2",
			desc:  "General Residential Subzone GR2",
			rings: [][]shp.Point{clockwise(18.40, -33.93, 18.41, -33.92)},
		},
		{
			key:  222,
			code: "OS3",
			desc: "Special Open Space",
			rings: [][]shp.Point{
				clockwise(18.50, -34.00, 18.60, -33.90),
				counterClockwise(18.54, -33.96, 18.56, -33.94),
				clockwise(18.70, -34.00, 18.71, -33.99),
			},
		},
	}
}

func TestReadShapefile(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "zoning", sampleRecords())

	features, err := ReadShapefile(path, DefaultFieldMap())
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, int64(12345), features[0].Key)
	assert.Equal(t, "GR2", features[0].ZoneCode)
	assert.Equal(t, "General Residential Subzone GR2", features[0].ZoneDescription)
	assert.Empty(t, features[0].SecondaryCode)

	mp, ok := features[1].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())

	os3 := features[1]
	assert.True(t, os3.Contains(coords.Point{Lat: -33.92, Lng: 18.52}))
	assert.False(t, os3.Contains(coords.Point{Lat: -33.95, Lng: 18.55}))
	assert.True(t, os3.Contains(coords.Point{Lat: -33.995, Lng: 18.705}))
}

func TestReadShapefile_DecimalKeyField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decimal.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.FloatField("SL_LAND_PR", 16, 3),
		shp.StringField("INT_ZONE_C", 16),
	}))
	row := int(w.Write(newShpPolygon([][]shp.Point{clockwise(18.40, -33.93, 18.41, -33.92)})))
	require.NoError(t, w.WriteAttribute(row, 0, 12345.0))
	require.NoError(t, w.WriteAttribute(row, 1, "GR2"))
	w.Close()

	features, err := ReadShapefile(path, DefaultFieldMap())
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, int64(12345), features[0].Key)
	assert.Equal(t, "GR2", features[0].ZoneCode)
}

func TestReadShapefile_Zip(t *testing.T) {
	dir := t.TempDir()
	writeShapefile(t, dir, "zoning", sampleRecords())

	zipPath := filepath.Join(t.TempDir(), "zoning.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		src, err := os.Open(filepath.Join(dir, "zoning"+ext))
		require.NoError(t, err)
		dst, err := zw.Create("coct_zoning/zoning" + ext)
		require.NoError(t, err)
		_, err = io.Copy(dst, src)
		require.NoError(t, err)
		require.NoError(t, src.Close())
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	features, err := ReadShapefile(zipPath, DefaultFieldMap())
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "OS3", features[1].ZoneCode)
}

func TestReadShapefile_MissingKeyField(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "zoning", sampleRecords())

	_, err := ReadShapefile(path, FieldMap{Key: "PARCEL_ID"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARCEL_ID")
}

func TestReadShapefile_ZipWithoutShp(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("no shapes here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	_, err = ReadShapefile(zipPath, DefaultFieldMap())
	assert.Error(t, err)
}

func TestSignedArea(t *testing.T) {
	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}

	assert.Less(t, signedArea(cw), 0.0)
	assert.Greater(t, signedArea(ccw), 0.0)
	assert.InDelta(t, 1.0, signedArea(ccw), 1e-9)
}
