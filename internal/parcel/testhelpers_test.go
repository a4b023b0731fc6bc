package parcel

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const fixturePath = "testdata/parcels.geojson"

// loadFixture decodes the shared GeoJSON fixture.
func loadFixture(t *testing.T) []Feature {
	t.Helper()
	f, err := os.Open(fixturePath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	features, err := DecodeGeoJSON(f, DefaultFieldMap())
	require.NoError(t, err)
	return features
}

// square builds an axis-aligned polygon from min/max lon/lat.
func square(minLng, minLat, maxLng, maxLat float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		minLng, minLat,
		maxLng, minLat,
		maxLng, maxLat,
		minLng, maxLat,
		minLng, minLat,
	}, []int{10})
}
