package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PhelelaniM/UrbanMind/internal/config"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"SL_LAND_PRCL_KEY": 12345, "INT_ZONE_CODE": "GR2", "INT_ZONE_DESC": "General Residential Subzone GR2"},
      "geometry": {"type": "Polygon", "coordinates": [[[18.40, -33.93], [18.41, -33.93], [18.41, -33.92], [18.40, -33.92], [18.40, -33.93]]]}
    },
    {
      "type": "Feature",
      "properties": {"SL_LAND_PRCL_KEY": 111, "INT_ZONE_CODE": "SR1", "INT_ZONE_DESC": "Single Residential Zoning 1"},
      "geometry": {"type": "Polygon", "coordinates": [[[18.41, -33.93], [18.42, -33.93], [18.42, -33.92], [18.41, -33.92], [18.41, -33.93]]]}
    },
    {
      "type": "Feature",
      "properties": {"SL_LAND_PRCL_KEY": 112, "INT_ZONE_CODE": "SR1", "INT_ZONE_DESC": "Single Residential Zoning 1"},
      "geometry": {"type": "Polygon", "coordinates": [[[18.42, -33.93], [18.43, -33.93], [18.43, -33.92], [18.42, -33.92], [18.42, -33.93]]]}
    },
    {
      "type": "Feature",
      "properties": {"SL_LAND_PRCL_KEY": 900, "INT_ZONE_CODE": null, "INT_ZONE_DESC": null},
      "geometry": {"type": "Polygon", "coordinates": [[[18.44, -33.93], [18.45, -33.93], [18.45, -33.92], [18.44, -33.92], [18.44, -33.93]]]}
    }
  ]
}`

// testConfig writes the sample collection to a temp dir and returns a local
// file-source config pointing at it.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parcels.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0o644))

	c := &config.Config{}
	c.Parcels.Source = config.SourceFile
	c.Parcels.Paths = []string{path}
	c.Parcels.Table = parcel.DefaultTable
	c.Parcels.Concurrency = 2
	c.Parcels.Fields = parcel.DefaultFieldMap()
	c.Resolve.Strategy = config.StrategyLocal
	c.Remote.TimeoutSecs = 5
	c.Remote.RateLimit = 100
	c.Server.Port = 8080
	c.Server.CORSOrigins = []string{"*"}
	c.Server.RequestTimeoutSecs = 5
	c.Log.Format = "json"
	return c
}

// useConfig swaps the package-level config for the duration of a test.
func useConfig(t *testing.T, c *config.Config) {
	t.Helper()
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
}

func testEnv(t *testing.T) *lookupEnv {
	t.Helper()
	env, err := initLookup(context.Background(), testConfig(t), "lookup")
	require.NoError(t, err)
	return env
}
