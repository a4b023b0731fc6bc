package parcel

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/db"
)

// DefaultTable is the PostGIS table read by PostgresSource.
const DefaultTable = "public.zoning_parcels"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads the collection from a PostGIS table once. Load order
// is objectid ascending.
type PostgresSource struct {
	pool  db.Pool
	table string
}

// NewPostgresSource creates a PostgresSource. An empty table uses DefaultTable.
func NewPostgresSource(pool db.Pool, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{pool: pool, table: table}
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) (*Collection, error) {
	if !tableNamePattern.MatchString(s.table) {
		return nil, eris.Errorf("parcel: invalid table name %q", s.table)
	}
	log := zap.L().With(zap.String("component", "parcel.postgres"), zap.String("table", s.table))

	var count int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&count); err != nil {
		return nil, eris.Wrapf(err, "parcel: count %s", s.table)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT
			sl_land_prcl_key,
			COALESCE(int_zone_code, ''),
			COALESCE(int_zone_desc, ''),
			COALESCE(sg26_code, ''),
			ST_AsGeoJSON(geom)
		FROM %s
		WHERE geom IS NOT NULL
		ORDER BY objectid`, s.table))
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: query %s", s.table)
	}
	defer rows.Close()

	features := make([]Feature, 0, count)
	var skipped int
	for rows.Next() {
		var (
			f   Feature
			raw string
		)
		if err := rows.Scan(&f.Key, &f.ZoneCode, &f.ZoneDescription, &f.SecondaryCode, &raw); err != nil {
			return nil, eris.Wrap(err, "parcel: scan row")
		}
		g, err := decodeGeometry([]byte(raw))
		if err != nil {
			log.Warn("skipping row with unusable geometry", zap.Int64("parcel_key", f.Key), zap.Error(err))
			skipped++
			continue
		}
		f.Geometry = g
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "parcel: iterate rows")
	}

	log.Info("parcel collection loaded",
		zap.Int("features", len(features)),
		zap.Int("skipped", skipped),
	)
	return NewCollection(features), nil
}

// Store replaces the table's contents with features. objectid follows slice
// order so a later Load returns the features in the same sequence.
func Store(ctx context.Context, pool db.Beginner, table string, features []Feature) (int64, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return 0, eris.Errorf("parcel: invalid table name %q", table)
	}

	rows := make([][]any, 0, len(features))
	for i, f := range features {
		raw, err := geojson.Marshal(f.Geometry)
		if err != nil {
			return 0, eris.Wrapf(err, "parcel: encode geometry for key %d", f.Key)
		}
		rows = append(rows, []any{int64(i + 1), f.Key, f.ZoneCode, f.ZoneDescription, f.SecondaryCode, string(raw)})
	}

	n, err := db.ReplaceAll(ctx, pool, db.ReplaceConfig{
		Table: table,
		Setup: []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				objectid bigint PRIMARY KEY,
				sl_land_prcl_key bigint NOT NULL,
				int_zone_code text,
				int_zone_desc text,
				sg26_code text,
				geom geometry(MultiPolygon, 4326)
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_geom_idx ON %s USING gist (geom)`, indexPrefix(table), table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_key_idx ON %s (sl_land_prcl_key)`, indexPrefix(table), table),
		},
		StageCols:  []string{"objectid", "sl_land_prcl_key", "int_zone_code", "int_zone_desc", "sg26_code", "geojson"},
		StageTypes: []string{"bigint", "bigint", "text", "text", "text", "text"},
		TargetCols: []string{"objectid", "sl_land_prcl_key", "int_zone_code", "int_zone_desc", "sg26_code", "geom"},
		SelectExprs: []string{
			"objectid", "sl_land_prcl_key", "int_zone_code", "int_zone_desc", "sg26_code",
			"ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON(geojson), 4326))",
		},
	}, rows)
	if err != nil {
		return 0, err
	}

	zap.L().Info("parcel collection stored",
		zap.String("component", "parcel.postgres"),
		zap.String("table", table),
		zap.Int64("rows", n),
	)
	return n, nil
}

// indexPrefix drops the schema from a table name for use in index names.
func indexPrefix(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
