package parcel

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// FieldMap names the source attributes that carry each feature property.
type FieldMap struct {
	Key             string `yaml:"key" mapstructure:"key"`
	ZoneCode        string `yaml:"zone_code" mapstructure:"zone_code"`
	ZoneDescription string `yaml:"zone_description" mapstructure:"zone_description"`
	SecondaryCode   string `yaml:"secondary_code" mapstructure:"secondary_code"`
}

// DefaultFieldMap matches the City of Cape Town zoning layer.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Key:             "SL_LAND_PRCL_KEY",
		ZoneCode:        "INT_ZONE_CODE",
		ZoneDescription: "INT_ZONE_DESC",
		SecondaryCode:   "SG26_CODE",
	}
}

// withDefaults fills empty names from DefaultFieldMap.
func (m FieldMap) withDefaults() FieldMap {
	d := DefaultFieldMap()
	if m.Key == "" {
		m.Key = d.Key
	}
	if m.ZoneCode == "" {
		m.ZoneCode = d.ZoneCode
	}
	if m.ZoneDescription == "" {
		m.ZoneDescription = d.ZoneDescription
	}
	if m.SecondaryCode == "" {
		m.SecondaryCode = d.SecondaryCode
	}
	return m
}

type rawFeatureCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// rawFeature keeps geometry undecoded so that go-geom handles it, and so an
// arbitrary "id" member cannot break decoding.
type rawFeature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// DecodeGeoJSON reads a FeatureCollection and returns its parcel features in
// document order. Features without a usable key or polygonal geometry are
// skipped and logged.
func DecodeGeoJSON(r io.Reader, fields FieldMap) ([]Feature, error) {
	fields = fields.withDefaults()
	log := zap.L().With(zap.String("component", "parcel.geojson"))

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fc rawFeatureCollection
	if err := dec.Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "parcel: decode geojson")
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, eris.Errorf("parcel: expected FeatureCollection, got %q", fc.Type)
	}

	features := make([]Feature, 0, len(fc.Features))
	var skipped int
	for i, rf := range fc.Features {
		key, ok := parseKey(rf.Properties[fields.Key])
		if !ok {
			log.Warn("skipping feature without parcel key", zap.Int("index", i))
			skipped++
			continue
		}

		g, err := decodeGeometry(rf.Geometry)
		if err != nil {
			log.Warn("skipping feature with unusable geometry",
				zap.Int("index", i),
				zap.Int64("parcel_key", key),
				zap.Error(err),
			)
			skipped++
			continue
		}

		features = append(features, Feature{
			Key:             key,
			ZoneCode:        stringProp(rf.Properties[fields.ZoneCode]),
			ZoneDescription: stringProp(rf.Properties[fields.ZoneDescription]),
			SecondaryCode:   stringProp(rf.Properties[fields.SecondaryCode]),
			Geometry:        g,
		})
	}

	if skipped > 0 {
		log.Info("geojson decoded with skipped features",
			zap.Int("features", len(features)),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

// decodeGeometry accepts Polygon and MultiPolygon only.
func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, eris.New("missing geometry")
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrap(err, "decode geometry")
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return g, nil
	default:
		return nil, eris.Errorf("unsupported geometry %T", g)
	}
}

// parseKey accepts JSON numbers and numeric strings. Fractional values and
// values outside the int64 range are rejected rather than truncated.
func parseKey(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		return parseKeyString(x.String())
	case float64:
		return floatKey(x)
	case string:
		return parseKeyString(x)
	default:
		return 0, false
	}
}

// parseKeyString reads "12345" as well as integral decimals such as
// "12345.000", the form DBF numeric fields with decimals take.
func parseKeyString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatKey(f)
}

// floatKey converts an integral float inside [MinInt64, MaxInt64).
// float64(math.MaxInt64) rounds up to 2^63, hence the open upper bound.
func floatKey(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func stringProp(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

// EncodeGeoJSON writes features as a FeatureCollection. extra, when non-nil,
// adds properties per feature.
func EncodeGeoJSON(features []Feature, fields FieldMap, extra func(Feature) map[string]any) ([]byte, error) {
	fields = fields.withDefaults()
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	for _, f := range features {
		props := map[string]any{
			fields.Key:             f.Key,
			fields.ZoneCode:        f.ZoneCode,
			fields.ZoneDescription: f.ZoneDescription,
			fields.SecondaryCode:   f.SecondaryCode,
		}
		if extra != nil {
			for k, v := range extra(f) {
				props[k] = v
			}
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   f.Geometry,
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "parcel: encode geojson")
	}
	return data, nil
}
