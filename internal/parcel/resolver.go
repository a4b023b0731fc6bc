package parcel

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
)

// Result is a resolved parcel: where it is and how it is zoned.
type Result struct {
	Location        coords.Point
	ZoneCode        string
	ZoneDescription string
	ParcelKey       *int64
}

// Resolver resolves identifiers to parcels. Both methods return ErrNotFound
// when nothing matches; remote implementations may also return ErrTransport.
type Resolver interface {
	ResolveByKey(ctx context.Context, key string) (*Result, error)
	ResolveByCoordinates(ctx context.Context, lat, lng float64) (*Result, error)
}

// LocalResolver resolves against an in-memory Collection.
type LocalResolver struct {
	parcels *Collection
}

// NewLocalResolver creates a resolver over parcels.
func NewLocalResolver(parcels *Collection) *LocalResolver {
	return &LocalResolver{parcels: parcels}
}

// ResolveByKey parses key as an integer and returns the first feature with
// that key. The location is the centre of the feature's envelope.
func (r *LocalResolver) ResolveByKey(_ context.Context, key string) (*Result, error) {
	k, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return nil, eris.Wrapf(ErrNotFound, "parcel: key %q is not numeric", key)
	}

	f, ok := r.parcels.ByKey(k)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "parcel: key %d", k)
	}

	zap.L().Debug("parcel resolved by key", zap.Int64("parcel_key", k), zap.String("zone_code", f.ZoneCode))
	return resultFor(f, f.EnvelopeCenter()), nil
}

// ResolveByCoordinates returns the first feature containing the point. The
// location echoes the query point.
func (r *LocalResolver) ResolveByCoordinates(_ context.Context, lat, lng float64) (*Result, error) {
	p := coords.Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	f, ok := r.parcels.Locate(p)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "parcel: no feature contains %s", p)
	}

	zap.L().Debug("parcel resolved by coordinates",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.Int64("parcel_key", f.Key),
	)
	return resultFor(f, p), nil
}

func resultFor(f Feature, at coords.Point) *Result {
	key := f.Key
	return &Result{
		Location:        at,
		ZoneCode:        f.ZoneCode,
		ZoneDescription: f.ZoneDescription,
		ParcelKey:       &key,
	}
}
