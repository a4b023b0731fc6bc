package lookup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
	"github.com/PhelelaniM/UrbanMind/internal/metrics"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

// Service resolves identifiers and classifies the result. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	resolver parcel.Resolver
	catalog  *zoning.Catalog
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records lookup outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock used for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. A nil catalog uses zoning.Default.
func NewService(resolver parcel.Resolver, catalog *zoning.Catalog, opts ...Option) *Service {
	if catalog == nil {
		catalog = zoning.Default()
	}
	s := &Service{
		resolver: resolver,
		catalog:  catalog,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog used for classification.
func (s *Service) Catalog() *zoning.Catalog {
	return s.catalog
}

// Lookup dispatches a wire request. It never returns an error; failures are
// carried in the Response.
func (s *Service) Lookup(ctx context.Context, req Request) Response {
	if req.Coordinates != nil {
		return s.ByCoordinates(ctx, *req.Coordinates)
	}
	if key, ok := req.key(); ok {
		return s.ByKey(ctx, key)
	}
	return failure("", CodeInvalidInput, MsgInvalidRequest)
}

// ByKey resolves a parcel key typed by a user.
func (s *Service) ByKey(ctx context.Context, raw string) Response {
	start := s.now()
	key := strings.TrimSpace(raw)

	var resp Response
	if key == "" {
		resp = failure(KindKey, CodeInvalidInput, MsgEmptyKey)
	} else {
		res, err := s.resolver.ResolveByKey(ctx, key)
		if err != nil {
			resp = s.keyFailure(key, err)
		} else {
			resp = s.success(KindKey, res)
			resp.ParcelKey = key
		}
	}

	s.observe(KindKey, resp, start)
	return resp
}

// ByCoordinates parses a "lat, lng" or DMS string and resolves it.
func (s *Service) ByCoordinates(ctx context.Context, raw string) Response {
	if strings.TrimSpace(raw) == "" {
		resp := failure(KindCoordinates, CodeInvalidInput, MsgEmptyCoordinates)
		s.observe(KindCoordinates, resp, s.now())
		return resp
	}

	p, err := coords.Parse(raw)
	if err != nil {
		zap.L().Debug("lookup: unparseable coordinates", zap.String("input", raw), zap.Error(err))
		resp := failure(KindCoordinates, CodeInvalidInput, MsgInvalidCoordinates)
		s.observe(KindCoordinates, resp, s.now())
		return resp
	}
	return s.ByPoint(ctx, p)
}

// ByPoint resolves an already parsed point.
func (s *Service) ByPoint(ctx context.Context, p coords.Point) Response {
	start := s.now()

	var resp Response
	if err := p.Validate(); err != nil {
		resp = failure(KindCoordinates, CodeInvalidInput, MsgEmptyCoordinates)
	} else {
		res, err := s.resolver.ResolveByCoordinates(ctx, p.Lat, p.Lng)
		if err != nil {
			resp = s.pointFailure(p, err)
		} else {
			resp = s.success(KindCoordinates, res)
		}
	}

	s.observe(KindCoordinates, resp, start)
	return resp
}

func (s *Service) success(kind Kind, res *parcel.Result) Response {
	insights := s.catalog.Classify(res.ZoneCode)
	uses := s.catalog.UseRights(res.ZoneCode)
	s.metrics.IncrementClassification(insights.Category)

	loc := res.Location
	resp := Response{
		Success:         true,
		Kind:            kind,
		Location:        &loc,
		ZoneCode:        res.ZoneCode,
		ZoneDescription: res.ZoneDescription,
		PermittedUses:   uses.PermittedUses,
		Restrictions:    uses.Restrictions,
		Category:        insights.Category,
		Insights:        &insights,
	}
	if res.ParcelKey != nil {
		resp.ParcelKey = strconv.FormatInt(*res.ParcelKey, 10)
	}
	return resp
}

func (s *Service) keyFailure(key string, err error) Response {
	switch {
	case eris.Is(err, parcel.ErrNotFound):
		return failure(KindKey, CodeNotFound, fmt.Sprintf("ERF number %s not found in the zoning data.", key))
	case eris.Is(err, parcel.ErrInvalidInput):
		return failure(KindKey, CodeInvalidInput, MsgEmptyKey)
	default:
		zap.L().Error("lookup: resolve by key failed", zap.String("parcel_key", key), zap.Error(err))
		return failure(KindKey, CodeTransport, MsgTransport)
	}
}

func (s *Service) pointFailure(p coords.Point, err error) Response {
	switch {
	case eris.Is(err, parcel.ErrNotFound):
		return failure(KindCoordinates, CodeNotFound, NotFoundAt(p))
	case eris.Is(err, parcel.ErrInvalidInput):
		return failure(KindCoordinates, CodeInvalidInput, MsgEmptyCoordinates)
	default:
		zap.L().Error("lookup: resolve by coordinates failed",
			zap.Float64("lat", p.Lat),
			zap.Float64("lng", p.Lng),
			zap.Error(err),
		)
		return failure(KindCoordinates, CodeTransport, MsgTransport)
	}
}

// NotFoundAt is the message shown when no parcel contains p.
func NotFoundAt(p coords.Point) string {
	return fmt.Sprintf("No zoned parcel found at %s.", p)
}

func (s *Service) observe(kind Kind, resp Response, start time.Time) {
	outcome := "ok"
	if !resp.Success {
		outcome = string(resp.ErrorCode)
	}
	s.metrics.ObserveLookup(string(kind), outcome, s.now().Sub(start))
}
