package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/config"
	"github.com/PhelelaniM/UrbanMind/internal/db"
	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/metrics"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
	"github.com/PhelelaniM/UrbanMind/internal/resilience"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
	"github.com/PhelelaniM/UrbanMind/pkg/zoningclient"
)

// lookupEnv holds everything the lookup, explore and serve commands need.
type lookupEnv struct {
	Service  *lookup.Service
	Parcels  *parcel.Collection // nil under the remote strategy
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// initLookup validates the config for mode, loads the catalog and builds the
// resolver for the configured strategy.
func initLookup(ctx context.Context, c *config.Config, mode string) (*lookupEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(c)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	env := &lookupEnv{Metrics: m, Registry: reg}

	var resolver parcel.Resolver
	switch c.Resolve.Strategy {
	case config.StrategyRemote:
		resolver = zoningclient.New(c.Remote.BaseURL,
			zoningclient.WithTimeout(c.Remote.Timeout()),
			zoningclient.WithRateLimit(c.Remote.RateLimit),
			zoningclient.WithRetry(resilience.Policy{
				MaxAttempts:    c.Remote.Retries + 1,
				InitialBackoff: time.Duration(c.Remote.RetryBackoffMs) * time.Millisecond,
				MaxBackoff:     2 * time.Second,
				Multiplier:     2,
				JitterFraction: 0.25,
			}),
		)
		zap.L().Info("resolving parcels remotely", zap.String("base_url", c.Remote.BaseURL))
	default:
		parcels, err := loadParcels(ctx, c)
		if err != nil {
			return nil, err
		}
		env.Parcels = parcels
		m.SetParcelsLoaded(parcels.Len())
		resolver = parcel.NewLocalResolver(parcels)
	}

	env.Service = lookup.NewService(resolver, catalog, lookup.WithMetrics(m))
	return env, nil
}

// loadCatalog returns the configured catalog, or the embedded one.
func loadCatalog(c *config.Config) (*zoning.Catalog, error) {
	if c.Catalog.Path == "" {
		return zoning.Default(), nil
	}
	catalog, err := zoning.LoadFile(c.Catalog.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded custom catalog",
		zap.String("path", c.Catalog.Path),
		zap.Int("categories", len(catalog.Categories())),
	)
	return catalog, nil
}

// loadParcels reads the feature collection once from the configured source.
func loadParcels(ctx context.Context, c *config.Config) (*parcel.Collection, error) {
	switch c.Parcels.Source {
	case config.SourcePostgres:
		pool, err := db.Connect(ctx, c.Parcels.DatabaseURL, &db.PoolConfig{MaxConns: c.Parcels.MaxConns})
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return parcel.NewPostgresSource(pool, c.Parcels.Table).Load(ctx)
	case config.SourceFile:
		return fileSource(c).Load(ctx)
	default:
		return nil, eris.Errorf("unknown parcel source %q", c.Parcels.Source)
	}
}

func fileSource(c *config.Config) *parcel.FileSource {
	return parcel.NewFileSource(c.Parcels.Paths,
		parcel.WithFieldMap(c.Parcels.Fields),
		parcel.WithConcurrency(c.Parcels.Concurrency),
	)
}
