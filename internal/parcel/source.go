package parcel

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source produces the feature collection once at startup.
type Source interface {
	Load(ctx context.Context) (*Collection, error)
}

// FileSource reads GeoJSON and shapefile resources from disk.
type FileSource struct {
	paths       []string
	fields      FieldMap
	concurrency int
}

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithFieldMap overrides the attribute names read from each file.
func WithFieldMap(m FieldMap) FileOption {
	return func(s *FileSource) {
		s.fields = m
	}
}

// WithConcurrency caps how many files are decoded in parallel.
func WithConcurrency(n int) FileOption {
	return func(s *FileSource) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewFileSource creates a FileSource over paths. Features are concatenated
// in path order regardless of which file finishes decoding first.
func NewFileSource(paths []string, opts ...FileOption) *FileSource {
	s := &FileSource{
		paths:       paths,
		fields:      DefaultFieldMap(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*Collection, error) {
	if len(s.paths) == 0 {
		return nil, eris.New("parcel: no source paths configured")
	}

	parts := make([][]Feature, len(s.paths))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, path := range s.paths {
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			features, err := readFile(path, s.fields)
			if err != nil {
				return err
			}
			parts[i] = features
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, p := range parts {
		total += len(p)
	}
	all := make([]Feature, 0, total)
	for _, p := range parts {
		all = append(all, p...)
	}

	zap.L().Info("parcel collection loaded",
		zap.Strings("paths", s.paths),
		zap.Int("features", len(all)),
	)
	return NewCollection(all), nil
}

// readFile dispatches on extension.
func readFile(path string, fields FieldMap) ([]Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "parcel: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		features, err := DecodeGeoJSON(f, fields)
		if err != nil {
			return nil, eris.Wrapf(err, "parcel: read %s", path)
		}
		return features, nil
	case ".shp", ".zip":
		return ReadShapefile(path, fields)
	default:
		return nil, eris.Errorf("parcel: unsupported source file %s", path)
	}
}
