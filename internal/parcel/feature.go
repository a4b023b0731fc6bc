// Package parcel loads cadastral zoning polygons and resolves parcel keys and
// coordinates against them.
package parcel

import (
	"slices"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
)

// Feature is one cadastral unit with its zoning attributes.
type Feature struct {
	Key             int64
	ZoneCode        string
	ZoneDescription string
	SecondaryCode   string
	Geometry        geom.T // *geom.Polygon or *geom.MultiPolygon, lon/lat order
}

// EnvelopeCenter returns the centre of the geometry's bounding box. This is
// not the area-weighted centroid.
func (f Feature) EnvelopeCenter() coords.Point {
	b := f.Geometry.Bounds()
	return coords.Point{
		Lat: (b.Min(1) + b.Max(1)) / 2,
		Lng: (b.Min(0) + b.Max(0)) / 2,
	}
}

// Contains reports whether p lies inside the feature's polygon(s). Points on
// an outer boundary count as inside; points inside a hole do not.
func (f Feature) Contains(p coords.Point) bool {
	c := geom.Coord{p.Lng, p.Lat}
	if !f.Geometry.Bounds().OverlapsPoint(geom.XY, c) {
		return false
	}

	switch g := f.Geometry.(type) {
	case *geom.Polygon:
		return polygonContains(g, c)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), c) {
				return true
			}
		}
	}
	return false
}

// polygonContains treats ring 0 as the shell and later rings as holes.
func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	layout := p.Layout()
	if !xy.IsPointInRing(layout, c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// Collection is an ordered, read-only set of features. It is built once and
// safe for concurrent readers.
type Collection struct {
	features []Feature
	byKey    map[int64]int
}

// NewCollection indexes features in the given order. When keys repeat, the
// earliest feature wins.
func NewCollection(features []Feature) *Collection {
	c := &Collection{
		features: features,
		byKey:    make(map[int64]int, len(features)),
	}
	for i, f := range features {
		if _, seen := c.byKey[f.Key]; !seen {
			c.byKey[f.Key] = i
		}
	}
	return c
}

// Len returns the number of features.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.features)
}

// Features returns a copy of the features in load order.
func (c *Collection) Features() []Feature {
	if c == nil {
		return nil
	}
	return slices.Clone(c.features)
}

// ByKey returns the first feature carrying key.
func (c *Collection) ByKey(key int64) (Feature, bool) {
	if c == nil {
		return Feature{}, false
	}
	i, ok := c.byKey[key]
	if !ok {
		return Feature{}, false
	}
	return c.features[i], true
}

// Locate returns the first feature, in load order, containing p.
func (c *Collection) Locate(p coords.Point) (Feature, bool) {
	if c == nil {
		return Feature{}, false
	}
	for _, f := range c.features {
		if f.Contains(p) {
			return f, true
		}
	}
	return Feature{}, false
}
