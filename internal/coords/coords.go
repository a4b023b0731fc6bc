// Package coords parses and validates user-supplied geographic coordinates.
package coords

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalid is the root of every parse or validation failure in this package.
var ErrInvalid = eris.New("invalid coordinates")

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the point as "lat, lng" with six decimals, the same shape
// Parse accepts.
func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}

// Validate checks the point lies within the valid latitude/longitude ranges.
func (p Point) Validate() error {
	if !finite(p.Lat) || !finite(p.Lng) {
		return eris.Wrapf(ErrInvalid, "coords: %v, %v is not a finite position", p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return eris.Wrapf(ErrInvalid, "coords: latitude %v out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return eris.Wrapf(ErrInvalid, "coords: longitude %v out of range", p.Lng)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var (
	// "-33.919578, 18.432544"
	decimalPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

	// 33°55'10.5"S, 18°25'57.2"E
	dmsPattern = regexp.MustCompile(`^\s*(\d+)\s*°\s*(\d+)\s*'\s*(\d+(?:\.\d+)?)\s*"?\s*([NSns])\s*,\s*(\d+)\s*°\s*(\d+)\s*'\s*(\d+(?:\.\d+)?)\s*"?\s*([EWew])\s*$`)
)

// Parse reads a coordinate pair in decimal ("lat, lng") or
// degrees-minutes-seconds form. The result is range-checked.
func Parse(raw string) (Point, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Point{}, eris.Wrap(ErrInvalid, "coords: empty input")
	}

	if m := decimalPattern.FindStringSubmatch(s); m != nil {
		lat, _ := strconv.ParseFloat(m[1], 64)
		lng, _ := strconv.ParseFloat(m[2], 64)
		p := Point{Lat: lat, Lng: lng}
		return p, p.Validate()
	}

	if m := dmsPattern.FindStringSubmatch(s); m != nil {
		lat, err := dmsToDecimal(m[1], m[2], m[3], m[4])
		if err != nil {
			return Point{}, err
		}
		lng, err := dmsToDecimal(m[5], m[6], m[7], m[8])
		if err != nil {
			return Point{}, err
		}
		p := Point{Lat: lat, Lng: lng}
		return p, p.Validate()
	}

	return Point{}, eris.Wrapf(ErrInvalid, "coords: unrecognised format %q", s)
}

// dmsToDecimal converts one degrees/minutes/seconds triple plus hemisphere.
// Southern and western hemispheres are negative.
func dmsToDecimal(deg, minutes, sec, hemi string) (float64, error) {
	d, _ := strconv.Atoi(deg)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.ParseFloat(sec, 64)
	if m >= 60 || s >= 60 {
		return 0, eris.Wrapf(ErrInvalid, "coords: minutes/seconds out of range in %s°%s'%s\"", deg, minutes, sec)
	}

	v := float64(d) + float64(m)/60 + s/3600
	switch strings.ToUpper(hemi) {
	case "S", "W":
		v = -v
	}
	return v, nil
}
