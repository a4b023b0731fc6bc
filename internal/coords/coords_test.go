package coords

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Decimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lat  float64
		lng  float64
	}{
		{"cape town", "-33.919578, 18.432544", -33.919578, 18.432544},
		{"no space", "-33.9,18.4", -33.9, 18.4},
		{"integers", "10, 20", 10, 20},
		{"padded", "  -33.9 ,  18.4  ", -33.9, 18.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, p.Lat, 1e-9)
			assert.InDelta(t, tt.lng, p.Lng, 1e-9)
		})
	}
}

func TestParse_DMS(t *testing.T) {
	p, err := Parse(`33°55'10.5"S, 18°25'57.2"E`)
	require.NoError(t, err)
	assert.InDelta(t, -33.919583, p.Lat, 1e-6)
	assert.InDelta(t, 18.432556, p.Lng, 1e-6)

	p, err = Parse(`40°26'46"N, 79°58'56"W`)
	require.NoError(t, err)
	assert.InDelta(t, 40.446111, p.Lat, 1e-6)
	assert.InDelta(t, -79.982222, p.Lng, 1e-6)
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"cape town",
		"-33.9",
		"-33.9; 18.4",
		"91, 18",
		"-33, 181",
		`33°75'10"S, 18°25'57"E`,
	} {
		_, err := Parse(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, eris.Is(err, ErrInvalid), "input %q should wrap ErrInvalid", in)
	}
}

func TestPoint_String(t *testing.T) {
	p := Point{Lat: -33.9249, Lng: 18.4241}
	assert.Equal(t, "-33.924900, 18.424100", p.String())

	back, err := Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestPoint_Validate(t *testing.T) {
	assert.NoError(t, Point{Lat: -90, Lng: 180}.Validate())
	assert.NoError(t, Point{Lat: 90, Lng: -180}.Validate())

	for _, p := range []Point{
		{Lat: -90.5, Lng: 0},
		{Lat: 0, Lng: 180.5},
		{Lat: math.NaN(), Lng: 18.4},
		{Lat: -33.9, Lng: math.NaN()},
		{Lat: math.Inf(1), Lng: 18.4},
		{Lat: -33.9, Lng: math.Inf(-1)},
	} {
		err := p.Validate()
		require.Error(t, err, "point %v", p)
		assert.True(t, eris.Is(err, ErrInvalid), "point %v should wrap ErrInvalid", p)
	}
}
