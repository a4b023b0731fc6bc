package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
)

func TestRunExplore_MarkerFollowsSuccess(t *testing.T) {
	env := testEnv(t)
	s := lookup.NewSession(env.Service)

	script := strings.Join([]string{
		"help",
		"where",
		"erf 99999",
		"where",
		"erf 12345",
		"",
		"gps nonsense",
		"where",
		"gps -33.925, 18.415",
		"bogus",
		"quit",
		"erf 111",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runExplore(context.Background(), strings.NewReader(script), &out, s, outputOptions{}))

	text := out.String()
	assert.Contains(t, text, "Session "+s.ID)
	assert.Contains(t, text, "erf <number>")
	assert.Contains(t, text, "No marker placed yet.")
	assert.Contains(t, text, "ERF number 99999 not found in the zoning data.")
	assert.Contains(t, text, "Marker: ERF: 12345 at -33.925000, 18.405000 (zoom 13)")
	assert.Contains(t, text, lookup.MsgInvalidCoordinates)
	assert.Contains(t, text, "Marker: GPS Location at -33.925000, 18.415000 (zoom 13)")
	assert.Contains(t, text, `Unknown command "bogus"`)

	// The failed gps lookup leaves the ERF marker in place before the next move.
	assert.Equal(t, 2, strings.Count(text, "Marker: ERF: 12345"))

	// Nothing after quit runs.
	assert.Equal(t, 4, s.Lookups())
	m, ok := s.Marker()
	require.True(t, ok)
	assert.Equal(t, "GPS Location", m.Label)
}

func TestRunExplore_EOF(t *testing.T) {
	env := testEnv(t)
	s := lookup.NewSession(env.Service)

	var out bytes.Buffer
	require.NoError(t, runExplore(context.Background(), strings.NewReader("erf 111"), &out, s, outputOptions{}))

	assert.Contains(t, out.String(), "Zoning Type: SR1")
	assert.True(t, strings.HasSuffix(out.String(), "> \n"))
	assert.Equal(t, 1, s.Lookups())
}

func TestRunExplore_JSON(t *testing.T) {
	env := testEnv(t)
	s := lookup.NewSession(env.Service)

	var out bytes.Buffer
	require.NoError(t, runExplore(context.Background(), strings.NewReader("ERF 112\nexit\n"), &out, s, outputOptions{JSON: true}))

	assert.Contains(t, out.String(), `"parcelKey": "112"`)
	assert.Contains(t, out.String(), "Marker: ERF: 112")
}
