package lookup

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_ID(t *testing.T) {
	a := NewSession(testService())
	b := NewSession(testService())

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSession_NoMarkerOnFailure(t *testing.T) {
	s := NewSession(testService())

	resp := s.Submit(context.Background(), KeyRequest("99999"))
	assert.False(t, resp.Success)
	assert.Equal(t, "ERF number 99999 not found in the zoning data.", resp.Error)

	_, ok := s.Marker()
	assert.False(t, ok)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, last.ErrorCode)
	assert.Equal(t, 1, s.Lookups())
}

func TestSession_MarkerFollowsSuccess(t *testing.T) {
	s := NewSession(testService())

	s.Submit(context.Background(), KeyRequest("12345"))
	m, ok := s.Marker()
	require.True(t, ok)
	assert.Equal(t, "ERF: 12345", m.Label)
	assert.Equal(t, MarkerZoom, m.Zoom)
	assert.InDelta(t, -33.925, m.Location.Lat, 1e-9)
	assert.Equal(t, "Selected Location\nLat: -33.925000, Lng: 18.405000", m.Popup)

	s.Submit(context.Background(), CoordinatesRequest("-33.925, 18.415"))
	m, ok = s.Marker()
	require.True(t, ok)
	assert.Equal(t, "GPS Location", m.Label)
	assert.Equal(t, 18.415, m.Location.Lng)
}

func TestSession_FailureKeepsPreviousMarker(t *testing.T) {
	s := NewSession(testService())

	s.Submit(context.Background(), KeyRequest("12345"))
	before, ok := s.Marker()
	require.True(t, ok)

	s.Submit(context.Background(), KeyRequest("99999"))
	s.Submit(context.Background(), CoordinatesRequest("not a place"))

	after, ok := s.Marker()
	require.True(t, ok)
	assert.Equal(t, before, after)

	last, _ := s.Last()
	assert.Equal(t, CodeInvalidInput, last.ErrorCode)
	assert.Equal(t, 3, s.Lookups())
}

func TestSession_EmptyLast(t *testing.T) {
	s := NewSession(testService())
	_, ok := s.Last()
	assert.False(t, ok)
}
