package lookup

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
)

// MarkerZoom is the map zoom level applied when a marker moves.
const MarkerZoom = 13

// Marker is the single map marker a session shows.
type Marker struct {
	Location coords.Point `json:"location"`
	Label    string       `json:"label"`
	Popup    string       `json:"popup"`
	Zoom     int          `json:"zoom"`
}

// Session is the map state of one interactive user. It is owned by a single
// controller and is not safe for concurrent use.
type Session struct {
	ID string

	svc     *Service
	marker  *Marker
	last    *Response
	lookups int
}

// NewSession starts a session backed by svc.
func NewSession(svc *Service) *Session {
	return &Session{
		ID:  uuid.NewString(),
		svc: svc,
	}
}

// Submit runs a lookup and applies its result.
func (s *Session) Submit(ctx context.Context, req Request) Response {
	resp := s.svc.Lookup(ctx, req)
	s.Apply(resp)
	return resp
}

// Apply records resp as the latest result. Only a successful result moves
// the marker; a failure leaves the previous marker in place.
func (s *Session) Apply(resp Response) {
	s.lookups++
	s.last = &resp
	if !resp.Success || resp.Location == nil {
		return
	}

	label := "GPS Location"
	if resp.Kind == KindKey {
		label = "ERF: " + resp.ParcelKey
	}
	loc := *resp.Location
	s.marker = &Marker{
		Location: loc,
		Label:    label,
		Popup:    fmt.Sprintf("Selected Location\nLat: %.6f, Lng: %.6f", loc.Lat, loc.Lng),
		Zoom:     MarkerZoom,
	}
}

// Marker returns the current marker, if any lookup has succeeded.
func (s *Session) Marker() (Marker, bool) {
	if s.marker == nil {
		return Marker{}, false
	}
	return *s.marker, true
}

// Last returns the most recent response, successful or not.
func (s *Session) Last() (Response, bool) {
	if s.last == nil {
		return Response{}, false
	}
	return *s.last, true
}

// Lookups counts submitted lookups.
func (s *Session) Lookups() int {
	return s.lookups
}
