// Package lookup combines parcel resolution with the zoning catalog into the
// payload returned to users, and owns the user-facing error messages.
package lookup

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

// Kind is the identifier type a lookup was made with.
type Kind string

const (
	KindKey         Kind = "key"
	KindCoordinates Kind = "coordinates"
)

// ErrorCode classifies a failed lookup on the wire.
type ErrorCode string

const (
	CodeInvalidInput ErrorCode = "invalid_input"
	CodeNotFound     ErrorCode = "not_found"
	CodeTransport    ErrorCode = "transport"
)

// User-visible messages.
const (
	MsgEmptyCoordinates   = "Please enter valid GPS coordinates."
	MsgInvalidCoordinates = "Invalid coordinate format. Please use decimal (e.g., -33.919578, 18.432544) or DMS format."
	MsgEmptyKey           = "Please enter a valid ERF number."
	MsgInvalidRequest     = "Invalid input data"
	MsgTransport          = "An error occurred while fetching information."
)

// Identifier is a request field that accepts a JSON string or number.
type Identifier string

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "lookup: decode identifier")
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return eris.Wrap(err, "lookup: identifier must be a string or number")
	}
	*id = Identifier(n.String())
	return nil
}

// Request is the body of POST /get_information. Exactly one of Coordinates,
// ParcelKey or the legacy Erf field is expected; a present Coordinates
// field takes precedence.
type Request struct {
	Coordinates *string     `json:"coordinates,omitempty"`
	ParcelKey   *Identifier `json:"parcelKey,omitempty"`
	Erf         *Identifier `json:"erf,omitempty"`
}

// CoordinatesRequest builds a coordinate lookup request.
func CoordinatesRequest(raw string) Request {
	return Request{Coordinates: &raw}
}

// KeyRequest builds a parcel key lookup request.
func KeyRequest(key string) Request {
	id := Identifier(key)
	return Request{ParcelKey: &id}
}

// key returns the parcel key and whether one was supplied.
func (r Request) key() (string, bool) {
	switch {
	case r.ParcelKey != nil:
		return string(*r.ParcelKey), true
	case r.Erf != nil:
		return string(*r.Erf), true
	default:
		return "", false
	}
}

// Response is the success/failure envelope shared by every surface.
type Response struct {
	Success         bool             `json:"success"`
	Kind            Kind             `json:"kind,omitempty"`
	Location        *coords.Point    `json:"location,omitempty"`
	ParcelKey       string           `json:"parcelKey,omitempty"`
	ZoneCode        string           `json:"zoneCode"`
	ZoneDescription string           `json:"zoneDescription"`
	PermittedUses   []string         `json:"permittedUses,omitempty"`
	Restrictions    []string         `json:"restrictions,omitempty"`
	Category        string           `json:"category,omitempty"`
	Insights        *zoning.Insights `json:"insights,omitempty"`
	Error           string           `json:"error,omitempty"`
	ErrorCode       ErrorCode        `json:"errorCode,omitempty"`
}

func failure(kind Kind, code ErrorCode, msg string) Response {
	return Response{Success: false, Kind: kind, Error: msg, ErrorCode: code}
}
