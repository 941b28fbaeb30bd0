package batch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ekiroute/pkg/ekispert"
)

// ErrMissingCoordinates fails a row that lacks any of its four coordinates.
var ErrMissingCoordinates = errors.New("missing coordinates")

// UnsetName stands in for an origin or destination name the input left blank.
const UnsetName = "not set"

// Placeholder replaces numeric figures of a failed row.
const Placeholder = "-"

// Row is one requested trip. Coordinates are kept as the text that was read
// and forwarded as-is.
type Row struct {
	ID         string
	OriginName string
	OriginLat  string
	OriginLng  string
	DestName   string
	DestLat    string
	DestLng    string
}

// HasCoordinates reports whether all four coordinate fields are filled in.
func (r Row) HasCoordinates() bool {
	for _, v := range []string{r.OriginLat, r.OriginLng, r.DestLat, r.DestLng} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Origin returns the origin coordinate pair.
func (r Row) Origin() ekispert.LatLng {
	return ekispert.LatLng{Lat: strings.TrimSpace(r.OriginLat), Lng: strings.TrimSpace(r.OriginLng)}
}

// Destination returns the destination coordinate pair.
func (r Row) Destination() ekispert.LatLng {
	return ekispert.LatLng{Lat: strings.TrimSpace(r.DestLat), Lng: strings.TrimSpace(r.DestLng)}
}

// label returns the row's ID, or its 1-based position when it has none.
func (r Row) label(index int) string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strconv.Itoa(index + 1)
}

func nameOrUnset(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnsetName
	}
	return name
}

// Result is the outcome for one row. A failed result carries Err and no
// figures, segments or waypoints.
type Result struct {
	ID          string
	OriginName  string
	DestName    string
	DistanceKm  float64
	DurationMin int
	CostYen     int
	Err         error
	Segments    []ekispert.Segment
	Waypoints   []ekispert.Waypoint
	DebugURL    string

	OriginLat string
	OriginLng string
	DestLat   string
	DestLng   string
}

// OK reports whether the row resolved to a route.
func (r Result) OK() bool {
	return r.Err == nil
}

// Status is "Success" or "Error: <message>".
func (r Result) Status() string {
	if r.OK() {
		return "Success"
	}
	return fmt.Sprintf("Error: %v", r.Err)
}

// Distance formats the distance in km with two decimals.
func (r Result) Distance() string {
	if !r.OK() {
		return Placeholder
	}
	return strconv.FormatFloat(r.DistanceKm, 'f', 2, 64)
}

// Duration formats the total minutes.
func (r Result) Duration() string {
	if !r.OK() {
		return Placeholder
	}
	return strconv.Itoa(r.DurationMin)
}

// Cost formats the total fare in yen.
func (r Result) Cost() string {
	if !r.OK() {
		return Placeholder
	}
	return strconv.Itoa(r.CostYen)
}
