package ekispert

import (
	"errors"
	"math"
)

// ErrNoRouteBody is returned when a course carries no Route object.
var ErrNoRouteBody = errors.New("course has no route")

// Segment is one leg of a normalized itinerary
type Segment struct {
	Mode     string `json:"mode"`
	LineName string `json:"lineName"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Waypoint is a stop-point with a usable coordinate, for drawing on a map
type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Itinerary is the canonical, render-ready form of a course
type Itinerary struct {
	Segments    []Segment
	Waypoints   []Waypoint
	DistanceKm  float64
	DurationMin int
	CostYen     int
}

// Normalize derives an itinerary from a course. It has no side effects, so
// normalizing the same course twice yields equal itineraries.
func Normalize(c Course) (Itinerary, error) {
	if c.Route == nil {
		return Itinerary{}, ErrNoRouteBody
	}
	route := *c.Route

	return Itinerary{
		Segments:    Segments(route),
		Waypoints:   Waypoints(route),
		DistanceKm:  DistanceKm(route),
		DurationMin: DurationMin(route),
		CostYen:     CostYen(c.Prices),
	}, nil
}

// Segments pairs line i with points i and i+1. There is always one segment
// per line; a point list that runs short leaves the endpoint name empty.
func Segments(r Route) []Segment {
	segments := make([]Segment, 0, len(r.Lines))
	for i, line := range r.Lines {
		segments = append(segments, Segment{
			Mode:     TransportLabel(line.Type, line.Name),
			LineName: line.Name,
			From:     pointName(r.Points, i),
			To:       pointName(r.Points, i+1),
		})
	}
	return segments
}

func pointName(points []Point, i int) string {
	if i < 0 || i >= len(points) {
		return ""
	}
	return points[i].DisplayName()
}

// Waypoints keeps the points that have a coordinate, in route order.
func Waypoints(r Route) []Waypoint {
	waypoints := make([]Waypoint, 0, len(r.Points))
	for _, p := range r.Points {
		coord, ok := ReadCoordinate(p)
		if !ok {
			continue
		}
		waypoints = append(waypoints, Waypoint{Lat: coord.Lat, Lng: coord.Lng, Name: p.DisplayName()})
	}
	return waypoints
}

// DistanceKm converts the route distance from 100 m units to kilometres.
func DistanceKm(r Route) float64 {
	return r.Distance.Or(0) * 0.1
}

// DurationMin is time on board plus walking plus other time. Missing buckets count as zero.
func DurationMin(r Route) int {
	total := r.TimeOnBoard.Or(0) + r.TimeWalk.Or(0) + r.TimeOther.Or(0)
	return int(math.Round(total))
}

// CostYen adds the one-way fare summary and charge summary. Either may be missing.
func CostYen(prices []Price) int {
	total := onewayOf(prices, PriceFareSummary) + onewayOf(prices, PriceChargeSummary)
	return int(math.Round(total))
}

func onewayOf(prices []Price, kind string) float64 {
	for _, p := range prices {
		if p.Kind == kind {
			return p.Oneway.Or(0)
		}
	}
	return 0
}
