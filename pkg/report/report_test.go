package report

import (
	"encoding/json"
	"strings"
	"testing"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/ekispert"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(id string, waypoints ...ekispert.Waypoint) batch.Result {
	return batch.Result{
		ID:          id,
		OriginName:  "博多",
		DestName:    "佐賀",
		DistanceKm:  12.5,
		DurationMin: 45,
		CostYen:     1130,
		Waypoints:   waypoints,
		Segments: []ekispert.Segment{
			{Mode: "Walk", LineName: "徒歩", From: "福岡市役所", To: "博多"},
			{Mode: "Limited Express", LineName: "JR鹿児島本線", From: "博多", To: "佐賀"},
		},
		DebugURL: "https://api.example.test/?key=k",
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "¥1,130", FormatCost(resolved("1")))
	assert.Equal(t, "-", FormatCost(batch.Result{Err: batch.ErrMissingCoordinates}))
}

func TestTable(t *testing.T) {
	out := Table([]batch.Result{
		resolved("1"),
		{ID: "2", OriginName: batch.UnsetName, DestName: batch.UnsetName, Err: batch.ErrMissingCoordinates},
	}, lipgloss.Color("205"))

	for _, want := range []string{"Origin", "博多", "12.50", "45", "¥1,130", "Success", "Error: missing coordinates", "not set"} {
		assert.Contains(t, out, want)
	}
}

func TestSteps(t *testing.T) {
	out := Steps(resolved("1"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1. Walk (徒歩): 福岡市役所 -> 博多", lines[0])
	assert.Equal(t, "2. Limited Express (JR鹿児島本線): 博多 -> 佐賀", lines[1])
	assert.Contains(t, lines[2], "debug URL: https://api.example.test/?key=k")

	assert.Empty(t, Steps(batch.Result{Err: batch.ErrMissingCoordinates}))
}

func TestMapRoutes(t *testing.T) {
	results := []batch.Result{
		resolved("1", ekispert.Waypoint{Lat: 33.59, Lng: 130.42, Name: "博多"}, ekispert.Waypoint{Lat: 33.26, Lng: 130.30}),
		resolved("2", ekispert.Waypoint{Lat: 33.59, Lng: 130.42}),
		{ID: "3", Err: batch.ErrMissingCoordinates},
	}

	routes := MapRoutes(results)
	require.Len(t, routes, 1)
	assert.Equal(t, "1", routes[0].ID)
	assert.Equal(t, "博多", routes[0].Start)
	assert.Equal(t, "Goal", routes[0].Goal)
}

func TestWriteMap(t *testing.T) {
	var buf strings.Builder
	err := WriteMap(&buf, "Routes", []batch.Result{
		resolved("1", ekispert.Waypoint{Lat: 33.59, Lng: 130.42, Name: "博多"}, ekispert.Waypoint{Lat: 33.26, Lng: 130.30, Name: "佐賀"}),
		resolved("2"),
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find("#map").Length())
	items := doc.Find("#route-list li")
	require.Equal(t, 1, items.Length())
	assert.Equal(t, "1: 博多 -> 佐賀 (2 points)", items.First().Text())

	var routes []MapRoute
	require.NoError(t, json.Unmarshal([]byte(doc.Find("#route-data").Text()), &routes))
	require.Len(t, routes, 1)
	assert.Equal(t, "佐賀", routes[0].Goal)
	assert.InDelta(t, 130.30, routes[0].Points[1].Lng, 1e-9)
}

func TestWriteMap_NothingToDraw(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteMap(&buf, "Routes", []batch.Result{{ID: "1", Err: batch.ErrMissingCoordinates}}))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#map").Length())
	assert.Equal(t, 1, doc.Find("p.empty").Length())
}

func TestProgressLineAndSummary(t *testing.T) {
	line := ProgressLine(batch.Progress{Done: 2, Total: 5, Last: resolved("7")})
	assert.True(t, strings.HasPrefix(line, "[2/5] "))
	assert.Contains(t, line, "7: 博多 -> 佐賀")

	assert.Equal(t, "3 rows: 2 resolved, 1 failed", Summary([]batch.Result{
		resolved("1"), resolved("2"), {ID: "3", Err: batch.ErrMissingCoordinates},
	}))
}
