package report

import (
	"fmt"
	"html/template"
	"io"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/ekispert"
)

// MapRoute is one polyline on the map page.
type MapRoute struct {
	ID     string              `json:"id"`
	Label  string              `json:"label"`
	Points []ekispert.Waypoint `json:"points"`
	Start  string              `json:"start"`
	Goal   string              `json:"goal"`
}

// MapRoutes picks the results that can be drawn: resolved rows with at least
// two waypoints. Start and goal are named after the first and last waypoint.
func MapRoutes(results []batch.Result) []MapRoute {
	routes := make([]MapRoute, 0, len(results))
	for _, r := range results {
		if !r.OK() || len(r.Waypoints) < 2 {
			continue
		}

		first, last := r.Waypoints[0], r.Waypoints[len(r.Waypoints)-1]
		route := MapRoute{
			ID:     r.ID,
			Label:  fmt.Sprintf("%s: %s -> %s", r.ID, r.OriginName, r.DestName),
			Points: r.Waypoints,
			Start:  first.Name,
			Goal:   last.Name,
		}
		if route.Start == "" {
			route.Start = "Start"
		}
		if route.Goal == "" {
			route.Goal = "Goal"
		}
		routes = append(routes, route)
	}
	return routes
}

var mapPage = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>
body { font-family: sans-serif; margin: 24px; color: #111827; }
#map { height: 480px; width: 100%; border: 1px solid #e5e7eb; border-radius: 12px; }
.note { color: #6b7280; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Routes}}
<div id="map"></div>
<ul id="route-list">
{{range .Routes}}<li data-id="{{.ID}}">{{.Label}} ({{len .Points}} points)</li>
{{end}}</ul>
<p class="note">Lines connect the stop-points reported for each route in order; they do not follow track or road shapes.</p>
<script type="application/json" id="route-data">{{.Routes}}</script>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
const routes = JSON.parse(document.getElementById("route-data").textContent);
const map = L.map("map");
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
const all = [];
for (const r of routes) {
  const pts = r.points.map(p => [p.lat, p.lng]);
  all.push(...pts);
  L.polyline(pts).addTo(map).bindTooltip(r.label);
  L.marker(pts[0]).addTo(map).bindPopup(r.start);
  L.marker(pts[pts.length - 1]).addTo(map).bindPopup(r.goal);
}
map.fitBounds(L.latLngBounds(all));
</script>
{{else}}
<p class="note empty">No routes to display: no resolved row has at least two stop-points with coordinates.</p>
{{end}}
</body>
</html>
`))

// WriteMap writes a standalone HTML page drawing every drawable route on an
// OpenStreetMap base layer.
func WriteMap(w io.Writer, title string, results []batch.Result) error {
	data := struct {
		Title  string
		Routes []MapRoute
	}{
		Title:  title,
		Routes: MapRoutes(results),
	}
	if err := mapPage.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render map page: %w", err)
	}
	return nil
}
