package ekispert

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// AsList normalizes a raw JSON value to its elements. An absent or null value
// yields no elements, an array yields its items and anything else is treated
// as a single element. The provider collapses one-element arrays to a bare
// object, so every plural field goes through here before it is indexed.
func AsList(data json.RawMessage) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] != '[' {
		return []json.RawMessage{data}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// List is a plural provider field decoded through AsList.
type List[T any] []T

// UnmarshalJSON accepts a single object, an array of objects or null.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	items := AsList(data)
	out := make(List[T], len(items))
	for i, raw := range items {
		// Elements that do not fit T stay (partly) empty instead of being
		// dropped, so positions line up with sibling lists.
		_ = json.Unmarshal(raw, &out[i])
	}
	*l = out
	return nil
}

// Number is a numeric provider field. The provider sends most numbers as
// strings; Valid is false when the value is absent or not a finite number.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = parseNumber(data)
	return nil
}

// Or returns the value, or def when the field was absent or unparseable.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

func parseNumber(data []byte) Number {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Number{}
	}

	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return Number{}
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, Valid: true}
}

// TypeTag is the resolved form of a line's Type field, which arrives either as
// a bare kind string or as an object carrying the kind and a detail
// sub-classifier.
type TypeTag struct {
	Kind   string
	Detail string
}

// UnmarshalJSON resolves both shapes. Unknown shapes yield an empty tag.
func (t *TypeTag) UnmarshalJSON(data []byte) error {
	*t = readTypeTag(data)
	return nil
}

func readTypeTag(data []byte) TypeTag {
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		return TypeTag{Kind: kind}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return TypeTag{}
	}
	return TypeTag{
		Kind:   firstString(obj, "text", "value", "#text"),
		Detail: firstString(obj, "detail", "@detail"),
	}
}

// firstString returns the string under the first key that is present and not
// null.
func firstString(obj map[string]json.RawMessage, keys ...string) string {
	raw, ok := firstPresent(obj, keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstPresent(obj map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			continue
		}
		return raw, true
	}
	return nil, false
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Key spellings seen for GeoPoint components, in priority order.
var (
	latitudeKeys  = []string{"lati_d", "latiD", "lati"}
	longitudeKeys = []string{"longi_d", "longiD", "longi"}
)

// ReadCoordinate extracts the point's coordinate. It reports false when
// either component is missing or not a finite number; callers skip such
// points rather than placing them at (0,0).
func ReadCoordinate(p Point) (Coordinate, bool) {
	if len(p.GeoPoint) == 0 {
		return Coordinate{}, false
	}

	lat := readComponent(p.GeoPoint, latitudeKeys)
	lng := readComponent(p.GeoPoint, longitudeKeys)
	if !lat.Valid || !lng.Valid {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat.Value, Lng: lng.Value}, true
}

func readComponent(geo map[string]json.RawMessage, keys []string) Number {
	raw, ok := firstPresent(geo, keys...)
	if !ok {
		return Number{}
	}
	return parseNumber(raw)
}
