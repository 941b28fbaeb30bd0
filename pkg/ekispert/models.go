package ekispert

import (
	"encoding/json"
	"errors"
)

// Response is the top level JSON object returned by the course search endpoint
type Response struct {
	ResultSet ResultSet `json:"ResultSet"`
}

// ResultSet holds the candidate courses, or the provider's error report
type ResultSet struct {
	Courses List[Course]   `json:"Course"`
	Error   *ProviderError `json:"Error,omitempty"`
}

// ProviderError is the error object embedded in an otherwise successful response.
type ProviderError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"Message"`
}

// UnmarshalJSON reads the message from "Message", falling back to "message"
// when the capitalized key is absent or null. Other shapes leave it empty.
func (e *ProviderError) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		*e = ProviderError{}
		return nil
	}
	*e = ProviderError{
		Code:    firstString(obj, "code"),
		Message: firstString(obj, "Message", "message"),
	}
	return nil
}

// Course is one itinerary option
type Course struct {
	Route  *Route      `json:"Route"`
	Prices List[Price] `json:"Price"`
}

// Route carries the aggregate figures plus the ordered stop-points and the lines between them
type Route struct {
	Distance    Number      `json:"distance"`    // in units of 100 m
	TimeOnBoard Number      `json:"timeOnBoard"` // minutes
	TimeWalk    Number      `json:"timeWalk"`    // minutes
	TimeOther   Number      `json:"timeOther"`   // minutes
	Points      List[Point] `json:"Point"`
	Lines       List[Line]  `json:"Line"`
}

// Point is a stop-point along the route: origin, transfer or destination
type Point struct {
	Station  *Station                   `json:"Station,omitempty"`
	Name     string                     `json:"Name"`
	GeoPoint map[string]json.RawMessage `json:"GeoPoint,omitempty"`
}

// Station is a named stop
type Station struct {
	Code string `json:"code,omitempty"`
	Name string `json:"Name"`
}

// DisplayName prefers the station name, then the generic point name.
func (p Point) DisplayName() string {
	if p.Station != nil && p.Station.Name != "" {
		return p.Station.Name
	}
	return p.Name
}

// Line is one leg of travel between two consecutive points
type Line struct {
	Name string  `json:"Name"`
	Type TypeTag `json:"Type"`
}

// Price is a fare or charge entry; Kind identifies the summary type
type Price struct {
	Kind   string `json:"kind"`
	Oneway Number `json:"Oneway"`
}

// Price kinds that carry trip totals
const (
	PriceFareSummary   = "FareSummary"
	PriceChargeSummary = "ChargeSummary"
)

// ParseResponse decodes a course search payload. It fails only when data is
// not JSON at all; fields whose shape does not match are left empty.
func ParseResponse(data []byte) (*Response, error) {
	if !json.Valid(data) {
		return nil, ErrNonJSON
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}
	return &resp, nil
}
