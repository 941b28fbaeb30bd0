package ekispert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CoordText is a coordinate component in a proxy request. Browsers and CSV
// tooling send either numbers or strings, so both are accepted; null means absent.
type CoordText string

// UnmarshalJSON accepts a JSON string, number or null.
func (c *CoordText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, jsonNull):
		*c = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CoordText(strings.TrimSpace(s))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*c = CoordText(data)
	default:
		return fmt.Errorf("coordinate must be a number or string, got %s", data)
	}
	return nil
}

// RouteRequest is the body accepted by the route proxy endpoint.
type RouteRequest struct {
	APIKey    string    `json:"apiKey"`
	OriginLat CoordText `json:"originLat"`
	OriginLng CoordText `json:"originLng"`
	DestLat   CoordText `json:"destLat"`
	DestLng   CoordText `json:"destLng"`
}

// Origin returns the origin coordinate pair.
func (r RouteRequest) Origin() LatLng {
	return LatLng{Lat: string(r.OriginLat), Lng: string(r.OriginLng)}
}

// Destination returns the destination coordinate pair.
func (r RouteRequest) Destination() LatLng {
	return LatLng{Lat: string(r.DestLat), Lng: string(r.DestLng)}
}

// HasCoordinates reports whether all four components are present.
func (r RouteRequest) HasCoordinates() bool {
	return r.OriginLat != "" && r.OriginLng != "" && r.DestLat != "" && r.DestLng != ""
}

// RouteReply is the body returned by the route proxy endpoint: requestUrl and
// data on success, error plus whatever diagnostics are available on failure.
type RouteReply struct {
	RequestURL string          `json:"requestUrl,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

// ProxyClient sends course searches through a route proxy instead of calling
// the provider directly.
type ProxyClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewProxyClient creates a client that posts to endpoint, e.g.
// "http://localhost:8080/api/ekispert/route".
func NewProxyClient(endpoint, apiKey string) (*ProxyClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &ProxyClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}, nil
}

// SearchCourse performs one course search through the proxy.
func (p *ProxyClient) SearchCourse(ctx context.Context, origin, dest LatLng) (*SearchResult, error) {
	payload, err := json.Marshal(RouteRequest{
		APIKey:    p.apiKey,
		OriginLat: CoordText(origin.Lat),
		OriginLng: CoordText(origin.Lng),
		DestLat:   CoordText(dest.Lat),
		DestLng:   CoordText(dest.Lng),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &QueryError{Reason: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &QueryError{Reason: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &QueryError{Status: resp.StatusCode, Reason: fmt.Sprintf("failed to read proxy response: %v", err), Err: err}
	}

	var reply RouteReply
	decodeErr := json.Unmarshal(body, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		qe := &QueryError{Status: resp.StatusCode, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		if decodeErr != nil {
			qe.Raw = truncate(string(body), maxRawBody)
			return nil, qe
		}
		if reply.Error != "" {
			qe.Reason = reply.Error
		}
		qe.RequestURL = reply.RequestURL
		qe.Raw = reply.Raw
		return nil, qe
	}

	if decodeErr != nil {
		return nil, &QueryError{
			Status: resp.StatusCode,
			Reason: ErrNonJSON.Error(),
			Raw:    truncate(string(body), maxRawBody),
			Err:    ErrNonJSON,
		}
	}

	parsed, err := ParseResponse(reply.Data)
	if err != nil {
		return nil, &QueryError{
			Status:     resp.StatusCode,
			Reason:     ErrNonJSON.Error(),
			RequestURL: reply.RequestURL,
			Err:        ErrNonJSON,
		}
	}

	return &SearchResult{RequestURL: reply.RequestURL, Body: reply.Data, Response: parsed}, nil
}
