package ekispert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var baseURL = "https://api.ekispert.jp/v1/json/search/course/extreme"

// Datum is the geodetic system code sent with every coordinate.
const Datum = "wgs84"

// maxRawBody caps how much of a failed response body ends up in error messages.
const maxRawBody = 2000

var (
	// ErrMissingAPIKey is returned when a client is built without a credential.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrNonJSON marks a 200 response whose body is not JSON.
	ErrNonJSON = errors.New("non-JSON response")
)

// LatLng is a coordinate pair exactly as supplied by the caller. The text is
// forwarded verbatim so no precision is lost on the way to the provider.
type LatLng struct {
	Lat string
	Lng string
}

// SearchResult is a successful course search.
type SearchResult struct {
	RequestURL string
	// Body is the provider payload as received.
	Body     json.RawMessage
	Response *Response
}

// QueryError describes a failed course search. Its message carries the
// request URL and the start of the response body for diagnosis.
type QueryError struct {
	Status     int
	Reason     string
	RequestURL string
	Raw        string
	Err        error
}

func (e *QueryError) Error() string {
	parts := []string{e.Reason}
	if e.RequestURL != "" {
		parts = append(parts, "URL="+e.RequestURL)
	}
	if e.Raw != "" {
		parts = append(parts, "BODY="+e.Raw)
	}
	return strings.Join(parts, " | ")
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client queries the Ekispert course search API
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoint points the client at another course search URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// NewClient creates a client that authenticates with apiKey.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   baseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ViaList encodes origin and destination as "lat,lng,datum:lat,lng,datum".
func ViaList(origin, dest LatLng) string {
	return fmt.Sprintf("%s,%s,%s:%s,%s,%s", origin.Lat, origin.Lng, Datum, dest.Lat, dest.Lng, Datum)
}

// RequestURL builds the search URL for one origin/destination pair. It asks for
// exactly one course, sorted by travel time, using average waiting times.
func (c *Client) RequestURL(origin, dest LatLng) string {
	// Parameters keep this order so debug URLs read the same on every run.
	params := [][2]string{
		{"key", c.apiKey},
		{"searchType", "plain"},
		{"sort", "time"},
		{"answerCount", "1"},
		{"gcs", Datum},
	}

	var b strings.Builder
	b.WriteString(c.endpoint)
	b.WriteByte('?')
	for _, kv := range params {
		b.WriteString(url.QueryEscape(kv[0]) + "=" + url.QueryEscape(kv[1]) + "&")
	}

	// ":" separates via points and must stay unescaped
	b.WriteString("viaList=" + strings.ReplaceAll(url.QueryEscape(ViaList(origin, dest)), "%3A", ":"))

	return b.String()
}

// SearchCourse performs a single course search. There is no retry.
func (c *Client) SearchCourse(ctx context.Context, origin, dest LatLng) (*SearchResult, error) {
	reqURL := c.RequestURL(origin, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &QueryError{Reason: err.Error(), RequestURL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ekiroute/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &QueryError{Reason: fmt.Sprintf("request failed: %v", err), RequestURL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &QueryError{
			Status:     resp.StatusCode,
			Reason:     fmt.Sprintf("failed to read response body: %v", err),
			RequestURL: reqURL,
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &QueryError{
			Status:     resp.StatusCode,
			Reason:     fmt.Sprintf("HTTP %d", resp.StatusCode),
			RequestURL: reqURL,
			Raw:        truncate(string(body), maxRawBody),
		}
	}

	parsed, err := ParseResponse(body)
	if err != nil {
		return nil, &QueryError{
			Status:     resp.StatusCode,
			Reason:     ErrNonJSON.Error(),
			RequestURL: reqURL,
			Raw:        truncate(string(body), maxRawBody),
			Err:        ErrNonJSON,
		}
	}

	return &SearchResult{RequestURL: reqURL, Body: body, Response: parsed}, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
