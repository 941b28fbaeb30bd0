package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ekiroute/pkg/ekispert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const okBody = `{"ResultSet":{"Course":{"Route":{"distance":"45"}}}}`

// newProxy starts the proxy in front of a mock provider served by provider.
func newProxy(t *testing.T, provider http.HandlerFunc) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(provider)
	t.Cleanup(upstream.Close)

	s := New(zap.NewNop(), WithClientOptions(ekispert.WithEndpoint(upstream.URL)))
	proxy := httptest.NewServer(s.Handler())
	t.Cleanup(proxy.Close)
	return proxy
}

func post(t *testing.T, proxy *httptest.Server, body string) (int, ekispert.RouteReply) {
	t.Helper()
	resp, err := http.Post(proxy.URL+RoutePath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply ekispert.RouteReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return resp.StatusCode, reply
}

const validRequest = `{"apiKey":"k","originLat":33.5902,"originLng":"130.4017","destLat":"33.5903","destLng":130.4208}`

func TestRoute_Success(t *testing.T) {
	var gotVia string
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		gotVia = r.URL.Query().Get("viaList")
		w.Write([]byte(okBody))
	})

	status, reply := post(t, proxy, validRequest)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, reply.Error)
	assert.Contains(t, reply.RequestURL, "key=k")
	assert.JSONEq(t, okBody, string(reply.Data))
	assert.Equal(t, "33.5902,130.4017,wgs84:33.5903,130.4208,wgs84", gotVia)
}

func TestRoute_Validation(t *testing.T) {
	calls := 0
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing key", `{"originLat":1,"originLng":2,"destLat":3,"destLng":4}`, msgMissingKey},
		{"blank key", `{"apiKey":"  ","originLat":1,"originLng":2,"destLat":3,"destLng":4}`, msgMissingKey},
		{"missing coordinate", `{"apiKey":"k","originLat":1,"originLng":2,"destLat":3}`, msgMissingCoords},
		{"null coordinate", `{"apiKey":"k","originLat":1,"originLng":null,"destLat":3,"destLng":4}`, msgMissingCoords},
		{"not json", `apiKey=k`, msgBadBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reply := post(t, proxy, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, reply.Error)
		})
	}
	assert.Zero(t, calls, "invalid requests must not reach the provider")
}

func TestRoute_ProviderHTTPError(t *testing.T) {
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ResultSet":{"Error":{"Message":"invalid key"}}}`))
	})

	status, reply := post(t, proxy, validRequest)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "HTTP 403", reply.Error)
	assert.NotEmpty(t, reply.RequestURL)
	assert.Contains(t, reply.Raw, "invalid key")
}

func TestRoute_ProviderNonJSON(t *testing.T) {
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})

	status, reply := post(t, proxy, validRequest)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, msgNonJSON, reply.Error)
	assert.Equal(t, "<html>maintenance</html>", reply.Raw)
}

func TestRoute_TransportFault(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	s := New(nil, WithClientOptions(ekispert.WithEndpoint(upstream.URL)))
	proxy := httptest.NewServer(s.Handler())
	defer proxy.Close()

	status, reply := post(t, proxy, validRequest)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.True(t, strings.HasPrefix(reply.Error, "request failed: "), reply.Error)
	assert.Empty(t, reply.Raw)
}

func TestProxyClientThroughServer(t *testing.T) {
	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okBody))
	})

	client, err := ekispert.NewProxyClient(proxy.URL+RoutePath, "k")
	require.NoError(t, err)

	result, err := client.SearchCourse(context.Background(), ekispert.LatLng{Lat: "33.5902", Lng: "130.4017"}, ekispert.LatLng{Lat: "33.5903", Lng: "130.4208"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Response.CourseCount())
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New(nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, RoutePath, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	New(nil).Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
