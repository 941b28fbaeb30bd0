package ekispert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordText_Unmarshal(t *testing.T) {
	var req RouteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"apiKey":"k","originLat":33.59,"originLng":"130.40","destLat":null}`), &req))

	assert.Equal(t, CoordText("33.59"), req.OriginLat)
	assert.Equal(t, CoordText("130.40"), req.OriginLng)
	assert.Equal(t, CoordText(""), req.DestLat)
	assert.False(t, req.HasCoordinates())

	err := json.Unmarshal([]byte(`{"originLat":true}`), &req)
	assert.Error(t, err)
}

func TestProxyClient_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode proxy request: %v", err)
			return
		}
		if req.APIKey != "secret" || req.Origin() != fukuokaCityHall || req.Destination() != hakataStation {
			t.Errorf("unexpected proxy request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RouteReply{
			RequestURL: "https://api.example.test/search",
			Data:       json.RawMessage(`{"ResultSet":{"Course":{"Route":{"distance":"125"}}}}`),
		})
	}))
	defer server.Close()

	client, err := NewProxyClient(server.URL, "secret")
	require.NoError(t, err)

	result, err := client.SearchCourse(context.Background(), fukuokaCityHall, hakataStation)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/search", result.RequestURL)

	course, ok := result.Response.BestCourse()
	require.True(t, ok)
	assert.InDelta(t, 12.5, DistanceKm(*course.Route), 1e-12)
}

func TestProxyClient_ErrorReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(RouteReply{
			Error:      "HTTP 403",
			RequestURL: "https://api.example.test/search",
			Raw:        `{"ResultSet":{"Error":{"Message":"forbidden"}}}`,
		})
	}))
	defer server.Close()

	client, err := NewProxyClient(server.URL, "secret")
	require.NoError(t, err)

	_, err = client.SearchCourse(context.Background(), fukuokaCityHall, hakataStation)
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, http.StatusForbidden, qe.Status)
	assert.Equal(t, `HTTP 403 | URL=https://api.example.test/search | BODY={"ResultSet":{"Error":{"Message":"forbidden"}}}`, err.Error())
}

func TestProxyClient_MissingKey(t *testing.T) {
	_, err := NewProxyClient("http://localhost:8080/api/ekispert/route", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
