package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/config"
	"github.com/joeblew999/plat-draw/internal/route"
	"github.com/joeblew999/plat-draw/internal/server"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.New(server.Config{
		Host:   "localhost",
		Port:   "0",
		Engine: config.Default(),
		Fetcher: route.FetcherFunc(func(ctx context.Context, from, to orb.Point, p route.Profile) (route.Segment, error) {
			return route.StraightLine(from, to, p), nil
		}),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t)

	var health struct {
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health.Status)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts := testServer(t)

	var created struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", nil, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, created.ID)

	base := fmt.Sprintf("%s/api/v1/sessions/%s", ts.URL, created.ID)

	// Draw a line.
	resp = doJSON(t, http.MethodPost, base+"/mode", map[string]string{"mode": "line"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, p := range [][2]float64{{13.4, 52.5}, {13.5, 52.5}} {
		resp = doJSON(t, http.MethodPost, base+"/events",
			map[string]any{"type": "pointerdown", "lng": p[0], "lat": p[1]}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, base+"/events",
		map[string]any{"type": "keyup", "key": "Enter"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fc struct {
		Features []struct {
			ID       string         `json:"id"`
			Geometry map[string]any `json:"geometry"`
		} `json:"features"`
	}
	resp = doJSON(t, http.MethodGet, base+"/features", nil, &fc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "LineString", fc.Features[0].Geometry["type"])

	// Measure it, then read labels.
	var m struct {
		ID string `json:"id"`
	}
	resp = doJSON(t, http.MethodPost, base+"/measurements",
		map[string]string{"drawFeatureId": fc.Features[0].ID, "type": "line"}, &m)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, m.ID)

	var labels struct {
		Labels []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"labels"`
	}
	resp = doJSON(t, http.MethodGet, base+"/labels", nil, &labels)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, labels.Labels, 1)
	assert.Equal(t, "length", labels.Labels[0].Kind)
	assert.NotEmpty(t, labels.Labels[0].Text)

	resp = doJSON(t, http.MethodDelete, base, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownSessionIs404(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/sessions/s999/state", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadModeRejected(t *testing.T) {
	ts := testServer(t)

	var created struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", nil, &created)

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/v1/sessions/%s/mode", ts.URL, created.ID),
		map[string]string{"mode": "line", "profile": "walking"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/v1/sessions/%s/events", ts.URL, created.ID),
		map[string]string{"type": "wiggle"}, nil)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestMeasurementNeedsLiveFeature(t *testing.T) {
	ts := testServer(t)

	var created struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", nil, &created)

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/v1/sessions/%s/measurements", ts.URL, created.ID),
		map[string]string{"drawFeatureId": "f404", "type": "line"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpenAPIIncludesRoutes(t *testing.T) {
	srv := server.New(server.Config{Host: "localhost", Port: "0", Engine: config.Default()})
	spec := srv.OpenAPI()
	require.NotNil(t, spec.Paths)
	assert.Contains(t, spec.Paths, "/api/v1/sessions/{id}/events")
	assert.Contains(t, spec.Paths, "/api/v1/sessions/{id}/stream")
}
