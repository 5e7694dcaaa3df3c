//go:build integration

// Integration test for the HTTP API. Requires a running server:
//
//	go run ./cmd/draw
//	go test -tags=integration ./pkg/drawclient/
package drawclient_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
)

func baseURL() string {
	if u := os.Getenv("DRAW_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8087"
}

func post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(baseURL()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	resp, err := http.Get(baseURL() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestDrawLineSession(t *testing.T) {
	resp := post(t, "/api/v1/sessions", struct{}{})
	defer resp.Body.Close()
	var sess struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" {
		t.Fatal("empty session id")
	}

	base := fmt.Sprintf("/api/v1/sessions/%s", sess.ID)
	post(t, base+"/mode", map[string]string{"mode": "line"}).Body.Close()
	post(t, base+"/events", map[string]any{"type": "pointerdown", "lng": 13.4, "lat": 52.5}).Body.Close()
	post(t, base+"/events", map[string]any{"type": "pointerdown", "lng": 13.5, "lat": 52.6}).Body.Close()
	post(t, base+"/events", map[string]any{"type": "keyup", "key": "Enter"}).Body.Close()

	fresp, err := http.Get(baseURL() + base + "/features")
	if err != nil {
		t.Fatal(err)
	}
	defer fresp.Body.Close()
	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(fresp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("features=%d, want 1", len(fc.Features))
	}
}
