package fleettracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/config"
	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cat, err := catalog.New([]catalog.Asset{
		{ID: "ragama", Kind: catalog.KindStop, DisplayName: "Ragama",
			Position: &geo.Position{Latitude: 7.0310, Longitude: 79.9218}},
		{ID: "pettah", Kind: catalog.KindStop, DisplayName: "Pettah",
			Position: &geo.Position{Latitude: 6.9368, Longitude: 79.8584}},
		{ID: "train-1", Kind: catalog.KindVehicle, DisplayName: "Udarata Menike", Status: catalog.StatusOnTime},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.ParseAppConfig([]byte("catalog:\n  path: unused.yml\nsync:\n  pollIntervalMS: 50\n"))
	if err != nil {
		t.Fatal(err)
	}
	tracker := tracking.NewTracker(cat, cfg.Region.Bounds, cfg.Sync.EventBuffer,
		time.Duration(cfg.Sync.PollIntervalMS)*time.Millisecond)
	srv := NewServer(cfg, tracker)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := testServer(t)
	var h healthResponse
	if code := getJSON(t, ts.URL+"/api/health", &h); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if h.Status != "ok" || h.Vehicles != 1 || h.Stops != 2 || h.Positioned != 2 {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestWriteAndReadPosition(t *testing.T) {
	_, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/assets/train-1/position",
		positionRequest{Latitude: 6.97, Longitude: 79.89})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("write status %d", resp.StatusCode)
	}

	var v assetView
	if code := getJSON(t, ts.URL+"/api/assets/train-1/position", &v); code != http.StatusOK {
		t.Fatalf("read status %d", code)
	}
	if v.Latitude != 6.97 || v.Longitude != 79.89 || v.DisplayName != "Udarata Menike" {
		t.Errorf("unexpected view: %+v", v)
	}
}

func TestWritePositionRejections(t *testing.T) {
	_, ts := testServer(t)

	tests := []struct {
		name     string
		id       string
		body     any
		wantCode int
		wantWord string
	}{
		{
			name:     "unknown asset",
			id:       "ghost-train",
			body:     positionRequest{Latitude: 6.97, Longitude: 79.89},
			wantCode: http.StatusNotFound,
			wantWord: "unknown asset",
		},
		{
			name:     "out of bounds",
			id:       "train-1",
			body:     positionRequest{Latitude: 0, Longitude: 0},
			wantCode: http.StatusUnprocessableEntity,
			wantWord: "outside operating region",
		},
		{
			name:     "garbage body",
			id:       "train-1",
			body:     nil,
			wantCode: http.StatusBadRequest,
			wantWord: "invalid body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.body == nil {
				r, err := http.Post(ts.URL+"/api/assets/"+tt.id+"/position", "application/json",
					strings.NewReader("{{{"))
				if err != nil {
					t.Fatal(err)
				}
				resp = r
			} else {
				resp = postJSON(t, ts.URL+"/api/assets/"+tt.id+"/position", tt.body)
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var ep errorPayload
			if err := json.NewDecoder(resp.Body).Decode(&ep); err != nil {
				t.Fatal(err)
			}
			// the operator needs the specific reason, not a generic failure
			if !strings.Contains(ep.Error, tt.wantWord) {
				t.Errorf("error %q does not name the reason %q", ep.Error, tt.wantWord)
			}
		})
	}
}

func TestReadPositionNeverPositioned(t *testing.T) {
	_, ts := testServer(t)
	if code := getJSON(t, ts.URL+"/api/assets/train-1/position", nil); code != http.StatusNoContent {
		t.Errorf("status %d, want 204", code)
	}
}

func TestNearestStopEndpoint(t *testing.T) {
	_, ts := testServer(t)

	var nr nearestResponse
	url := fmt.Sprintf("%s/api/stops/nearest?lat=%v&lon=%v", ts.URL, 6.97, 79.89)
	if code := getJSON(t, url, &nr); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if nr.Stop.ID != "pettah" {
		t.Errorf("nearest = %s, want pettah", nr.Stop.ID)
	}
	if math.Abs(nr.DistanceKM-5.078778893834976) > 1e-9 {
		t.Errorf("distance = %.12f", nr.DistanceKM)
	}

	if code := getJSON(t, ts.URL+"/api/stops/nearest?lat=abc&lon=79.89", nil); code != http.StatusBadRequest {
		t.Errorf("bad params status %d, want 400", code)
	}
}

func TestListAssets(t *testing.T) {
	_, ts := testServer(t)
	resp := postJSON(t, ts.URL+"/api/assets/train-1/position",
		positionRequest{Latitude: 6.97, Longitude: 79.89})
	_ = resp.Body.Close()

	var views []assetView
	if code := getJSON(t, ts.URL+"/api/assets", &views); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 positioned assets, got %d", len(views))
	}
	// roster order: stops first as listed, then the vehicle
	if views[0].ID != "ragama" || views[1].ID != "pettah" || views[2].ID != "train-1" {
		t.Errorf("unexpected order: %s, %s, %s", views[0].ID, views[1].ID, views[2].ID)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, ts := testServer(t)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/assets/train-1/status",
		strings.NewReader(`{"status":"delayed"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d, want 204", resp.StatusCode)
	}

	if _, err := srv.tracker.Write("train-1", geo.Position{Latitude: 6.97, Longitude: 79.89}); err != nil {
		t.Fatal(err)
	}
	rec, _ := srv.tracker.ReadRecord("train-1")
	if rec.Status != catalog.StatusDelayed {
		t.Errorf("status = %v, want delayed", rec.Status)
	}
}

func TestWebSocketSession(t *testing.T) {
	srv, ts := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	// the immediate poll pushes a full snapshot first
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first wsMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial message: %v", err)
	}
	if first.Type != "snapshot" || len(first.Assets) != 2 {
		t.Fatalf("expected initial snapshot of 2 stops, got %+v", first)
	}

	// a committed write reaches the session
	if _, err := srv.tracker.Write("train-1", geo.Position{Latitude: 6.97, Longitude: 79.89}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("no message carrying train-1 arrived")
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "update" && msg.Asset != nil && msg.Asset.ID == "train-1" {
			return
		}
		for _, a := range msg.Assets {
			if a.ID == "train-1" {
				return
			}
		}
	}
}
