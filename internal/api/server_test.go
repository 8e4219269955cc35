package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/homiecast/core/internal/history"
	"github.com/homiecast/core/internal/homie"
	"github.com/homiecast/core/internal/infrastructure/config"
	"github.com/homiecast/core/internal/infrastructure/logging"
)

// nullTransport accepts every publish.
type nullTransport struct{}

func (nullTransport) Publish(topic, payload string, retained bool) error { return nil }

// fakeHistory returns canned records.
type fakeHistory struct {
	records []history.ValueRecord
	err     error
	limit   int
}

func (f *fakeHistory) Record(ctx context.Context, deviceID, nodeID, propertyID, value string) error {
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, deviceID, nodeID, propertyID string, limit int) ([]history.ValueRecord, error) {
	f.limit = limit
	return f.records, f.err
}

func (f *fakeHistory) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

// testServer builds a server around a small published device tree.
func testServer(t *testing.T, repo history.Repository) *Server {
	t.Helper()

	device, err := homie.NewDevice(nullTransport{}, "homie", "kitchen-hub", "Kitchen Hub")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}

	lamp, err := device.AddNode("lamp", "Lamp", "light")
	if err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	power, err := lamp.AddBoolean("power", homie.PropertyOptions{Name: "Power"})
	if err != nil {
		t.Fatalf("AddBoolean() error = %v", err)
	}
	if err := power.Update(true); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := lamp.AddInteger("brightness", &homie.IntRange{Min: 0, Max: 100}, homie.PropertyOptions{Unit: "%"}); err != nil {
		t.Fatalf("AddInteger() error = %v", err)
	}

	server, err := New(Deps{
		Config:  config.APIConfig{Enabled: true, Host: "127.0.0.1", Port: 0},
		Logger:  logging.Default(),
		Device:  device,
		History: repo,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return server
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, req)
	return rec
}

// TestNewValidation verifies required dependencies.
func TestNewValidation(t *testing.T) {
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without device expected error")
	}

	device, err := homie.NewDevice(nullTransport{}, "", "dev", "Dev")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if _, err := New(Deps{Device: device}); err == nil {
		t.Error("New() without logger expected error")
	}
}

// TestHandleHealth verifies the health endpoint payload.
func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)
	rec := doRequest(t, s, "/api/v1/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["device"] != "kitchen-hub" {
		t.Errorf("device field = %v, want kitchen-hub", body["device"])
	}

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

// TestHandleGetDevice verifies the device tree payload.
func TestHandleGetDevice(t *testing.T) {
	s := testServer(t, nil)
	rec := doRequest(t, s, "/api/v1/device")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body deviceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if body.ID != "kitchen-hub" || body.Topic != "homie/kitchen-hub" {
		t.Errorf("device = %q topic = %q, want kitchen-hub homie/kitchen-hub", body.ID, body.Topic)
	}
	if len(body.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(body.Nodes))
	}

	node := body.Nodes[0]
	if node.ID != "lamp" || node.Type != "light" {
		t.Errorf("node = %q/%q, want lamp/light", node.ID, node.Type)
	}
	if len(node.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(node.Properties))
	}

	power := node.Properties[0]
	if power.ID != "power" || power.Datatype != "boolean" {
		t.Errorf("property = %q/%q, want power/boolean", power.ID, power.Datatype)
	}
	if power.Value == nil || *power.Value != "true" {
		t.Errorf("power value = %v, want true", power.Value)
	}

	brightness := node.Properties[1]
	if brightness.Format != "0:100" {
		t.Errorf("brightness format = %q, want 0:100", brightness.Format)
	}
	if brightness.Value != nil {
		t.Errorf("brightness value = %v, want nil (never published)", brightness.Value)
	}
}

// TestHandleGetHistory verifies the history endpoint.
func TestHandleGetHistory(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeHistory{
		records: []history.ValueRecord{
			{DeviceID: "kitchen-hub", NodeID: "lamp", PropertyID: "power", Value: "false", RecordedAt: now},
			{DeviceID: "kitchen-hub", NodeID: "lamp", PropertyID: "power", Value: "true", RecordedAt: now.Add(-time.Minute)},
		},
	}
	s := testServer(t, repo)

	rec := doRequest(t, s, "/api/v1/device/history/lamp/power")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(body.Entries))
	}
	if body.Entries[0].Value != "false" {
		t.Errorf("entries[0].Value = %q, want false", body.Entries[0].Value)
	}
	if repo.limit != defaultHistoryLimit {
		t.Errorf("limit passed to repository = %d, want %d", repo.limit, defaultHistoryLimit)
	}
}

// TestHandleGetHistoryErrors verifies error responses.
func TestHandleGetHistoryErrors(t *testing.T) {
	t.Run("unknown node", func(t *testing.T) {
		s := testServer(t, &fakeHistory{})
		rec := doRequest(t, s, "/api/v1/device/history/nope/power")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("unknown property", func(t *testing.T) {
		s := testServer(t, &fakeHistory{})
		rec := doRequest(t, s, "/api/v1/device/history/lamp/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		s := testServer(t, &fakeHistory{})
		rec := doRequest(t, s, "/api/v1/device/history/lamp/power?limit=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("limit clamped", func(t *testing.T) {
		repo := &fakeHistory{}
		s := testServer(t, repo)
		rec := doRequest(t, s, "/api/v1/device/history/lamp/power?limit=9999")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if repo.limit != maxHistoryLimit {
			t.Errorf("limit passed to repository = %d, want %d", repo.limit, maxHistoryLimit)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		s := testServer(t, &fakeHistory{err: errors.New("disk error")})
		rec := doRequest(t, s, "/api/v1/device/history/lamp/power")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
	})

	t.Run("history not configured", func(t *testing.T) {
		s := testServer(t, nil)
		rec := doRequest(t, s, "/api/v1/device/history/lamp/power")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}
