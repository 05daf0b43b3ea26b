package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okPinger(context.Context) error { return nil }

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		status   int
		redisVal string
	}{
		{"all healthy", okPinger, okPinger, http.StatusOK, "ok"},
		{"redis disabled", okPinger, nil, http.StatusOK, "disabled"},
		{"postgres down", failing, okPinger, http.StatusServiceUnavailable, ""},
		{"redis down", okPinger, failing, http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.postgres, tt.redis).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status != http.StatusOK {
				return
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["redis"] != tt.redisVal || body["postgres"] != "ok" {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}
