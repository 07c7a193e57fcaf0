// handlers_status_test.go - Tests for status and flag handlers
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/elite-status-check/backend/internal/models"
	"github.com/elite-status-check/backend/internal/testutil"
)

// Ensure the testutil fakes implement the source interfaces
var (
	_ StatusSource  = (*testutil.FakeStatusSource)(nil)
	_ CargoSource   = (*testutil.FakeCargoSource)(nil)
	_ JournalSource = (*testutil.FakeJournalSource)(nil)
	_ SystemTracker = (*testutil.FakeSystemTracker)(nil)
)

func TestStatusHandler_HandleGetStatus(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*testutil.FakeStatusSource)
		wantErr    bool
		wantStatus int
	}{
		{
			name:       "no snapshot yet",
			setup:      func(*testutil.FakeStatusSource) {},
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "snapshot available",
			setup: func(src *testutil.FakeStatusSource) {
				src.SetSnapshot(models.StatusSnapshot{
					Flags: 16777240,
					Raw: map[string]any{
						"Flags": float64(16777240),
						"Pips":  []any{float64(4), float64(8), float64(0)},
					},
					ObservedAt: time.Now(),
				})
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := testutil.NewFakeStatusSource()
			tt.setup(source)
			handler := NewStatusHandler(source)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleGetStatus(c)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp models.StatusResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if _, ok := resp.Status["Pips"]; !ok {
				t.Error("expected raw Pips field to pass through")
			}
		})
	}
}

func TestStatusHandler_HandleGetFlags(t *testing.T) {
	source := testutil.NewFakeStatusSource()
	source.SetSnapshot(models.StatusSnapshot{
		Flags:      69239048,
		ObservedAt: time.Now(),
	})
	handler := NewStatusHandler(source)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/flags", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleGetFlags(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp models.FlagsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Flags) != 52 {
		t.Errorf("expected 52 flags, got %d", len(resp.Flags))
	}

	for _, name := range []string{"shields_up", "lights_on", "srv_drive_assist", "has_lat_long", "in_srv"} {
		if !resp.Flags[name] {
			t.Errorf("expected %s to be true", name)
		}
	}
	if resp.Flags["docked"] {
		t.Error("expected docked to be false")
	}
}

func TestStatusHandler_HandleGetFlagsMsgpack(t *testing.T) {
	source := testutil.NewFakeStatusSource()
	source.SetSnapshot(models.StatusSnapshot{Flags: 1, ObservedAt: time.Now()})
	handler := NewStatusHandler(source)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/flags/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleGetFlagsMsgpack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/msgpack" {
		t.Errorf("expected application/msgpack, got %s", got)
	}

	var decoded map[string]interface{}
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode msgpack: %v", err)
	}
	flagsMap, ok := decoded["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map, got %T", decoded["flags"])
	}
	if docked, _ := flagsMap["docked"].(bool); !docked {
		t.Error("expected docked to be true")
	}
}

func TestStatusHandler_HandleGetFlag(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		populate   bool
		wantErr    bool
		wantStatus int
		wantValue  bool
	}{
		{
			name:      "set flag",
			flag:      "docked",
			populate:  true,
			wantValue: true,
		},
		{
			name:      "clear flag",
			flag:      "landed",
			populate:  true,
			wantValue: false,
		},
		{
			name:       "unknown flag",
			flag:       "warp_core",
			populate:   true,
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown flag checked before cache state",
			flag:       "warp_core",
			populate:   false,
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no snapshot yet",
			flag:       "docked",
			populate:   false,
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := testutil.NewFakeStatusSource()
			if tt.populate {
				source.SetSnapshot(models.StatusSnapshot{Flags: 1, ObservedAt: time.Now()})
			}
			handler := NewStatusHandler(source)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/status/flags/"+tt.flag, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("name")
			c.SetParamValues(tt.flag)

			err := handler.HandleGetFlag(c)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var resp models.FlagResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if resp.Name != tt.flag {
				t.Errorf("expected name %s, got %s", tt.flag, resp.Name)
			}
			if resp.Value != tt.wantValue {
				t.Errorf("expected value %v, got %v", tt.wantValue, resp.Value)
			}
		})
	}
}
