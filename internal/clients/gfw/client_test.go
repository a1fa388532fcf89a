package gfw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/levilina/marine-data-backend/internal/logger"
)

func testClient(t *testing.T, baseURL string) Client {
	t.Helper()
	t.Setenv("GFW_API_TOKEN", "test-token")
	t.Setenv("GFW_BASE_URL", baseURL)
	t.Setenv("GFW_MAX_RETRIES", "3")

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv("GFW_API_TOKEN", "")
	log, _ := logger.New("test")
	if _, err := NewClient(log); err == nil {
		t.Fatal("expected error without GFW_API_TOKEN")
	}
}

func TestSearchVessels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/vessels/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "9123456" {
			t.Errorf("query = %q", q.Get("query"))
		}
		if q.Get("datasets[0]") != DatasetVesselIdentity {
			t.Errorf("datasets[0] = %q", q.Get("datasets[0]"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"entries": []map[string]any{{
				"selfReportedInfo": []map[string]any{{
					"id":       "ssid-1",
					"shipname": "NDAR",
					"flag":     "SEN",
					"imo":      "9123456",
				}},
			}},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	entries, err := c.SearchVessels(context.Background(), "9123456")
	if err != nil {
		t.Fatalf("SearchVessels: %v", err)
	}
	if len(entries) != 1 || entries[0].GFWID() != "ssid-1" {
		t.Fatalf("entries: %+v", entries)
	}
}

func TestListEventsPagination(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		if q.Get("vessels[0]") != "ssid-1" || q.Get("datasets[0]") != DatasetFishingEvents {
			t.Errorf("unexpected query: %v", q)
		}
		if n == 1 {
			entries := make([]map[string]any, 100)
			for i := range entries {
				entries[i] = map[string]any{
					"id":    "ev",
					"start": "2023-01-01T00:00:00.000Z",
					"end":   "2023-01-01T04:00:00.000Z",
				}
			}
			next := 100
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total":      101,
				"nextOffset": next,
				"entries":    entries,
			})
			return
		}
		if q.Get("offset") != "100" {
			t.Errorf("second page offset = %q", q.Get("offset"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 101,
			"entries": []map[string]any{{
				"id":    "ev-last",
				"start": "2023-01-02T00:00:00.000Z",
				"end":   "2023-01-02T04:00:00.000Z",
			}},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	events, err := c.ListEvents(context.Background(), "ssid-1", DatasetFishingEvents, start, end)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 101 {
		t.Fatalf("events = %d, want 101", len(events))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"entries": []map[string]any{}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.SearchVessels(context.Background(), "NDAR"); err != nil {
		t.Fatalf("SearchVessels after 429: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.SearchVessels(context.Background(), "NDAR")
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestParseEventTime(t *testing.T) {
	if _, err := ParseEventTime("2023-01-01T00:00:00.000Z"); err != nil {
		t.Errorf("millisecond form: %v", err)
	}
	if _, err := ParseEventTime("2023-01-01T00:00:00Z"); err != nil {
		t.Errorf("RFC3339 form: %v", err)
	}
	if _, err := ParseEventTime("not-a-time"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
	if _, err := ParseEventTime(""); err == nil {
		t.Error("expected error for empty timestamp")
	}
}
