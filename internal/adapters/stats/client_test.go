package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"explorewithme/internal/domain"
)

func TestRecordHit(t *testing.T) {
	var got hitPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/hit" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.Client())
	err := client.RecordHit(context.Background(), domain.EndpointHit{
		App:       "explore-with-me",
		URI:       "/events/7",
		IP:        "10.0.0.1",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URI != "/events/7" || got.Timestamp != "2025-06-01 12:00:00" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestGetStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("unique") != "true" {
			t.Errorf("expected unique=true, got %q", q.Get("unique"))
		}
		if len(q["uris"]) != 2 {
			t.Errorf("expected two uris, got %v", q["uris"])
		}
		json.NewEncoder(w).Encode([]domain.ViewStats{
			{App: "explore-with-me", URI: "/events/7", Hits: 12},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.Client())
	stats, err := client.GetStats(context.Background(),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		[]string{"/events/7", "/events/8"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 1 || stats[0].Hits != 12 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestGetStats_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.Client())
	if _, err := client.GetStats(context.Background(), time.Now().Add(-time.Hour), time.Now(), nil, false); err == nil {
		t.Fatal("expected an error")
	}
}
