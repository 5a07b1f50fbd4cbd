package loadtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func floatPtr(v float64) *float64 { return &v }

func hit(id string, score int, distance *float64) model.DiscoveryResult {
	return model.DiscoveryResult{
		ID:             id,
		Name:           "Session " + id,
		ScheduledAt:    time.Now().Add(24 * time.Hour),
		MaxPlayers:     8,
		RelevanceScore: score,
		DistanceKm:     distance,
	}
}

func TestVerify(t *testing.T) {
	t.Run("clean non-geo response", func(t *testing.T) {
		resp := model.DiscoveryResponse{
			Sessions:   []model.DiscoveryResult{hit("a", 90, nil), hit("b", 70, nil)},
			TotalCount: 2,
		}
		if msgs := verify(resp, url.Values{}); len(msgs) != 0 {
			t.Fatalf("expected no violations, got %v", msgs)
		}
	})

	t.Run("clean geo response", func(t *testing.T) {
		q := url.Values{}
		q.Set("latitude", "40.7")
		q.Set("longitude", "-74.0")
		q.Set("radius", "10")
		resp := model.DiscoveryResponse{
			Sessions:     []model.DiscoveryResult{hit("a", 80, floatPtr(3.2))},
			TotalCount:   1,
			SearchRadius: floatPtr(10),
		}
		if msgs := verify(resp, q); len(msgs) != 0 {
			t.Fatalf("expected no violations, got %v", msgs)
		}
	})

	t.Run("score out of bounds", func(t *testing.T) {
		resp := model.DiscoveryResponse{Sessions: []model.DiscoveryResult{hit("a", 120, nil)}}
		if msgs := verify(resp, url.Values{}); len(msgs) != 1 {
			t.Fatalf("expected one violation, got %v", msgs)
		}
	})

	t.Run("ascending scores", func(t *testing.T) {
		resp := model.DiscoveryResponse{
			Sessions: []model.DiscoveryResult{hit("a", 50, nil), hit("b", 80, nil)},
		}
		if msgs := verify(resp, url.Values{}); len(msgs) != 1 {
			t.Fatalf("expected one violation, got %v", msgs)
		}
	})

	t.Run("distance beyond radius", func(t *testing.T) {
		q := url.Values{}
		q.Set("latitude", "40.7")
		q.Set("longitude", "-74.0")
		q.Set("radius", "5")
		resp := model.DiscoveryResponse{
			Sessions:     []model.DiscoveryResult{hit("a", 60, floatPtr(12))},
			SearchRadius: floatPtr(5),
		}
		if msgs := verify(resp, q); len(msgs) != 1 {
			t.Fatalf("expected one violation, got %v", msgs)
		}
	})

	t.Run("limit exceeded", func(t *testing.T) {
		q := url.Values{}
		q.Set("limit", "1")
		resp := model.DiscoveryResponse{
			Sessions: []model.DiscoveryResult{hit("a", 90, nil), hit("b", 80, nil)},
		}
		if msgs := verify(resp, q); len(msgs) != 1 {
			t.Fatalf("expected one violation, got %v", msgs)
		}
	})
}

func TestRunAgainstHealthyServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		resp := model.DiscoveryResponse{TotalCount: 0, Sessions: []model.DiscoveryResult{}}
		if q.Get("latitude") != "" {
			radius := 50.0
			if raw := q.Get("radius"); raw != "" {
				if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
					radius = parsed
				}
			}
			resp.SearchRadius = &radius
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": resp})
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL, NumQueries: 40, Workers: 4, Timeout: 2 * time.Second}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
}

func TestRunReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL, NumQueries: 5, Workers: 2, Timeout: 2 * time.Second}
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for failing server")
	}
}
