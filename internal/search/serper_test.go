package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSerper_MissingKey(t *testing.T) {
	if _, err := NewSerper(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func newTestSerper(t *testing.T, handler http.HandlerFunc) (*Serper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	provider, err := NewSerper("test-key")
	if err != nil {
		t.Fatalf("NewSerper failed: %v", err)
	}
	provider.baseURL = server.URL
	return provider, server
}

func TestSerperSearch(t *testing.T) {
	var gotPath string
	var gotBody serperRequest
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing X-API-KEY header")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "A", "link": "https://a.example", "snippet": "s", "position": 1},
			},
			"knowledgeGraph": map[string]any{
				"title": "Ada Example", "type": "Engineer", "imageUrl": "https://img.example/a.jpg",
			},
		})
	})

	resp, err := provider.Search(context.Background(), "ada example", KindSearch, Config{MaxResults: 5, Window: WindowWeek})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotPath != "/search" {
		t.Errorf("path = %s, want /search", gotPath)
	}
	if gotBody.Q != "ada example" || gotBody.Num != 5 || gotBody.TBS != "qdr:w" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://a.example" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if resp.Graph == nil || resp.Graph.Type != "Engineer" {
		t.Errorf("knowledge graph not parsed: %+v", resp.Graph)
	}
}

func TestSerperSearch_FaceFilter(t *testing.T) {
	var gotBody serperRequest
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"images": []map[string]any{}})
	})

	_, err := provider.Search(context.Background(), "portrait", KindImages, Config{FaceFilter: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotBody.TBS != "itp:face" {
		t.Errorf("tbs = %q, want itp:face", gotBody.TBS)
	}
}

func TestSerperSearch_ProviderError(t *testing.T) {
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	})

	_, err := provider.Search(context.Background(), "x", KindSearch, Config{})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", provErr.Status)
	}
	if provErr.Body == "" {
		t.Error("expected error body to be captured")
	}
}

func TestMockProvider(t *testing.T) {
	mock := NewMock()
	resp, err := mock.Search(context.Background(), "anything", KindNews, Config{})
	if err != nil {
		t.Fatalf("mock search failed: %v", err)
	}
	if len(resp.Results) != 0 || len(resp.News) != 0 {
		t.Errorf("default mock should return empty response")
	}
}
