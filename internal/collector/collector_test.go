package collector

import (
	"context"
	"strings"
	"testing"
	"time"

	"limelight/internal/core"
	"limelight/internal/fetch"
	"limelight/internal/search"
)

func weekStart() time.Time {
	return time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
}

func TestCollect_ClassifiesAndDedupes(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindNews {
			return &search.Response{News: []search.Result{
				{Title: "Profile piece", URL: "https://news.example.com/a", Snippet: "  spaced   out  "},
				{Title: "Clip", URL: "https://www.youtube.com/watch?v=abc"},
			}}, nil
		}
		switch {
		case strings.Contains(query, "interview OR statement"):
			return &search.Response{Results: []search.Result{
				{Title: "Dup", URL: "https://news.example.com/a"},
				{Title: "Thread", URL: "https://x.com/ada/status/99"},
				{Title: "Blog", URL: "https://blog.example.com/post"},
			}}, nil
		case strings.Contains(query, "site:twitter.com OR site:x.com"):
			return &search.Response{Results: []search.Result{
				{Title: "Post", URL: "https://x.com/ada/status/100"},
				{Title: "Profile page", URL: "https://x.com/ada"},
			}}, nil
		default:
			return &search.Response{Results: []search.Result{
				{Title: "Video", URL: "https://youtu.be/xyz"},
				{Title: "Not video", URL: "https://example.com/video"},
			}}, nil
		}
	}

	c := New(provider, nil, nil, nil)
	items := c.Collect(context.Background(), "Ada Example", weekStart(), nil)

	byURL := map[string]core.Candidate{}
	for _, item := range items {
		byURL[item.URL] = item
	}

	if got := byURL["https://news.example.com/a"]; got.SourceType != core.SourceTypeNews {
		t.Errorf("news item type = %q, want news (first-wins dedup)", got.SourceType)
	}
	if got := byURL["https://news.example.com/a"]; got.Snippet != "spaced out" {
		t.Errorf("snippet = %q, want sanitized", got.Snippet)
	}
	if got := byURL["https://www.youtube.com/watch?v=abc"]; got.SourceType != core.SourceTypeVideo {
		t.Errorf("news video type = %q, want video", got.SourceType)
	}
	if got := byURL["https://x.com/ada/status/99"]; got.SourceType != core.SourceTypeSocial {
		t.Errorf("search social type = %q, want social", got.SourceType)
	}
	if got := byURL["https://blog.example.com/post"]; got.SourceType != core.SourceTypeWeb {
		t.Errorf("web type = %q, want web", got.SourceType)
	}
	if _, ok := byURL["https://x.com/ada"]; ok {
		t.Error("profile landing page survived the social post filter")
	}
	if got := byURL["https://youtu.be/xyz"]; got.SourceType != core.SourceTypeVideo {
		t.Errorf("video type = %q, want video", got.SourceType)
	}

	newsCount := 0
	for _, item := range items {
		if item.URL == "https://news.example.com/a" {
			newsCount++
		}
	}
	if newsCount != 1 {
		t.Errorf("duplicate URL appeared %d times, want 1", newsCount)
	}
}

func TestCollect_FallbackVideoSearch(t *testing.T) {
	var sawFallback bool
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if strings.HasSuffix(query, " youtube") {
			sawFallback = true
			return &search.Response{Results: []search.Result{
				{Title: "Late clip", URL: "https://www.youtube.com/watch?v=late"},
			}}, nil
		}
		return &search.Response{}, nil
	}

	c := New(provider, nil, nil, nil)
	items := c.Collect(context.Background(), "Ada Example", weekStart(), nil)

	if !sawFallback {
		t.Fatal("fallback video search never ran")
	}
	if len(items) != 1 || items[0].SourceType != core.SourceTypeVideo {
		t.Errorf("items = %+v, want the fallback video", items)
	}
}

func TestCollect_CustomSourcesWithoutSearch(t *testing.T) {
	fetcher := fetch.NewFetcher(false, 12000)
	c := New(nil, nil, fetcher, nil)

	items := c.Collect(context.Background(), "Ada Example", weekStart(), []core.CustomSource{
		{Label: "Newsletter", URL: "https://letters.example.com"},
		{URL: "https://blog.example.com"},
	})

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Title != "Newsletter" || items[0].SourceType != core.SourceTypeCustom {
		t.Errorf("custom item = %+v", items[0])
	}
	if items[0].Snippet != "Custom source: https://letters.example.com" {
		t.Errorf("snippet = %q, want placeholder", items[0].Snippet)
	}
	if items[1].Title != "https://blog.example.com" {
		t.Errorf("label fallback = %q, want URL", items[1].Title)
	}
	if items[0].Date != "2025-03-03" {
		t.Errorf("date = %q, want week start", items[0].Date)
	}
}

func TestCollect_ProviderFailureYieldsCustomOnly(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		return nil, &search.ProviderError{Status: 503}
	}
	fetcher := fetch.NewFetcher(false, 12000)

	c := New(provider, nil, fetcher, nil)
	items := c.Collect(context.Background(), "Ada Example", weekStart(), []core.CustomSource{
		{Label: "Site", URL: "https://ada.example.com"},
	})

	if len(items) != 1 || items[0].SourceType != core.SourceTypeCustom {
		t.Errorf("items = %+v, want only the custom source", items)
	}
}
