package collector

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"limelight/internal/core"
	"limelight/internal/search"
)

func TestCollectBio_NoProvider(t *testing.T) {
	c := New(nil, nil, nil, nil)
	if sources := c.CollectBio(context.Background(), "Ada Example"); len(sources) != 0 {
		t.Errorf("sources = %+v, want empty", sources)
	}
}

func TestCollectBio_ScoringAndOrder(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindNews {
			return &search.Response{News: []search.Result{
				{Title: "Ada Example announces project", URL: "https://news.example.com/ada", Snippet: "Ada Example said"},
			}}, nil
		}
		if strings.Contains(query, "official site") {
			return &search.Response{Results: []search.Result{
				{Title: "Ada Example (@adaexample)", URL: "https://www.instagram.com/adaexample", Snippet: "Ada Example on Instagram"},
			}}, nil
		}
		return &search.Response{Results: []search.Result{
			{Title: "Unrelated listing", URL: "https://shop.example.com/widget", Snippet: "widgets on sale"},
			{Title: "Ada Example biography", URL: "https://en.wikipedia.org/wiki/Ada_Example", Snippet: "Ada Example is a researcher"},
		}}, nil
	}

	c := New(provider, nil, nil, nil)
	sources := c.CollectBio(context.Background(), "Ada Example")

	if len(sources) != 4 {
		t.Fatalf("sources = %d, want 4", len(sources))
	}
	for i := 1; i < len(sources); i++ {
		if sources[i].Score > sources[i-1].Score {
			t.Errorf("sources out of score order at %d: %f > %f", i, sources[i].Score, sources[i-1].Score)
		}
	}

	byURL := map[string]core.BioSource{}
	for _, source := range sources {
		byURL[source.URL] = source
	}
	if got := byURL["https://en.wikipedia.org/wiki/Ada_Example"]; !got.IsStrong {
		t.Error("full-name match not marked strong")
	}
	if got := byURL["https://www.instagram.com/adaexample"]; !got.IsStrong || got.SourceType != core.SourceTypeSocial {
		t.Errorf("profile source = %+v, want strong social", got)
	}
	if got := byURL["https://shop.example.com/widget"]; got.IsStrong {
		t.Error("unrelated listing marked strong")
	}
	if got := byURL["https://news.example.com/ada"]; got.SourceType != core.SourceTypeNews {
		t.Errorf("news source type = %q", got.SourceType)
	}
}

func TestCollectBio_CapsAtTwelve(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		var results []search.Result
		for i := 0; i < 10; i++ {
			results = append(results, search.Result{
				Title:   "Ada Example feature",
				URL:     fmt.Sprintf("https://example.com/%s/%d", kind, i),
				Snippet: "Ada Example profile",
			})
		}
		if kind == search.KindNews {
			return &search.Response{News: results}, nil
		}
		return &search.Response{Results: results}, nil
	}

	c := New(provider, nil, nil, nil)
	sources := c.CollectBio(context.Background(), "Ada Example")
	if len(sources) != 12 {
		t.Errorf("sources = %d, want cap of 12", len(sources))
	}
}

func TestScoreBioSource_SingleTokenThreshold(t *testing.T) {
	source := core.BioSource{
		Title:   "Cher tour dates",
		URL:     "https://example.com/tour",
		Snippet: "tickets",
	}
	score, strong := scoreBioSource(source, []string{"cher"}, "cher")
	if !strong {
		t.Errorf("score = %f, single-token name should be strong at 1 match", score)
	}
}
