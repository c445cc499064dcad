package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"limelight/internal/knowledge"
	"limelight/internal/search"
)

func resultsFor(urls ...string) []search.Result {
	out := make([]search.Result, 0, len(urls))
	for i, u := range urls {
		out = append(out, search.Result{
			Title:   fmt.Sprintf("Ada Example story %d", i+1),
			URL:     u,
			Snippet: "Ada Example appeared in a recent interview about her work.",
		})
	}
	return out
}

func presenceProvider() *search.Mock {
	return &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			switch {
			case kind == search.KindNews:
				return &search.Response{News: resultsFor(
					"https://news.example.com/ada-1",
					"https://press.example.org/ada-2",
				)}, nil
			case strings.Contains(query, "obituary"):
				return &search.Response{}, nil
			case strings.Contains(query, "site:instagram.com"):
				return &search.Response{Results: []search.Result{
					{Title: "Ada Example (@adaexample)", URL: "https://www.instagram.com/adaexample/", Snippet: "Official account"},
				}}, nil
			default:
				return &search.Response{Results: resultsFor(
					"https://blog.example.com/ada-3",
					"https://media.example.net/ada-4",
					"https://tech.example.io/ada-5",
				)}, nil
			}
		},
	}
}

func TestCheck_AcceptsLivingPerson(t *testing.T) {
	v := New(presenceProvider(), nil)
	verdict, err := v.Check(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.OK {
		t.Fatalf("expected acceptance, got reason %q", verdict.Reason)
	}
	if verdict.RecentCount != 5 {
		t.Errorf("recent count = %d, want 5", verdict.RecentCount)
	}
	if verdict.DomainCount != 5 {
		t.Errorf("domain count = %d, want 5", verdict.DomainCount)
	}
	if verdict.SocialProfiles != 1 {
		t.Errorf("social profiles = %d, want 1", verdict.SocialProfiles)
	}
}

func TestCheck_EmptyName(t *testing.T) {
	v := New(presenceProvider(), nil)
	if _, err := v.Check(context.Background(), "   "); err != ErrNameRequired {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestCheck_NoProvider(t *testing.T) {
	v := New(nil, nil)
	if _, err := v.Check(context.Background(), "Ada Example"); err != ErrSearchRequired {
		t.Fatalf("expected ErrSearchRequired, got %v", err)
	}
}

func TestCheck_RejectsOrganization(t *testing.T) {
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			if kind == search.KindSearch && cfg.Window == search.WindowYear {
				return &search.Response{
					Graph:   &search.KnowledgeGraph{Title: "Acme Widgets", Type: "Software company"},
					Results: resultsFor("https://acme.example.com/about"),
				}, nil
			}
			return &search.Response{}, nil
		},
	}
	verdict, err := New(provider, nil).Check(context.Background(), "Acme Widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.OK || verdict.Reason != reasonOrganization {
		t.Fatalf("expected organization rejection, got %+v", verdict)
	}
}

func TestCheck_RejectsKnowledgeBaseDeath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Special:EntityData") {
			fmt.Fprint(w, `{"entities":{"Q7259":{"claims":{"P570":[{"mainsnak":{"datavalue":{"value":{"time":"+1852-11-27T00:00:00Z"}}}}]}}}}`)
			return
		}
		fmt.Fprint(w, `{"search":[{"id":"Q7259","label":"Ada Lovelace"}]}`)
	}))
	defer server.Close()

	v := New(presenceProvider(), knowledge.NewClient(server.URL))
	verdict, err := v.Check(context.Background(), "Ada Lovelace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.OK || verdict.Reason != reasonDeceased {
		t.Fatalf("expected deceased rejection, got %+v", verdict)
	}
}

func TestCheck_RejectsDeathSignalsWithoutPresence(t *testing.T) {
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			if strings.Contains(query, "obituary") {
				return &search.Response{Results: []search.Result{
					{Title: "Jo Doe obituary", URL: "https://paper.example.com/obit", Snippet: "Jo Doe passed away last spring."},
					{Title: "Remembering Jo Doe", URL: "https://tribute.example.org/jo", Snippet: "A memorial for Jo Doe was held."},
				}}, nil
			}
			return &search.Response{}, nil
		},
	}
	verdict, err := New(provider, nil).Check(context.Background(), "Jo Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.OK || verdict.Reason != reasonDeceased {
		t.Fatalf("expected deceased rejection, got %+v", verdict)
	}
}

func TestCheck_NegatedDeathSignalsIgnored(t *testing.T) {
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			switch {
			case strings.Contains(query, "obituary"):
				return &search.Response{Results: []search.Result{
					{Title: "Jo Doe death hoax debunked", URL: "https://check.example.com/1", Snippet: "Jo Doe is still alive, the obituary was fake."},
					{Title: "Jo Doe died? No.", URL: "https://check.example.com/2", Snippet: "Rumor about Jo Doe debunked."},
				}}, nil
			case strings.Contains(query, "site:instagram.com"):
				return &search.Response{Results: []search.Result{
					{Title: "Jo Doe (@jodoe)", URL: "https://x.com/jodoe", Snippet: "Jo Doe official"},
				}}, nil
			default:
				return &search.Response{}, nil
			}
		},
	}
	verdict, err := New(provider, nil).Check(context.Background(), "Jo Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.OK {
		t.Fatalf("expected social presence to carry the verdict, got %+v", verdict)
	}
}

func TestCheck_RejectsThinPresence(t *testing.T) {
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			if kind == search.KindSearch && cfg.Window == search.WindowYear {
				return &search.Response{Results: resultsFor(
					"https://one.example.com/a",
					"https://one.example.com/b",
				)}, nil
			}
			return &search.Response{}, nil
		},
	}
	verdict, err := New(provider, nil).Check(context.Background(), "Pat Obscure")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.OK || verdict.Reason != reasonThinPresence {
		t.Fatalf("expected thin presence rejection, got %+v", verdict)
	}
	if verdict.RecentCount != 2 || verdict.DomainCount != 1 {
		t.Errorf("signals = %d items, %d domains; want 2, 1", verdict.RecentCount, verdict.DomainCount)
	}
}

func TestCheck_AllProbesFailed(t *testing.T) {
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			return nil, &search.ProviderError{Status: 503, Body: "  service \n  temporarily   unavailable  "}
		},
	}
	_, err := New(provider, nil).Check(context.Background(), "Ada Example")
	if err == nil {
		t.Fatal("expected hard error")
	}
	want := "search provider unavailable (503): service temporarily unavailable"
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestCheck_PartialFailureTolerated(t *testing.T) {
	base := presenceProvider()
	provider := &search.Mock{
		SearchFunc: func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
			if kind == search.KindNews {
				return nil, &search.ProviderError{Status: 500, Body: "boom"}
			}
			return base.Search(ctx, query, kind, cfg)
		},
	}
	verdict, err := New(provider, nil).Check(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.OK {
		t.Fatalf("expected acceptance despite one failed probe, got %+v", verdict)
	}
	if verdict.RecentCount != 3 {
		t.Errorf("recent count = %d, want 3", verdict.RecentCount)
	}
}
