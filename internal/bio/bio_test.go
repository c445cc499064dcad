package bio

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"limelight/internal/collector"
	"limelight/internal/llm"
	"limelight/internal/search"
)

func failingProvider() *search.Mock {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		return nil, fmt.Errorf("provider down")
	}
	return provider
}

func TestGenerate_NoSources(t *testing.T) {
	g := NewGenerator(collector.New(failingProvider(), nil, nil, nil), llm.NewMock())
	got, err := g.Generate(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "We couldn't find enough public sources to write a verified bio for Ada Example."
	if got != want {
		t.Errorf("bio = %q, want %q", got, want)
	}
}

func TestGenerate_NoStrongSources(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindNews {
			return &search.Response{}, nil
		}
		return &search.Response{Results: []search.Result{
			{Title: "Widget clearance", URL: "https://shop.test/widgets", Snippet: "big deals"},
		}}, nil
	}

	gen := llm.NewMock()
	gen.GenerateTextFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		t.Error("model called despite failing the strong-source gate")
		return "", nil
	}

	g := NewGenerator(collector.New(provider, nil, nil, nil), gen)
	got, err := g.Generate(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "We couldn't find enough verified public sources to write a reliable bio for Ada Example."
	if got != want {
		t.Errorf("bio = %q, want %q", got, want)
	}
}

func strongProvider() *search.Mock {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindNews {
			return &search.Response{}, nil
		}
		return &search.Response{Results: []search.Result{
			{
				Title:   "Ada Example biography",
				URL:     "https://reference.test/ada-profile",
				Snippet: "Ada Example is a researcher known for a long record of published work across several public institutions and archives.",
			},
			{
				Title:   "Ada Example interview",
				URL:     "https://journal.test/ada-example",
				Snippet: "In a recent conversation, Ada Example described the open publishing effort they have led since its first public release.",
			},
		}}, nil
	}
	return provider
}

func TestGenerate_NilGeneratorNotice(t *testing.T) {
	g := NewGenerator(collector.New(strongProvider(), nil, nil, nil), nil)
	got, err := g.Generate(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(got, "Configure a Gemini API key") {
		t.Errorf("bio = %q, want configuration notice", got)
	}
}

func TestGenerate_FullBioPrompt(t *testing.T) {
	var captured string
	gen := llm.NewMock()
	gen.GenerateTextFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		captured = user
		return "Ada Example is a researcher.\n\nTheir work stands out.", nil
	}

	g := NewGenerator(collector.New(strongProvider(), nil, nil, nil), gen)
	got, err := g.Generate(context.Background(), "Ada Example")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got == "" {
		t.Error("empty bio")
	}
	if !strings.Contains(captured, "2-paragraph bio") {
		t.Errorf("prompt = %q, want full bio instruction", captured)
	}
	if !strings.Contains(captured, "[1] [web] Ada Example biography") {
		t.Errorf("prompt = %q, want numbered source list", captured)
	}
}

func TestGenerate_LimitedModePrompt(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindNews {
			return &search.Response{}, nil
		}
		return &search.Response{Results: []search.Result{
			{Title: "Ada Example", URL: "https://reference.test/ada", Snippet: "Ada Example."},
			{Title: "Ada Example notes", URL: "https://notes.test/ada-example", Snippet: "Ada Example wrote."},
		}}, nil
	}

	var captured string
	gen := llm.NewMock()
	gen.GenerateTextFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		captured = user
		return "A short guarded profile.", nil
	}

	g := NewGenerator(collector.New(provider, nil, nil, nil), gen)
	if _, err := g.Generate(context.Background(), "Ada Example"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(captured, "4-5 sentence profile") {
		t.Errorf("prompt = %q, want limited-mode instruction", captured)
	}
}
