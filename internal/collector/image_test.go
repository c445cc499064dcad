package collector

import (
	"context"
	"strings"
	"testing"

	"limelight/internal/core"
	"limelight/internal/search"
)

func TestResolveImage_NoProvider(t *testing.T) {
	c := New(nil, nil, nil, nil)
	if got := c.ResolveImage(context.Background(), "Ada Example"); got != nil {
		t.Errorf("image = %+v, want nil", got)
	}
}

func TestResolveImage_KnowledgeGraphBeatsStock(t *testing.T) {
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindImages {
			return &search.Response{Images: []search.Result{
				{Title: "stock vector icon", URL: "https://stock.example.com", ImageURL: "https://stock.example.com/icon.png"},
			}}, nil
		}
		return &search.Response{Graph: &search.KnowledgeGraph{
			Title:          "Ada Example",
			ImageURL:       "https://kg.example.com/ada.jpg",
			DescriptionURL: "https://en.wikipedia.org/wiki/Ada_Example",
		}}, nil
	}

	c := New(provider, nil, nil, nil)
	got := c.ResolveImage(context.Background(), "Ada Example")
	if got == nil || got.ImageURL != "https://kg.example.com/ada.jpg" {
		t.Fatalf("image = %+v, want knowledge graph candidate", got)
	}
}

func TestResolveImage_FaceFilterOnPortraitQueries(t *testing.T) {
	faceByQuery := map[string]bool{}
	provider := search.NewMock()
	provider.SearchFunc = func(ctx context.Context, query string, kind search.Kind, cfg search.Config) (*search.Response, error) {
		if kind == search.KindImages {
			faceByQuery[query] = cfg.FaceFilter
		}
		return &search.Response{}, nil
	}

	c := New(provider, nil, nil, nil)
	c.ResolveImage(context.Background(), "Ada Example")

	for query, face := range faceByQuery {
		wantFace := strings.Contains(query, "portrait") || strings.Contains(query, "headshot")
		if face != wantFace {
			t.Errorf("query %q face filter = %v, want %v", query, face, wantFace)
		}
	}
	if len(faceByQuery) != 5 {
		t.Errorf("image queries = %d, want 5 without resolved handles", len(faceByQuery))
	}
}

func TestResolveImageURL_BlockedHostFallsBackToThumbnail(t *testing.T) {
	got := resolveImageURL(core.ImageCandidate{
		ImageURL:     "https://scontent.cdninstagram.com/photo.jpg",
		ThumbnailURL: "https://encrypted-tbn0.gstatic.com/thumb.jpg",
	})
	if got != "https://encrypted-tbn0.gstatic.com/thumb.jpg" {
		t.Errorf("resolved = %q, want thumbnail", got)
	}
}

func TestResolveImageURL_DataURIRejected(t *testing.T) {
	if got := resolveImageURL(core.ImageCandidate{ImageURL: "data:image/png;base64,AAAA"}); got != "" {
		t.Errorf("resolved = %q, want empty", got)
	}
	got := resolveImageURL(core.ImageCandidate{
		ImageURL:     "data:image/png;base64,AAAA",
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
	})
	if got != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("resolved = %q, want thumbnail", got)
	}
}

func TestScoreImageCandidate_Penalties(t *testing.T) {
	tokens := []string{"ada", "example"}

	portrait := scoreImageCandidate(core.ImageCandidate{
		Title:     "Ada Example portrait",
		ImageURL:  "https://photos.example.com/ada.jpg",
		SourceURL: "https://photos.example.com",
	}, tokens, nil)
	bookCover := scoreImageCandidate(core.ImageCandidate{
		Title:     "Ada Example book cover hardcover",
		ImageURL:  "https://amazon.com/cover.jpg",
		SourceURL: "https://amazon.com/dp/123",
	}, tokens, nil)
	svg := scoreImageCandidate(core.ImageCandidate{
		Title:     "Ada Example portrait",
		ImageURL:  "https://photos.example.com/ada.svg",
		SourceURL: "https://photos.example.com",
	}, tokens, nil)

	if bookCover >= portrait {
		t.Errorf("book cover %f >= portrait %f", bookCover, portrait)
	}
	if svg >= portrait {
		t.Errorf("svg %f >= portrait %f", svg, portrait)
	}
}

func TestScoreImageCandidate_ResolutionBonus(t *testing.T) {
	base := core.ImageCandidate{Title: "Ada Example", ImageURL: "https://p.example.com/a.jpg"}

	tiny := base
	tiny.ImageWidth, tiny.ImageHeight = 80, 80
	large := base
	large.ImageWidth, large.ImageHeight = 900, 900

	tokens := []string{"ada", "example"}
	if scoreImageCandidate(tiny, tokens, nil) >= scoreImageCandidate(large, tokens, nil) {
		t.Error("tiny image scored at least as high as the large one")
	}
}
