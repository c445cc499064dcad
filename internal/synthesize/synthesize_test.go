package synthesize

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"limelight/internal/core"
	"limelight/internal/llm"
)

func week() time.Time {
	return time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
}

func TestSynthesize_NilGeneratorUsesNarrator(t *testing.T) {
	s := New(nil, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Keynote recap", URL: "https://news.example.com/keynote", Snippet: "Ada Example presented new results", SourceType: core.SourceTypeNews},
	}, nil)

	if !strings.HasPrefix(digest.SummaryText, "This week focused on Keynote recap") {
		t.Errorf("summary = %q", digest.SummaryText)
	}
	if len(digest.Topics) != 2 || digest.Topics[0] != "weekly signal" {
		t.Errorf("topics = %v", digest.Topics)
	}
	if len(digest.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(digest.Items))
	}
	if digest.Items[0].ContentHash == "" || digest.Items[0].ID == "" {
		t.Error("item missing hash or id")
	}
}

func TestSynthesize_QuietWeek(t *testing.T) {
	s := New(nil, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), nil, nil)

	if digest.SummaryText != "This week focused on a quiet signal for Ada Example." {
		t.Errorf("summary = %q", digest.SummaryText)
	}
	if len(digest.Topics) != 1 || digest.Topics[0] != "quiet week" {
		t.Errorf("topics = %v", digest.Topics)
	}
	if len(digest.Items) != 0 {
		t.Errorf("items = %d, want 0", len(digest.Items))
	}
}

func TestSynthesize_CrossWeekDedupToFallback(t *testing.T) {
	gen := llm.NewMock()
	gen.GenerateJSONFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		t.Error("model should not be called when every candidate is stale")
		return "", nil
	}

	s := New(gen, nil)
	previous := []string{CrossWeekKey("https://news.example.com/a", "Old story")}
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Old story", URL: "https://news.example.com/a", SourceType: core.SourceTypeNews},
	}, previous)

	if digest.Topics[0] != "quiet week" {
		t.Errorf("topics = %v, want quiet week", digest.Topics)
	}
}

func TestSynthesize_RepairsVideoAndSocial(t *testing.T) {
	gen := llm.NewMock()
	gen.GenerateJSONFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		return `{"summaryText":"This week centered on the keynote where a roadmap shift toward open tooling was announced in detail.","topics":["keynote","tooling"],"items":[{"sourceTitle":"Keynote","sourceUrl":"https://news.example.com/keynote","sourceType":"news","summary":"Roadmap shift."}]}`, nil
	}

	s := New(gen, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Keynote", URL: "https://news.example.com/keynote", SourceType: core.SourceTypeNews},
		{Title: "Clip", URL: "https://www.youtube.com/watch?v=abc", Snippet: "talk", SourceType: core.SourceTypeVideo},
		{Title: "Post", URL: "https://x.com/ada/status/1", Snippet: "thread", SourceType: core.SourceTypeSocial},
		{Title: "Post 2", URL: "https://x.com/ada/status/2", Snippet: "more", SourceType: core.SourceTypeSocial},
		{Title: "Post 3", URL: "https://x.com/ada/status/3", Snippet: "even more", SourceType: core.SourceTypeSocial},
	}, nil)

	var videos, socials int
	for _, item := range digest.Items {
		switch item.SourceType {
		case core.SourceTypeVideo:
			videos++
		case core.SourceTypeSocial:
			socials++
		}
	}
	if videos != 1 {
		t.Errorf("videos = %d, want 1 repaired video", videos)
	}
	if socials != 2 {
		t.Errorf("socials = %d, want 2 repaired socials", socials)
	}
}

func TestSynthesize_ReclassifiesFromURL(t *testing.T) {
	gen := llm.NewMock()
	gen.GenerateJSONFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		return `{"summaryText":"This week centered on one long interview covering the new research agenda and its founding story in depth.","topics":["interview"],"items":[
			{"sourceTitle":"Mislabeled clip","sourceUrl":"https://youtu.be/abc","sourceType":"web","summary":"A clip."},
			{"sourceTitle":"Mislabeled post","sourceUrl":"https://x.com/ada/status/9","sourceType":"news","summary":"A post."}
		]}`, nil
	}

	s := New(gen, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Clip", URL: "https://youtu.be/abc", SourceType: core.SourceTypeVideo},
		{Title: "Post", URL: "https://x.com/ada/status/9", SourceType: core.SourceTypeSocial},
	}, nil)

	if digest.Items[0].SourceType != core.SourceTypeVideo {
		t.Errorf("item 0 type = %q, want video", digest.Items[0].SourceType)
	}
	if digest.Items[1].SourceType != core.SourceTypeSocial {
		t.Errorf("item 1 type = %q, want social", digest.Items[1].SourceType)
	}
}

func TestSynthesize_CapsItemsAtTwelve(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"summaryText":"This week centered on a steady stream of coverage with one major announcement about the upcoming tour dates.","topics":["coverage"],"items":[`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"sourceTitle":"Item %d","sourceUrl":"https://example.com/%d","sourceType":"web","summary":"s"}`, i, i)
	}
	b.WriteString("]}")

	gen := llm.NewMock()
	gen.GenerateJSONFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		return b.String(), nil
	}

	s := New(gen, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Item", URL: "https://example.com/0", SourceType: core.SourceTypeWeb},
	}, nil)

	if len(digest.Items) > 12 {
		t.Errorf("items = %d, want at most 12", len(digest.Items))
	}
}

func TestSynthesize_GeneratorFailureFallsBack(t *testing.T) {
	gen := llm.NewMock()
	gen.GenerateJSONFunc = func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
		return "", fmt.Errorf("transport down")
	}

	s := New(gen, nil)
	digest := s.Synthesize(context.Background(), "Ada Example", week(), []core.Candidate{
		{Title: "Story", URL: "https://news.example.com/story", Snippet: "something happened", SourceType: core.SourceTypeNews},
	}, nil)

	if !strings.HasPrefix(digest.SummaryText, "This week focused on Story") {
		t.Errorf("summary = %q, want narrator output", digest.SummaryText)
	}
}

func TestContentHash_Stable(t *testing.T) {
	a := ContentHash("Title", "Summary")
	b := ContentHash("Title", "Summary")
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == ContentHash("Title", "Other") {
		t.Error("hash ignores summary")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestPruneNameRepeats(t *testing.T) {
	got := pruneNameRepeats("Ada Example spoke and Ada Example wrote.", "Ada Example")
	if got != "Ada Example spoke and they wrote." {
		t.Errorf("pruned = %q", got)
	}

	single := pruneNameRepeats("Ada Example spoke.", "Ada Example")
	if single != "Ada Example spoke." {
		t.Errorf("single mention changed: %q", single)
	}

	embedded := pruneNameRepeats("Adam Adams met Ada.", "Ada")
	if embedded != "Adam Adams met Ada." {
		t.Errorf("word boundary violated: %q", embedded)
	}
}
