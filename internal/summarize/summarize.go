// Package summarize rewrites per-item digest summaries into one informative
// sentence each, grounded in fetched page text when outbound access allows.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"limelight/internal/core"
	"limelight/internal/fetch"
	"limelight/internal/llm"
	"limelight/internal/logger"
)

const (
	batchSize     = 10
	minUsefulText = 160
)

// Summarizer rewrites item summaries. Video and social items keep their
// snippet text; a link preview already says what they are.
type Summarizer struct {
	gen     llm.Generator
	fetcher *fetch.Fetcher
}

// New creates a Summarizer. Either collaborator may be nil.
func New(gen llm.Generator, fetcher *fetch.Fetcher) *Summarizer {
	return &Summarizer{gen: gen, fetcher: fetcher}
}

type itemContext struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Text       string `json:"text"`
	TextLength int    `json:"textLength"`
	Fallback   string `json:"fallback"`
}

type batchResponse struct {
	Items []struct {
		ID      int    `json:"id"`
		Summary string `json:"summary"`
	} `json:"items"`
}

// Items returns the digest items with news, web, and custom summaries
// rewritten. Untouched items come back unchanged; a failed batch only loses
// that batch's rewrites.
func (s *Summarizer) Items(ctx context.Context, items []core.DigestItem, name string) []core.DigestItem {
	if s.gen == nil || len(items) == 0 {
		return items
	}

	var targets []itemContext
	for i, item := range items {
		switch item.SourceType {
		case core.SourceTypeNews, core.SourceTypeWeb, core.SourceTypeCustom:
		default:
			continue
		}
		var text string
		if s.fetcher != nil {
			text = s.fetcher.PageText(ctx, item.SourceURL)
		}
		targets = append(targets, itemContext{
			ID:         i,
			Title:      item.SourceTitle,
			URL:        item.SourceURL,
			Text:       text,
			TextLength: len(text),
			Fallback:   item.Summary,
		})
	}
	if len(targets) == 0 {
		return items
	}

	summaries := make(map[int]string, len(targets))
	for start := 0; start < len(targets); start += batchSize {
		end := start + batchSize
		if end > len(targets) {
			end = len(targets)
		}
		s.summarizeBatch(ctx, name, targets[start:end], summaries)
	}

	out := make([]core.DigestItem, len(items))
	copy(out, items)
	for id, summary := range summaries {
		out[id].Summary = summary
	}
	return out
}

func (s *Summarizer) summarizeBatch(ctx context.Context, name string, batch []itemContext, summaries map[int]string) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return
	}

	system := fmt.Sprintf("You summarize articles into one informative sentence. Focus on the most important outcome or announcement. Avoid vague phrasing, hype, or repeats of the headline. If textLength is below %d characters, use fallback if provided; if both are empty, reply with: Summary unavailable due to access limits.", minUsefulText)
	user := fmt.Sprintf("Role model: %s\nItems: %s\nReturn JSON with shape {items: [{id: number, summary: string}]}. Each summary must be one sentence that adds context beyond the headline.", name, payload)

	raw, err := s.gen.GenerateJSON(ctx, system, user, 800, 0.2)
	if err != nil {
		logger.Warn("item summary batch failed", "subject", name, "reason", err.Error())
		return
	}

	var parsed batchResponse
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &parsed); err != nil {
		logger.Warn("item summary batch was not valid JSON", "subject", name, "reason", err.Error())
		return
	}

	valid := make(map[int]bool, len(batch))
	for _, target := range batch {
		valid[target.ID] = true
	}
	for _, entry := range parsed.Items {
		if !valid[entry.ID] || entry.Summary == "" {
			continue
		}
		summaries[entry.ID] = terminateSentence(entry.Summary)
	}
}

// terminateSentence appends a period when the summary lacks terminal
// punctuation.
func terminateSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return trimmed
	}
	return trimmed + "."
}
