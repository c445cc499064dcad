package synthesize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"limelight/internal/core"
	"limelight/internal/llm"
	"limelight/internal/logger"
)

const (
	maxResummaryItems = 10

	resummarySystemPrompt = "You are a weekly digest editor. Use only the provided item metadata and full content. Write one sentence (20-32 words) that synthesizes the week's dominant theme(s). Be specific and cite at least two concrete developments if present. Do not list headlines."
)

var genericSummaryPhrases = []string{
	"latest updates",
	"fresh mentions",
	"public updates",
	"mixed signals",
}

type resummaryContext struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	SourceType string `json:"sourceType"`
	SourceDate string `json:"sourceDate"`
	Summary    string `json:"summary"`
	Content    string `json:"content"`
}

// Resummarize rewrites the digest summary from the final items, pulling in
// page content where fetching is allowed. Weak model output falls back to a
// sentence built from the lead item.
func (s *Synthesizer) Resummarize(ctx context.Context, name string, items []core.DigestItem) string {
	if len(items) > maxResummaryItems {
		items = items[:maxResummaryItems]
	}
	if len(items) == 0 {
		return fmt.Sprintf("This week focused on a quiet signal for %s.", name)
	}
	if s.gen == nil {
		return itemFallbackSummary(items, name)
	}

	contexts := make([]resummaryContext, 0, len(items))
	for i, item := range items {
		var content string
		if s.fetcher != nil {
			content = s.fetcher.PageText(ctx, item.SourceURL)
		}
		contexts = append(contexts, resummaryContext{
			ID:         i,
			Title:      item.SourceTitle,
			URL:        item.SourceURL,
			SourceType: string(item.SourceType),
			SourceDate: item.SourceDate,
			Summary:    item.Summary,
			Content:    content,
		})
	}

	payload, err := json.Marshal(contexts)
	if err != nil {
		return itemFallbackSummary(items, name)
	}

	user := fmt.Sprintf("Role model: %s\nItems: %s\nReturn JSON with shape {summaryText: string}.", name, payload)
	raw, err := s.gen.GenerateJSON(ctx, resummarySystemPrompt, user, 200, 0.2)
	if err != nil {
		logger.Warn("digest re-summary failed", "subject", name, "reason", err.Error())
		return itemFallbackSummary(items, name)
	}

	var parsed struct {
		SummaryText string `json:"summaryText"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &parsed); err != nil {
		return itemFallbackSummary(items, name)
	}

	summary := strings.TrimSpace(parsed.SummaryText)
	if isWeakSummary(summary) {
		return itemFallbackSummary(items, name)
	}
	return summary
}

func itemFallbackSummary(items []core.DigestItem, name string) string {
	for _, item := range items {
		if item.Summary == "" && item.SourceTitle == "" {
			continue
		}
		title := item.SourceTitle
		if title == "" {
			title = name
		}
		sentence := fmt.Sprintf("This week focused on %s.", title)
		if item.Summary != "" {
			sentence += " " + item.Summary
		}
		return strings.TrimSpace(sentence)
	}
	return fmt.Sprintf("This week focused on a quiet signal for %s.", name)
}

// isWeakSummary rejects output too short or too generic to replace the
// existing summary.
func isWeakSummary(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if len(strings.Fields(trimmed)) < 12 {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range genericSummaryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
