// Package bio writes a short verified biography from collected evidence.
// The strong-source gate runs before any model call so the language model
// never sees a subject we could not verify.
package bio

import (
	"context"
	"fmt"
	"strings"

	"limelight/internal/collector"
	"limelight/internal/core"
	"limelight/internal/llm"
)

const (
	minSources       = 2
	maxPromptSources = 8

	systemPrompt = "You write concise, elegant, accurate bios in an editorial voice. Use only facts present in the provided sources. Avoid speculation or fictionalization."
)

// Generator produces biographies.
type Generator struct {
	collector *collector.Collector
	gen       llm.Generator
}

// NewGenerator creates a bio Generator. gen may be nil.
func NewGenerator(c *collector.Collector, gen llm.Generator) *Generator {
	return &Generator{collector: c, gen: gen}
}

// Generate collects evidence and writes the bio. Insufficient evidence
// returns an explanatory sentence, not an error; only a model transport
// failure is an error.
func (g *Generator) Generate(ctx context.Context, name string) (string, error) {
	sources := g.collector.CollectBio(ctx, name)
	if len(sources) == 0 {
		return fmt.Sprintf("We couldn't find enough public sources to write a verified bio for %s.", name), nil
	}

	var strong []core.BioSource
	for _, source := range sources {
		if source.IsStrong {
			strong = append(strong, source)
		}
	}
	if len(strong) == 0 {
		return fmt.Sprintf("We couldn't find enough verified public sources to write a reliable bio for %s.", name), nil
	}

	if g.gen == nil {
		return "Bio unavailable right now. Configure a Gemini API key to generate it.", nil
	}

	prompt := strong
	if len(prompt) < minSources {
		for _, source := range sources {
			if len(prompt) >= minSources {
				break
			}
			if !source.IsStrong {
				prompt = append(prompt, source)
			}
		}
	}
	if len(prompt) > maxPromptSources {
		prompt = prompt[:maxPromptSources]
	}

	instruction := "Write a 2-paragraph bio that only uses the sources. Make it stylish but factual and grounded. End with a single-line takeaway about what makes their work distinctive."
	if limitedEvidence(prompt) {
		instruction = "Write a brief 4-5 sentence profile using only the sources. Say explicitly when public details are limited and do not guess."
	}

	user := fmt.Sprintf("Role model: %s\nSources:\n%s\n\n%s Never infer dates, follower counts, locations, or roles unless they appear in the sources. If the sources are insufficient, say so plainly.",
		name, formatSources(prompt), instruction)

	text, err := g.gen.GenerateText(ctx, systemPrompt, user, 300, 0.2)
	if err != nil {
		return "", fmt.Errorf("bio generation failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// limitedEvidence reports whether the prompt sources are too thin for a
// full two-paragraph bio.
func limitedEvidence(sources []core.BioSource) bool {
	if len(sources) < minSources {
		return true
	}
	for _, source := range sources {
		if len(source.Snippet) >= 80 {
			return false
		}
	}
	return true
}

func formatSources(sources []core.BioSource) string {
	lines := make([]string, 0, len(sources))
	for i, source := range sources {
		sourceType := string(source.SourceType)
		if sourceType == "" {
			sourceType = string(core.SourceTypeWeb)
		}
		title := source.Title
		if title == "" {
			title = "Source"
		}
		snippet := source.Snippet
		if snippet == "" {
			snippet = "No snippet"
		}
		url := source.URL
		if url == "" {
			url = "no url"
		}
		lines = append(lines, fmt.Sprintf("[%d] [%s] %s - %s (%s)", i+1, sourceType, title, snippet, url))
	}
	return strings.Join(lines, "\n")
}
