package synthesize

import (
	"fmt"
	"sort"
	"strings"

	"limelight/internal/core"
)

// fallback is the deterministic narrator. It ranks the candidates, leads
// with the strongest one, and keeps the digest shape intact so downstream
// stages never see a special case.
func (s *Synthesizer) fallback(candidates []core.Candidate, name string) core.Digest {
	var contentful []core.Candidate
	for _, candidate := range candidates {
		if candidate.Title != "" || candidate.URL != "" || candidate.Snippet != "" {
			contentful = append(contentful, candidate)
		}
	}

	if len(contentful) == 0 {
		return core.Digest{
			SummaryText: fmt.Sprintf("This week focused on a quiet signal for %s.", name),
			Topics:      []string{"quiet week"},
		}
	}

	digest := core.Digest{
		SummaryText: themeSentence(contentful, name),
		Topics:      []string{"weekly signal", "coverage"},
	}
	for _, candidate := range contentful[:min(6, len(contentful))] {
		digest.Items = append(digest.Items, finalizeItem(candidateRespItem(candidate)))
	}
	return digest
}

var typeRank = map[core.SourceType]int{
	core.SourceTypeNews:   0,
	core.SourceTypeVideo:  1,
	core.SourceTypeSocial: 2,
	core.SourceTypeWeb:    3,
	core.SourceTypeCustom: 4,
}

func rankOf(t core.SourceType) int {
	if rank, ok := typeRank[t]; ok {
		return rank
	}
	return 5
}

// themeSentence builds the one-line summary from the best candidate:
// "This week focused on {title}" plus a connected snippet clause, cut at
// 180 characters.
func themeSentence(candidates []core.Candidate, name string) string {
	ranked := make([]core.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Title != "" || candidate.Snippet != "" {
			ranked = append(ranked, candidate)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := rankOf(ranked[i].SourceType), rankOf(ranked[j].SourceType)
		if ri != rj {
			return ri < rj
		}
		return len(ranked[i].Snippet) > len(ranked[j].Snippet)
	})

	if len(ranked) == 0 {
		return fmt.Sprintf("This week focused on a scan of %s's latest signals.", name)
	}

	lead := ranked[0]
	title := strings.TrimSpace(lead.Title)
	if title == "" {
		title = strings.TrimSpace(lead.URL)
	}
	if title == "" {
		title = name
	}

	snippet := strings.TrimRight(strings.TrimSpace(lead.Snippet), ".!?")
	snippet = pruneNameRepeats(snippet, name)

	sentence := "This week focused on " + title
	if snippet != "" {
		sentence = fmt.Sprintf("%s, %s %s.", sentence, connectorFor(snippet, name), clauseFor(snippet))
	} else {
		sentence += "."
	}

	if len(sentence) > 180 {
		trimmed := sentence[:177]
		cutoff := strings.LastIndex(trimmed, " ")
		if cutoff > 120 {
			trimmed = trimmed[:cutoff]
		}
		sentence = trimmed + "..."
	}
	return sentence
}

// connectorFor picks "as" when the snippet already reads as a clause about
// the subject, "with" otherwise.
func connectorFor(snippet, name string) string {
	firstWord := strings.ToLower(firstWordOf(snippet))
	nameStart := name != "" && strings.HasPrefix(strings.ToLower(snippet), strings.ToLower(name))
	if nameStart || firstWord == "they" || firstWord == "he" || firstWord == "she" || firstWord == "the" {
		return "as"
	}
	return "with"
}

// clauseFor lower-cases the snippet's leading article or pronoun so the
// joined sentence reads naturally.
func clauseFor(snippet string) string {
	switch strings.ToLower(firstWordOf(snippet)) {
	case "they", "he", "she", "the", "a", "an":
		return strings.ToLower(snippet[:1]) + snippet[1:]
	}
	return snippet
}

func firstWordOf(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
