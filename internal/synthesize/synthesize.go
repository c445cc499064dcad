// Package synthesize turns weekly candidates into a digest. When a language
// model is configured it edits the week into a themed summary; otherwise a
// deterministic narrator produces the same shape from the ranked candidates.
package synthesize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"limelight/internal/core"
	"limelight/internal/fetch"
	"limelight/internal/llm"
	"limelight/internal/logger"
	"limelight/internal/normalize"
)

const (
	maxDigestItems = 12
	maxTopics      = 6

	placeholderSummary = "Update captured from the weekly scan."

	digestSystemPrompt = "You are a digest editor. Only include new, non-duplicative items. Return JSON only. Use only the provided candidates; do not invent new facts or sources."
)

// socialDomains marks an item social during reclassification. Post and
// profile URLs both count here; the digest does not distinguish them.
var socialDomains = []string{
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"linkedin.com",
	"tiktok.com",
	"bsky.app",
}

// Synthesizer builds the weekly digest body.
type Synthesizer struct {
	gen     llm.Generator
	fetcher *fetch.Fetcher
}

// New creates a Synthesizer. gen may be nil; fetcher is only used by the
// re-summary pass and may also be nil.
func New(gen llm.Generator, fetcher *fetch.Fetcher) *Synthesizer {
	return &Synthesizer{gen: gen, fetcher: fetcher}
}

// CrossWeekKey is the identity used for cross-week deduplication.
func CrossWeekKey(url, title string) string {
	return strings.ToLower(url + "|" + title)
}

type digestResponse struct {
	SummaryText string           `json:"summaryText"`
	Topics      []string         `json:"topics"`
	Items       []digestRespItem `json:"items"`
}

type digestRespItem struct {
	SourceTitle string `json:"sourceTitle"`
	SourceURL   string `json:"sourceUrl"`
	SourceType  string `json:"sourceType"`
	SourceDate  string `json:"sourceDate"`
	Summary     string `json:"summary"`
}

// Synthesize produces the digest body for one week. It never returns an
// error: model and transport failures degrade to the deterministic
// narrator.
func (s *Synthesizer) Synthesize(ctx context.Context, name string, weekStart time.Time, candidates []core.Candidate, previousKeys []string) core.Digest {
	if s.gen == nil {
		return s.fallback(candidates, name)
	}

	deduped := dedupeCandidates(candidates, previousKeys)
	if len(deduped) == 0 {
		return s.fallback(nil, name)
	}

	payload, err := json.Marshal(deduped)
	if err != nil {
		return s.fallback(deduped, name)
	}

	user := fmt.Sprintf(`Role model: %s
Week starting: %s
Candidates: %s
Return JSON with shape {summaryText: string, topics: string[], items: [{sourceTitle, sourceUrl, sourceType, sourceDate, summary}]}. summaryText must be ONE sentence (18-28 words) that synthesizes the week's dominant theme and names one specific event, decision, or statement from the candidates. Do not list multiple headlines, do not chain clauses with commas, and do not repeat the role model name more than once. Provide 3-5 topics (short noun phrases). Pick 6-10 items. If any candidates include sourceType "video" or YouTube links, include at least one video item. If any candidates include sourceType "social" or social links, include 1-3 social items.`,
		name, weekStart.Format(time.RFC3339), payload)

	raw, err := s.gen.GenerateJSON(ctx, digestSystemPrompt, user, 800, 0.4)
	if err != nil {
		logger.Warn("digest synthesis failed", "subject", name, "reason", err.Error())
		return s.fallback(deduped, name)
	}

	var parsed digestResponse
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &parsed); err != nil {
		logger.Warn("digest response was not valid JSON", "subject", name, "reason", err.Error())
		return s.fallback(deduped, name)
	}

	return s.assemble(parsed, deduped, name)
}

// assemble turns a parsed model response into the final digest, repairing
// missing video and social coverage from the candidate pool.
func (s *Synthesizer) assemble(parsed digestResponse, deduped []core.Candidate, name string) core.Digest {
	summary := strings.TrimSpace(parsed.SummaryText)
	if summary == "" {
		summary = fmt.Sprintf("This week focused on a scan of %s's latest signals.", name)
	} else {
		summary = pruneNameRepeats(summary, name)
	}

	var topics []string
	for _, topic := range parsed.Topics {
		if t := strings.TrimSpace(topic); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	items := parsed.Items
	seenURLs := make(map[string]bool, len(items))
	hasVideo, hasSocial := false, false
	for _, item := range items {
		if key := strings.ToLower(item.SourceURL); key != "" {
			seenURLs[key] = true
		}
		if item.SourceType == string(core.SourceTypeVideo) || normalize.IsVideoURL(item.SourceURL) {
			hasVideo = true
		}
		if item.SourceType == string(core.SourceTypeSocial) || isSocialURL(item.SourceURL) {
			hasSocial = true
		}
	}

	if !hasVideo {
		for _, candidate := range deduped {
			if candidate.SourceType != core.SourceTypeVideo && !normalize.IsVideoURL(candidate.URL) {
				continue
			}
			key := strings.ToLower(candidate.URL)
			if key != "" && !seenURLs[key] {
				items = append(items, candidateRespItem(candidate))
				seenURLs[key] = true
			}
			break
		}
	}

	if !hasSocial {
		added := 0
		for _, candidate := range deduped {
			if added == 2 {
				break
			}
			if candidate.SourceType != core.SourceTypeSocial && !isSocialURL(candidate.URL) {
				continue
			}
			key := strings.ToLower(candidate.URL)
			if key == "" || seenURLs[key] {
				continue
			}
			items = append(items, candidateRespItem(candidate))
			seenURLs[key] = true
			added++
		}
	}

	if len(items) > maxDigestItems {
		items = items[:maxDigestItems]
	}

	digest := core.Digest{SummaryText: summary, Topics: topics}
	for _, item := range items {
		digest.Items = append(digest.Items, finalizeItem(item))
	}
	return digest
}

func candidateRespItem(candidate core.Candidate) digestRespItem {
	title := candidate.Title
	if title == "" {
		title = candidate.URL
	}
	if title == "" {
		title = "Update"
	}
	summary := candidate.Snippet
	if summary == "" {
		summary = placeholderSummary
	}
	sourceType := string(candidate.SourceType)
	if sourceType == "" {
		sourceType = string(core.SourceTypeWeb)
	}
	return digestRespItem{
		SourceTitle: title,
		SourceURL:   candidate.URL,
		SourceType:  sourceType,
		SourceDate:  candidate.Date,
		Summary:     summary,
	}
}

// finalizeItem reclassifies the type from the URL, fills the summary
// placeholder, and stamps the content hash.
func finalizeItem(item digestRespItem) core.DigestItem {
	sourceType := core.SourceType(item.SourceType)
	switch {
	case normalize.IsVideoURL(item.SourceURL):
		sourceType = core.SourceTypeVideo
	case isSocialURL(item.SourceURL):
		sourceType = core.SourceTypeSocial
	case sourceType == "":
		sourceType = core.SourceTypeWeb
	}

	summary := item.Summary
	if summary == "" {
		summary = placeholderSummary
	}

	return core.DigestItem{
		ID:          uuid.NewString(),
		SourceTitle: item.SourceTitle,
		SourceURL:   item.SourceURL,
		SourceType:  sourceType,
		SourceDate:  item.SourceDate,
		Summary:     summary,
		ContentHash: ContentHash(item.SourceTitle, summary),
	}
}

// ContentHash fingerprints an item for change detection across runs.
func ContentHash(title, summary string) string {
	sum := sha256.Sum256([]byte(title + "|" + summary))
	return hex.EncodeToString(sum[:])
}

// dedupeCandidates drops candidates whose url|title key was already used in
// a prior week or earlier in this batch.
func dedupeCandidates(candidates []core.Candidate, previousKeys []string) []core.Candidate {
	seen := make(map[string]bool, len(previousKeys)+len(candidates))
	for _, key := range previousKeys {
		seen[key] = true
	}
	out := candidates[:0:0]
	for _, candidate := range candidates {
		key := CrossWeekKey(candidate.URL, candidate.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, candidate)
	}
	return out
}

func isSocialURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range socialDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// pruneNameRepeats keeps the first mention of the subject and replaces later
// mentions with "they" so a one-sentence summary does not read like a
// name-stuffed headline.
func pruneNameRepeats(text, name string) string {
	if name == "" {
		return text
	}
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return text
	}
	if len(pattern.FindAllStringIndex(text, -1)) <= 1 {
		return text
	}
	count := 0
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		count++
		if count == 1 {
			return match
		}
		return "they"
	})
}
