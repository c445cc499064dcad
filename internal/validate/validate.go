// Package validate decides whether a subject is a living person with
// enough public presence to track. All probes run against live sources;
// there is no offline approximation of this check.
package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"limelight/internal/knowledge"
	"limelight/internal/logger"
	"limelight/internal/normalize"
	"limelight/internal/search"
)

const (
	minRecentItems   = 5
	minUniqueDomains = 2
	minDeathSignals  = 2
)

var deathStrongKeywords = []string{
	"died",
	"obituary",
	"passed away",
	"funeral",
	"memorial",
	"in memoriam",
}

var deathNegationKeywords = []string{
	"hoax",
	"rumor",
	"fake",
	"false",
	"alive",
	"not dead",
	"debunk",
	"still alive",
}

var orgKeywords = []string{
	"company",
	"organization",
	"agency",
	"institution",
	"university",
	"college",
	"corporation",
	"nonprofit",
	"non-profit",
	"government",
	"foundation",
}

var socialDomains = map[string]bool{
	"twitter.com":   true,
	"x.com":         true,
	"instagram.com": true,
	"facebook.com":  true,
	"linkedin.com":  true,
	"tiktok.com":    true,
	"youtube.com":   true,
	"bsky.app":      true,
}

// ErrNameRequired is returned for an empty subject name.
var ErrNameRequired = errors.New("role model name required")

// ErrSearchRequired is returned when no search provider is configured.
// Validation cannot run offline.
var ErrSearchRequired = errors.New("search provider is required for validation")

// Verdict is the validation outcome. Reason is set when OK is false.
type Verdict struct {
	OK             bool
	Reason         string
	RecentCount    int
	DomainCount    int
	SocialProfiles int
}

const (
	reasonOrganization = "Role models must be living people, not organizations."
	reasonDeceased     = "Role models must be living people with a significant online presence. This name appears to refer to someone who has passed away or is memorialized."
	reasonThinPresence = "Role models must be living people with a significant online presence. We could not find enough recent public sources for that name."
)

// Validator runs the presence and liveness probes.
type Validator struct {
	provider search.Provider
	kb       *knowledge.Client
}

// New creates a Validator. kb may be nil; provider may not be meaningfully
// nil, Check errors without one.
func New(provider search.Provider, kb *knowledge.Client) *Validator {
	return &Validator{provider: provider, kb: kb}
}

type probeResult struct {
	resp *search.Response
	err  error
}

// Check runs the five probes concurrently and applies the rejection rules.
// A hard error means validation could not run at all; a negative Verdict
// means it ran and the subject failed.
func (v *Validator) Check(ctx context.Context, name string) (Verdict, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Verdict{}, ErrNameRequired
	}
	if v.provider == nil {
		return Verdict{}, ErrSearchRequired
	}

	var recentSearch, recentNews, deathSearch, profileSearch probeResult
	var deceased bool

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		recentSearch = v.probe(ctx, name, search.KindSearch, search.Config{MaxResults: 10, Window: search.WindowYear})
	}()
	go func() {
		defer wg.Done()
		recentNews = v.probe(ctx, name, search.KindNews, search.Config{Window: search.WindowYear})
	}()
	go func() {
		defer wg.Done()
		query := fmt.Sprintf("%s obituary OR died OR death OR %q", name, "passed away")
		deathSearch = v.probe(ctx, query, search.KindSearch, search.Config{})
	}()
	go func() {
		defer wg.Done()
		query := name + " (site:instagram.com OR site:x.com OR site:twitter.com OR site:tiktok.com OR site:youtube.com OR site:linkedin.com)"
		profileSearch = v.probe(ctx, query, search.KindSearch, search.Config{})
	}()
	go func() {
		defer wg.Done()
		deceased = v.knowledgeBaseDeathDate(ctx, name)
	}()
	wg.Wait()

	probes := []probeResult{recentSearch, recentNews, deathSearch, profileSearch}
	failures := 0
	var firstErr error
	for _, probe := range probes {
		if probe.err != nil {
			failures++
			if firstErr == nil {
				firstErr = probe.err
			}
		}
	}
	if failures == len(probes) {
		return Verdict{}, unavailableError(firstErr)
	}
	if failures > 0 {
		logger.Warn("validation probes partially failed", "subject", name, "failures", failures)
	}

	if isOrganization(recentSearch.resp) {
		return Verdict{Reason: reasonOrganization}, nil
	}

	recentItems := dedupeByURL(append(probeItems(recentSearch.resp), newsItems(recentNews.resp)...))
	recentDomains := uniqueDomains(recentItems)

	profileItems := probeItems(profileSearch.resp)
	profileMatches := 0
	hasSocialProfile := false
	for _, item := range profileItems {
		if socialDomains[normalize.ExtractDomain(item.URL)] {
			hasSocialProfile = true
		}
		if matchesName(item, name) {
			profileMatches++
		}
	}

	if deceased {
		return Verdict{Reason: reasonDeceased}, nil
	}

	deathSignals := 0
	for _, item := range probeItems(deathSearch.resp) {
		if hasDeathSignal(item, name) {
			deathSignals++
		}
	}

	hasLivingPresence := len(recentItems) >= minRecentItems && len(recentDomains) >= minUniqueDomains
	hasSocialPresence := hasSocialProfile && profileMatches >= 1

	if deathSignals >= minDeathSignals && !hasLivingPresence && !hasSocialPresence {
		return Verdict{Reason: reasonDeceased}, nil
	}

	verdict := Verdict{
		RecentCount:    len(recentItems),
		DomainCount:    len(recentDomains),
		SocialProfiles: profileMatches,
	}
	if !hasLivingPresence && !hasSocialPresence {
		verdict.Reason = reasonThinPresence
		return verdict, nil
	}
	verdict.OK = true
	return verdict, nil
}

func (v *Validator) probe(ctx context.Context, query string, kind search.Kind, cfg search.Config) probeResult {
	resp, err := v.provider.Search(ctx, query, kind, cfg)
	return probeResult{resp: resp, err: err}
}

func (v *Validator) knowledgeBaseDeathDate(ctx context.Context, name string) bool {
	if v.kb == nil {
		return false
	}
	entityID, err := v.kb.EntityID(ctx, name)
	if err != nil || entityID == "" {
		return false
	}
	claims, err := v.kb.EntityClaims(ctx, entityID)
	if err != nil {
		return false
	}
	return claims.Value(knowledge.PropDateOfDeath) != ""
}

func isOrganization(resp *search.Response) bool {
	if resp == nil || resp.Graph == nil {
		return false
	}
	entityType := strings.ToLower(resp.Graph.Type)
	if entityType == "" {
		return false
	}
	for _, keyword := range orgKeywords {
		if strings.Contains(entityType, keyword) {
			return true
		}
	}
	return false
}

func probeItems(resp *search.Response) []search.Result {
	if resp == nil {
		return nil
	}
	return resp.Results
}

func newsItems(resp *search.Response) []search.Result {
	if resp == nil {
		return nil
	}
	return resp.News
}

func dedupeByURL(items []search.Result) []search.Result {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		key := strings.ToLower(item.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func uniqueDomains(items []search.Result) map[string]bool {
	domains := make(map[string]bool, len(items))
	for _, item := range items {
		if domain := normalize.ExtractDomain(item.URL); domain != "" {
			domains[domain] = true
		}
	}
	return domains
}

func matchesName(item search.Result, name string) bool {
	lowerName := strings.ToLower(name)
	condensed := strings.ReplaceAll(lowerName, " ", "")
	text := strings.ToLower(item.Title + " " + item.Snippet)
	url := strings.ToLower(item.URL)
	return strings.Contains(text, lowerName) || (condensed != "" && strings.Contains(url, condensed))
}

// hasDeathSignal reports a death keyword about the subject specifically,
// ignoring hoax and debunk phrasing.
func hasDeathSignal(item search.Result, name string) bool {
	text := strings.ToLower(item.Title + " " + item.Snippet)
	if !strings.Contains(text, strings.ToLower(name)) {
		return false
	}
	for _, keyword := range deathNegationKeywords {
		if strings.Contains(text, keyword) {
			return false
		}
	}
	for _, keyword := range deathStrongKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

const maxErrorDetail = 160

// unavailableError shapes a hard failure message when every search probe
// failed. The provider body is collapsed and capped so upstream callers
// can surface it directly.
func unavailableError(err error) error {
	var provErr *search.ProviderError
	if errors.As(err, &provErr) {
		detail := strings.Join(strings.Fields(provErr.Body), " ")
		if len(detail) > maxErrorDetail {
			detail = detail[:maxErrorDetail]
		}
		if detail != "" {
			return fmt.Errorf("search provider unavailable (%d): %s", provErr.Status, detail)
		}
		return fmt.Errorf("search provider unavailable (%d)", provErr.Status)
	}
	return fmt.Errorf("search provider unavailable: %w", err)
}
