// Package collector gathers weekly candidates, bio evidence, and profile
// images for a subject from search results, channel feeds, and custom URLs.
package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"limelight/internal/core"
	"limelight/internal/fetch"
	"limelight/internal/knowledge"
	"limelight/internal/logger"
	"limelight/internal/normalize"
	"limelight/internal/profiles"
	"limelight/internal/search"
)

// Collector fans out the weekly source queries. A nil provider disables all
// search-backed collection; custom sources still flow through.
type Collector struct {
	provider search.Provider
	resolver *profiles.Resolver
	fetcher  *fetch.Fetcher
	kb       *knowledge.Client
}

// New creates a Collector.
func New(provider search.Provider, resolver *profiles.Resolver, fetcher *fetch.Fetcher, kb *knowledge.Client) *Collector {
	return &Collector{provider: provider, resolver: resolver, fetcher: fetcher, kb: kb}
}

const videoQueryBase = "(site:youtube.com/watch OR site:youtu.be OR site:youtube.com/shorts OR site:youtube.com/live)"

// Collect runs the four weekly queries concurrently, merges the channel
// feed and custom sources, and returns URL-deduplicated candidates.
func (c *Collector) Collect(ctx context.Context, name string, weekStart time.Time, custom []core.CustomSource) []core.Candidate {
	var resolved core.OfficialProfiles
	if c.resolver != nil {
		resolved = c.resolver.Resolve(ctx, name)
	}

	var newsItems, searchItems, socialItems, videoItems []core.Candidate
	if c.provider != nil {
		var wg sync.WaitGroup
		wg.Add(4)
		go func() {
			defer wg.Done()
			newsItems = c.newsCandidates(ctx, name)
		}()
		go func() {
			defer wg.Done()
			searchItems = c.searchCandidates(ctx, name)
		}()
		go func() {
			defer wg.Done()
			socialItems = c.socialCandidates(ctx, name, resolved)
		}()
		go func() {
			defer wg.Done()
			videoItems = c.videoCandidates(ctx, name, resolved)
		}()
		wg.Wait()
	}

	if resolved.YouTubeChannelID != "" && c.fetcher != nil {
		feedItems := c.fetcher.ChannelFeed(ctx, resolved.YouTubeChannelID, weekStart)
		if len(feedItems) > 0 {
			videoItems = dedupeByURL(append(videoItems, feedItems...))
		}
	}

	if len(videoItems) == 0 && c.provider != nil {
		videoItems = c.fallbackVideoCandidates(ctx, name)
	}

	items := make([]core.Candidate, 0, len(newsItems)+len(searchItems)+len(socialItems)+len(videoItems)+len(custom))
	items = append(items, newsItems...)
	items = append(items, searchItems...)
	items = append(items, socialItems...)
	items = append(items, videoItems...)

	for _, source := range custom {
		title := source.Label
		if title == "" {
			title = source.URL
		}
		snippet := "Custom source: " + source.URL
		if c.fetcher != nil {
			snippet = c.fetcher.CustomSourceSnippet(ctx, source.URL)
		}
		items = append(items, core.Candidate{
			Title:      title,
			URL:        source.URL,
			Snippet:    snippet,
			SourceType: core.SourceTypeCustom,
			Date:       core.ISODate(weekStart),
		})
	}

	return dedupeByURL(items)
}

func (c *Collector) newsCandidates(ctx context.Context, name string) []core.Candidate {
	resp, err := c.provider.Search(ctx, name+" update", search.KindNews, search.Config{Window: search.WindowWeek})
	if err != nil {
		logger.Warn("news collection failed", "subject", name, "reason", err.Error())
		return nil
	}
	items := make([]core.Candidate, 0, len(resp.News))
	for _, result := range resp.News {
		sourceType := core.SourceTypeNews
		if normalize.IsVideoURL(result.URL) {
			sourceType = core.SourceTypeVideo
		}
		items = append(items, candidate(result, sourceType))
	}
	return items
}

func (c *Collector) searchCandidates(ctx context.Context, name string) []core.Candidate {
	query := fmt.Sprintf("%s interview OR statement OR %q", name, "thread")
	resp, err := c.provider.Search(ctx, query, search.KindSearch, search.Config{Window: search.WindowWeek})
	if err != nil {
		logger.Warn("web collection failed", "subject", name, "reason", err.Error())
		return nil
	}
	items := make([]core.Candidate, 0, len(resp.Results))
	for _, result := range resp.Results {
		sourceType := core.SourceTypeWeb
		switch {
		case normalize.IsVideoURL(result.URL):
			sourceType = core.SourceTypeVideo
		case normalize.IsSocialPostURL(result.URL):
			sourceType = core.SourceTypeSocial
		}
		items = append(items, candidate(result, sourceType))
	}
	return items
}

// socialCandidates queries the subject's resolved profile paths when any
// handle is known, otherwise one generic multi-platform query. Only post
// URLs survive; profile landing pages carry no weekly signal.
func (c *Collector) socialCandidates(ctx context.Context, name string, resolved core.OfficialProfiles) []core.Candidate {
	var parts []string
	if resolved.Twitter != "" {
		parts = append(parts, "site:x.com/"+resolved.Twitter, "site:twitter.com/"+resolved.Twitter)
	}
	if resolved.Instagram != "" {
		parts = append(parts, "site:instagram.com/"+resolved.Instagram)
	}
	if resolved.Facebook != "" {
		parts = append(parts, "site:facebook.com/"+resolved.Facebook)
	}
	if resolved.LinkedIn != "" {
		parts = append(parts, "site:linkedin.com/"+resolved.LinkedIn)
	}
	if resolved.TikTok != "" {
		parts = append(parts, "site:tiktok.com/@"+resolved.TikTok)
	}

	query := name + " (site:twitter.com OR site:x.com OR site:instagram.com OR site:facebook.com OR site:linkedin.com OR site:tiktok.com OR site:bsky.app)"
	if len(parts) > 0 {
		query = strings.Join(parts, " OR ")
	}

	resp, err := c.provider.Search(ctx, query, search.KindSearch, search.Config{Window: search.WindowWeek})
	if err != nil {
		logger.Warn("social collection failed", "subject", name, "reason", err.Error())
		return nil
	}
	var items []core.Candidate
	for _, result := range resp.Results {
		if !normalize.IsSocialPostURL(result.URL) {
			continue
		}
		items = append(items, candidate(result, core.SourceTypeSocial))
	}
	return items
}

func (c *Collector) videoCandidates(ctx context.Context, name string, resolved core.OfficialProfiles) []core.Candidate {
	queries := []string{name + " " + videoQueryBase}
	if resolved.YouTubeUsername != "" {
		queries = append(queries, resolved.YouTubeUsername+" "+videoQueryBase)
	}
	resp, err := c.provider.Search(ctx, strings.Join(queries, " OR "), search.KindSearch, search.Config{Window: search.WindowWeek})
	if err != nil {
		logger.Warn("video collection failed", "subject", name, "reason", err.Error())
		return nil
	}
	return videoOnly(resp.Results)
}

func (c *Collector) fallbackVideoCandidates(ctx context.Context, name string) []core.Candidate {
	resp, err := c.provider.Search(ctx, name+" youtube", search.KindSearch, search.Config{
		Window:     search.WindowWeek,
		MaxResults: 10,
	})
	if err != nil {
		logger.Warn("fallback video search failed", "subject", name, "reason", err.Error())
		return nil
	}
	return videoOnly(resp.Results)
}

func videoOnly(results []search.Result) []core.Candidate {
	var items []core.Candidate
	for _, result := range results {
		if !normalize.IsVideoURL(result.URL) {
			continue
		}
		items = append(items, candidate(result, core.SourceTypeVideo))
	}
	return items
}

func candidate(result search.Result, sourceType core.SourceType) core.Candidate {
	return core.Candidate{
		Title:      result.Title,
		URL:        result.URL,
		Snippet:    normalize.SanitizeSnippet(result.Snippet),
		SourceType: sourceType,
		Date:       result.Date,
	}
}

// dedupeByURL keeps the first candidate per normalized URL. Empty URLs are
// dropped.
func dedupeByURL(items []core.Candidate) []core.Candidate {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		key := normalize.Key(item.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
