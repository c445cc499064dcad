package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"limelight/internal/core"
	"limelight/internal/logger"
	"limelight/internal/normalize"
	"limelight/internal/search"
)

const maxBioSources = 12

// CollectBio gathers scored biography evidence. Without a search provider
// there is nothing to score and the result is empty.
func (c *Collector) CollectBio(ctx context.Context, name string) []core.BioSource {
	if c.provider == nil {
		return nil
	}

	var resolved core.OfficialProfiles
	if c.resolver != nil {
		resolved = c.resolver.Resolve(ctx, name)
	}

	var primary, platform, news *search.Response
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		primary = c.bioQuery(ctx, name, search.KindSearch, search.Config{})
	}()
	go func() {
		defer wg.Done()
		query := fmt.Sprintf("%s (instagram OR x OR twitter OR tiktok OR youtube OR %q OR %q)", name, "official site", "personal website")
		platform = c.bioQuery(ctx, query, search.KindSearch, search.Config{})
	}()
	go func() {
		defer wg.Done()
		news = c.bioQuery(ctx, name+" interview OR statement", search.KindNews, search.Config{Window: search.WindowYear})
	}()
	wg.Wait()

	var sources []core.BioSource
	sources = append(sources, bioSearchSources(primary)...)
	sources = append(sources, bioSearchSources(platform)...)
	if news != nil {
		for _, result := range news.News {
			sources = append(sources, core.BioSource{
				Title:      result.Title,
				URL:        result.URL,
				Snippet:    normalize.SanitizeSnippet(result.Snippet),
				SourceType: core.SourceTypeNews,
				Date:       result.Date,
			})
		}
	}
	sources = append(sources, profileBioSources(name, resolved)...)

	nameTokens := normalize.NameTokens(name)
	fullName := strings.Join(nameTokens, " ")
	for i := range sources {
		sources[i].Score, sources[i].IsStrong = scoreBioSource(sources[i], nameTokens, fullName)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Score != sources[j].Score {
			return sources[i].Score > sources[j].Score
		}
		return len(sources[i].Snippet) > len(sources[j].Snippet)
	})

	deduped := dedupeBioSources(sources)
	if len(deduped) > maxBioSources {
		deduped = deduped[:maxBioSources]
	}
	return deduped
}

func (c *Collector) bioQuery(ctx context.Context, query string, kind search.Kind, cfg search.Config) *search.Response {
	resp, err := c.provider.Search(ctx, query, kind, cfg)
	if err != nil {
		logger.Warn("bio source query failed", "query", query, "reason", err.Error())
		return nil
	}
	return resp
}

func bioSearchSources(resp *search.Response) []core.BioSource {
	if resp == nil {
		return nil
	}
	sources := make([]core.BioSource, 0, len(resp.Results))
	for _, result := range resp.Results {
		sourceType := core.SourceTypeWeb
		switch {
		case normalize.IsVideoURL(result.URL):
			sourceType = core.SourceTypeVideo
		case normalize.IsSocialProfileURL(result.URL):
			sourceType = core.SourceTypeSocial
		}
		sources = append(sources, core.BioSource{
			Title:      result.Title,
			URL:        result.URL,
			Snippet:    normalize.SanitizeSnippet(result.Snippet),
			SourceType: sourceType,
			Date:       result.Date,
		})
	}
	return sources
}

// profileBioSources synthesizes one evidence entry per resolved handle so
// an active social presence counts even when the queries miss it.
func profileBioSources(name string, resolved core.OfficialProfiles) []core.BioSource {
	var sources []core.BioSource
	add := func(title, url, snippet string, sourceType core.SourceType) {
		sources = append(sources, core.BioSource{Title: title, URL: url, Snippet: snippet, SourceType: sourceType})
	}
	if resolved.Twitter != "" {
		add("X profile: @"+resolved.Twitter, "https://x.com/"+resolved.Twitter,
			fmt.Sprintf("Official X profile for %s.", name), core.SourceTypeSocial)
	}
	if resolved.Instagram != "" {
		add("Instagram profile: @"+resolved.Instagram, "https://www.instagram.com/"+resolved.Instagram,
			fmt.Sprintf("Official Instagram profile for %s.", name), core.SourceTypeSocial)
	}
	if resolved.Facebook != "" {
		add("Facebook profile: "+resolved.Facebook, "https://www.facebook.com/"+resolved.Facebook,
			fmt.Sprintf("Official Facebook profile for %s.", name), core.SourceTypeSocial)
	}
	if resolved.LinkedIn != "" {
		add("LinkedIn profile: "+resolved.LinkedIn, "https://www.linkedin.com/in/"+resolved.LinkedIn,
			fmt.Sprintf("Official LinkedIn profile for %s.", name), core.SourceTypeSocial)
	}
	if resolved.TikTok != "" {
		add("TikTok profile: @"+resolved.TikTok, "https://www.tiktok.com/@"+resolved.TikTok,
			fmt.Sprintf("Official TikTok profile for %s.", name), core.SourceTypeSocial)
	}
	switch {
	case resolved.YouTubeUsername != "":
		add("YouTube channel: @"+resolved.YouTubeUsername, "https://www.youtube.com/@"+resolved.YouTubeUsername,
			fmt.Sprintf("Official YouTube channel for %s.", name), core.SourceTypeVideo)
	case resolved.YouTubeChannelID != "":
		add("YouTube channel", "https://www.youtube.com/channel/"+resolved.YouTubeChannelID,
			fmt.Sprintf("Official YouTube channel for %s.", name), core.SourceTypeVideo)
	}
	return sources
}

// scoreBioSource weighs how strongly a source ties to the subject. A
// full-name match always marks the source strong; otherwise the token score
// must clear 2, or 1 for single-token names.
func scoreBioSource(source core.BioSource, nameTokens []string, fullName string) (float64, bool) {
	text := strings.ToLower(source.Title + " " + source.Snippet)
	url := strings.ToLower(source.URL)
	condensed := strings.Join(nameTokens, "")

	hasFullName := fullName != "" &&
		(strings.Contains(text, fullName) || strings.Contains(url, fullName) ||
			(condensed != "" && strings.Contains(url, condensed)))

	var score float64
	for _, token := range nameTokens {
		if strings.Contains(text, token) || strings.Contains(url, token) {
			score++
		}
	}
	if hasFullName {
		score += 2
	}
	if normalize.IsSocialProfileURL(source.URL) {
		score++
	}
	if source.SourceType == core.SourceTypeNews {
		score += 0.5
	}

	minScore := 2.0
	if len(nameTokens) <= 1 {
		minScore = 1
	}
	return score, hasFullName || score >= minScore
}

func dedupeBioSources(sources []core.BioSource) []core.BioSource {
	seen := make(map[string]bool, len(sources))
	out := sources[:0:0]
	for _, source := range sources {
		key := strings.ToLower(source.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, source)
	}
	return out
}
