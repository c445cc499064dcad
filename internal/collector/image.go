package collector

import (
	"context"
	"strings"

	"limelight/internal/core"
	"limelight/internal/knowledge"
	"limelight/internal/logger"
	"limelight/internal/normalize"
	"limelight/internal/search"
)

var blockedImageHosts = []string{
	"instagram.com",
	"cdninstagram.com",
	"facebook.com",
	"fbcdn.net",
}

// ResolveImage picks the best available profile image for a subject, or nil
// when nothing usable turns up. Requires a search provider.
func (c *Collector) ResolveImage(ctx context.Context, name string) *core.ImageCandidate {
	if c.provider == nil {
		return nil
	}

	var resolved core.OfficialProfiles
	if c.resolver != nil {
		resolved = c.resolver.Resolve(ctx, name)
	}

	var candidates []core.ImageCandidate
	var searchPageURLs []string

	if resp, err := c.provider.Search(ctx, name, search.KindSearch, search.Config{MaxResults: 5}); err == nil {
		if resp.Graph != nil && resp.Graph.ImageURL != "" {
			title := resp.Graph.Title
			if title == "" {
				title = "Knowledge graph"
			}
			sourceURL := resp.Graph.DescriptionURL
			if sourceURL == "" {
				sourceURL = resp.Graph.Website
			}
			candidates = append(candidates, core.ImageCandidate{
				Title:     title,
				ImageURL:  resp.Graph.ImageURL,
				SourceURL: sourceURL,
				Boost:     6,
			})
		}
		for _, result := range resp.Results {
			if result.URL == "" || normalize.IsVideoURL(result.URL) {
				continue
			}
			searchPageURLs = append(searchPageURLs, result.URL)
			if len(searchPageURLs) == 5 {
				break
			}
		}
	} else {
		logger.Warn("image entity search failed", "subject", name, "reason", err.Error())
	}

	if wikidata := c.knowledgeBaseImage(ctx, name); wikidata != nil {
		candidates = append(candidates, *wikidata)
	}

	queries, profileURLs := imageQueries(name, resolved)

	for _, query := range queries {
		faceFilter := strings.Contains(query, "portrait") || strings.Contains(query, "headshot")
		resp, err := c.provider.Search(ctx, query, search.KindImages, search.Config{
			MaxResults: 10,
			FaceFilter: faceFilter,
		})
		if err != nil {
			logger.Warn("image query failed", "query", query, "reason", err.Error())
			continue
		}
		for _, result := range resp.Images {
			candidates = append(candidates, core.ImageCandidate{
				Title:        result.Title,
				ImageURL:     result.ImageURL,
				ThumbnailURL: result.ThumbnailURL,
				SourceURL:    result.URL,
				ImageWidth:   result.ImageWidth,
				ImageHeight:  result.ImageHeight,
			})
		}
	}

	candidates = append(candidates, c.openGraphCandidates(ctx, name, profileURLs, searchPageURLs)...)

	nameTokens := normalize.NameTokens(name)
	handleHints := handleHints(resolved)

	seen := make(map[string]bool, len(candidates))
	var best *core.ImageCandidate
	for i := range candidates {
		candidates[i].ImageURL = resolveImageURL(candidates[i])
		key := strings.ToLower(candidates[i].ImageURL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		candidates[i].Score = scoreImageCandidate(candidates[i], nameTokens, handleHints)
		if best == nil || candidates[i].Score > best.Score {
			best = &candidates[i]
		}
	}
	return best
}

func (c *Collector) knowledgeBaseImage(ctx context.Context, name string) *core.ImageCandidate {
	if c.kb == nil {
		return nil
	}
	entityID, err := c.kb.EntityID(ctx, name)
	if err != nil || entityID == "" {
		return nil
	}
	claims, err := c.kb.EntityClaims(ctx, entityID)
	if err != nil {
		return nil
	}
	fileName := claims.Value(knowledge.PropImage)
	if fileName == "" {
		return nil
	}
	return &core.ImageCandidate{
		Title:     name + " (Wikimedia Commons)",
		ImageURL:  knowledge.ImageFileURL(fileName),
		SourceURL: "https://www.wikidata.org/wiki/" + entityID,
		Boost:     8,
	}
}

func imageQueries(name string, resolved core.OfficialProfiles) (queries, profileURLs []string) {
	queries = []string{
		name + " portrait",
		name + " headshot",
		name + " profile photo",
		name + " instagram",
		name + " x profile",
	}
	if resolved.Instagram != "" {
		profileURLs = append(profileURLs, "https://www.instagram.com/"+resolved.Instagram)
		queries = append(queries, "site:instagram.com/"+resolved.Instagram+" "+name)
	}
	if resolved.Twitter != "" {
		profileURLs = append(profileURLs, "https://x.com/"+resolved.Twitter)
		queries = append(queries,
			"site:x.com/"+resolved.Twitter+" "+name,
			"site:twitter.com/"+resolved.Twitter+" "+name)
	}
	if resolved.Facebook != "" {
		profileURLs = append(profileURLs, "https://www.facebook.com/"+resolved.Facebook)
		queries = append(queries, "site:facebook.com/"+resolved.Facebook+" "+name)
	}
	if resolved.LinkedIn != "" {
		profileURLs = append(profileURLs, "https://www.linkedin.com/in/"+resolved.LinkedIn)
		queries = append(queries, "site:linkedin.com/in/"+resolved.LinkedIn+" "+name)
	}
	if resolved.TikTok != "" {
		profileURLs = append(profileURLs, "https://www.tiktok.com/@"+resolved.TikTok)
		queries = append(queries, "site:tiktok.com/@"+resolved.TikTok+" "+name)
	}
	switch {
	case resolved.YouTubeUsername != "":
		profileURLs = append(profileURLs, "https://www.youtube.com/@"+resolved.YouTubeUsername)
		queries = append(queries, "site:youtube.com/@"+resolved.YouTubeUsername+" "+name)
	case resolved.YouTubeChannelID != "":
		profileURLs = append(profileURLs, "https://www.youtube.com/channel/"+resolved.YouTubeChannelID)
		queries = append(queries, "site:youtube.com/channel/"+resolved.YouTubeChannelID+" "+name)
	}
	return queries, profileURLs
}

// openGraphCandidates scrapes og:image from the subject's profile pages and
// top search hits. Profile pages get a bigger boost than generic hits.
func (c *Collector) openGraphCandidates(ctx context.Context, name string, profileURLs, searchPageURLs []string) []core.ImageCandidate {
	if c.fetcher == nil {
		return nil
	}

	profileSet := make(map[string]bool, len(profileURLs))
	for _, url := range profileURLs {
		profileSet[strings.ToLower(url)] = true
	}

	seen := make(map[string]bool)
	var pageURLs []string
	for _, url := range append(append([]string{}, profileURLs...), searchPageURLs...) {
		key := strings.ToLower(url)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		pageURLs = append(pageURLs, url)
	}
	if len(pageURLs) > 8 {
		pageURLs = pageURLs[:8]
	}

	var candidates []core.ImageCandidate
	for _, pageURL := range pageURLs {
		ogImage := c.fetcher.OpenGraphImage(ctx, pageURL)
		if ogImage == "" {
			continue
		}
		boost := 3.0
		if profileSet[strings.ToLower(pageURL)] {
			boost = 5
		}
		candidates = append(candidates, core.ImageCandidate{
			Title:     name + " profile",
			ImageURL:  ogImage,
			SourceURL: pageURL,
			Boost:     boost,
		})
	}
	return candidates
}

func handleHints(resolved core.OfficialProfiles) []string {
	var hints []string
	for _, handle := range []string{
		resolved.Instagram,
		resolved.Twitter,
		resolved.Facebook,
		resolved.LinkedIn,
		resolved.TikTok,
		resolved.YouTubeUsername,
	} {
		if handle != "" {
			hints = append(hints, strings.ToLower(handle))
		}
	}
	return hints
}

// resolveImageURL prefers the direct image URL but falls back to the
// thumbnail when the direct URL is a data URI or lives on a hotlink-blocked
// CDN.
func resolveImageURL(candidate core.ImageCandidate) string {
	direct := candidate.ImageURL
	thumbnail := candidate.ThumbnailURL
	if strings.HasPrefix(direct, "data:") {
		if thumbnail != "" && !strings.HasPrefix(thumbnail, "data:") {
			return thumbnail
		}
		return ""
	}
	if strings.HasPrefix(thumbnail, "data:") {
		return direct
	}
	if direct == "" {
		return thumbnail
	}
	if isBlockedImageHost(direct) && thumbnail != "" {
		return thumbnail
	}
	return direct
}

func isBlockedImageHost(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, host := range blockedImageHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

func scoreImageCandidate(candidate core.ImageCandidate, nameTokens, handleHints []string) float64 {
	text := strings.ToLower(candidate.Title + " " + candidate.SourceURL + " " + candidate.ImageURL)
	imageURL := strings.ToLower(candidate.ImageURL)
	score := candidate.Boost

	for _, token := range nameTokens {
		if strings.Contains(text, token) {
			score += 2
		}
	}
	for _, handle := range handleHints {
		if strings.Contains(text, handle) {
			score += 3
			break
		}
	}

	if strings.Contains(text, "instagram.com") {
		score += 2
	}
	if strings.Contains(text, "x.com") || strings.Contains(text, "twitter.com") {
		score += 2
	}
	if strings.Contains(text, "youtube.com") {
		score++
	}
	if strings.Contains(text, "tiktok.com") {
		score++
	}
	if strings.Contains(text, "portrait") || strings.Contains(text, "headshot") || strings.Contains(text, "profile") {
		score++
	}
	if strings.Contains(text, "commons.wikimedia.org") || strings.Contains(text, "wikipedia.org") || strings.Contains(text, "wikidata.org") {
		score += 3
	}
	if strings.Contains(text, "gstatic.com") {
		score += 2
	}

	for _, marker := range []string{"logo", "brand", "icon", "vector", "stock"} {
		if strings.Contains(text, marker) {
			score -= 3
			break
		}
	}
	if containsAny(text, "book cover", "paperback", "hardcover", "kindle", "isbn", "goodreads", "amazon.com") ||
		(strings.Contains(text, "cover") && strings.Contains(text, "book")) {
		score -= 4
	} else if strings.Contains(text, "book") || strings.Contains(text, "novel") {
		score -= 2
	}
	if containsAny(text, "album cover", "tracklist") {
		score -= 2
	} else if containsAny(text, "album", "spotify", "itunes") {
		score--
	}
	if strings.HasSuffix(imageURL, ".svg") {
		score -= 4
	}

	if candidate.ImageWidth > 0 && candidate.ImageWidth < 120 {
		score -= 2
	}
	if candidate.ImageHeight > 0 && candidate.ImageHeight < 120 {
		score -= 2
	}
	if candidate.ImageWidth >= 300 && candidate.ImageHeight >= 300 {
		score++
	}
	if candidate.ImageWidth >= 800 && candidate.ImageHeight >= 800 {
		score++
	}

	return score
}

func containsAny(text string, markers ...string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
