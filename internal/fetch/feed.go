package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"limelight/internal/core"
	"limelight/internal/logger"
	"limelight/internal/normalize"
)

const (
	defaultFeedBaseURL = "https://www.youtube.com/feeds/videos.xml"
	feedSnippetChars   = 260
)

// FeedBaseURL is the channel feed endpoint; overridable for tests.
var FeedBaseURL = defaultFeedBaseURL

// ChannelFeed fetches a channel's native video feed and returns candidates
// for entries published on or after weekStart. Entries without a parseable
// published timestamp are dropped individually; any fetch or parse failure
// yields an empty slice. The channel feed is part of search collection and
// is not gated by the outbound-fetch flag.
func (f *Fetcher) ChannelFeed(ctx context.Context, channelID string, weekStart time.Time) []core.Candidate {
	if channelID == "" {
		return nil
	}

	feedURL := fmt.Sprintf("%s?channel_id=%s", FeedBaseURL, url.QueryEscape(channelID))
	resp, err := f.get(ctx, feedURL)
	if err != nil {
		logger.Warn("channel feed fetch failed", "channel_id", channelID, "reason", err.Error())
		return nil
	}
	defer resp.Body.Close()

	return ParseChannelFeed(resp.Body, weekStart)
}

// ParseChannelFeed parses a channel feed document and applies the weekStart
// filter. The feed is naturally reverse-chronological but the filter
// compares every entry's published timestamp explicitly.
func ParseChannelFeed(r io.Reader, weekStart time.Time) []core.Candidate {
	parsed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		logger.Warn("channel feed parse failed", "reason", err.Error())
		return nil
	}

	var candidates []core.Candidate
	for _, item := range parsed.Items {
		if item.PublishedParsed == nil {
			continue
		}
		published := *item.PublishedParsed
		if published.Before(weekStart) {
			continue
		}

		snippet := normalize.SanitizeSnippet(feedItemDescription(item))
		if len(snippet) > feedSnippetChars {
			snippet = snippet[:feedSnippetChars]
		}
		candidates = append(candidates, core.Candidate{
			Title:      normalize.SanitizeSnippet(item.Title),
			URL:        item.Link,
			Snippet:    snippet,
			SourceType: core.SourceTypeVideo,
			Date:       core.ISODate(published),
		})
	}
	return candidates
}

// feedItemDescription prefers the item description, falling back to the
// media extension description video feeds carry.
func feedItemDescription(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	groups, ok := item.Extensions["media"]["group"]
	if !ok || len(groups) == 0 {
		return ""
	}
	descriptions := groups[0].Children["description"]
	if len(descriptions) == 0 {
		return ""
	}
	return descriptions[0].Value
}
