// Package profiles discovers a subject's canonical social and video handles
// by combining knowledge-base claims with heuristic scans of search results.
package profiles

import (
	"context"
	"fmt"
	"strings"

	"limelight/internal/core"
	"limelight/internal/knowledge"
	"limelight/internal/logger"
	"limelight/internal/normalize"
	"limelight/internal/search"
)

// Resolver resolves official profiles. Both collaborators are optional: a
// nil provider skips search discovery, a nil knowledge client skips claim
// extraction. Resolve never returns an error; any stage failure leaves the
// fields that stage was responsible for empty.
type Resolver struct {
	provider search.Provider
	kb       *knowledge.Client
}

// NewResolver creates a Resolver.
func NewResolver(provider search.Provider, kb *knowledge.Client) *Resolver {
	return &Resolver{provider: provider, kb: kb}
}

// Resolve assembles the best-effort official profile set for a subject.
func (r *Resolver) Resolve(ctx context.Context, name string) core.OfficialProfiles {
	var profiles core.OfficialProfiles

	r.fillFromKnowledgeBase(ctx, name, &profiles)

	if profiles.Twitter == "" {
		profiles.Twitter = r.discoverSingle(ctx, fmt.Sprintf("%s official X account", name),
			func(url string) string {
				if handle := normalize.ExtractHandle(url, "x.com"); handle != "" {
					return handle
				}
				return normalize.ExtractHandle(url, "twitter.com")
			})
	}
	if profiles.Instagram == "" {
		profiles.Instagram = r.discoverSingle(ctx, fmt.Sprintf("site:instagram.com %s", name),
			func(url string) string {
				return normalize.ExtractHandle(url, "instagram.com")
			})
	}

	if incomplete(profiles) {
		discovered := r.discoverCombined(ctx, name)
		fillEmpty(&profiles, discovered)
	}

	return profiles
}

func incomplete(p core.OfficialProfiles) bool {
	return p.Twitter == "" || p.Instagram == "" || p.Facebook == "" ||
		p.LinkedIn == "" || p.TikTok == "" || p.YouTubeChannelID == "" ||
		p.YouTubeUsername == ""
}

func fillEmpty(dst *core.OfficialProfiles, src core.OfficialProfiles) {
	if dst.Twitter == "" {
		dst.Twitter = src.Twitter
	}
	if dst.Instagram == "" {
		dst.Instagram = src.Instagram
	}
	if dst.Facebook == "" {
		dst.Facebook = src.Facebook
	}
	if dst.LinkedIn == "" {
		dst.LinkedIn = src.LinkedIn
	}
	if dst.TikTok == "" {
		dst.TikTok = src.TikTok
	}
	if dst.YouTubeChannelID == "" {
		dst.YouTubeChannelID = src.YouTubeChannelID
	}
	if dst.YouTubeUsername == "" {
		dst.YouTubeUsername = src.YouTubeUsername
	}
}

func (r *Resolver) fillFromKnowledgeBase(ctx context.Context, name string, profiles *core.OfficialProfiles) {
	if r.kb == nil {
		return
	}

	entityID, err := r.kb.EntityID(ctx, name)
	if err != nil {
		logger.Warn("knowledge base entity lookup failed", "subject", name, "reason", err.Error())
		return
	}
	if entityID == "" {
		return
	}

	claims, err := r.kb.EntityClaims(ctx, entityID)
	if err != nil {
		logger.Warn("knowledge base claims fetch failed", "entity", entityID, "reason", err.Error())
		return
	}

	profiles.Twitter = claimHandle(claims.Value(knowledge.PropTwitter))
	profiles.Instagram = claimHandle(claims.Value(knowledge.PropInstagram))
	profiles.Facebook = claimHandle(claims.Value(knowledge.PropFacebook))
	profiles.LinkedIn = claimHandle(claims.Value(knowledge.PropLinkedIn))
	profiles.YouTubeChannelID = claims.Value(knowledge.PropYouTubeChannel)
	profiles.YouTubeUsername = claimHandle(claims.Value(knowledge.PropYouTubeUser))
}

func claimHandle(value string) string {
	return strings.ToLower(normalize.NormalizeHandle(value))
}

// discoverSingle runs one targeted query and returns the first handle the
// extractor accepts.
func (r *Resolver) discoverSingle(ctx context.Context, query string, extract func(string) string) string {
	if r.provider == nil {
		return ""
	}

	resp, err := r.provider.Search(ctx, query, search.KindSearch, search.Config{
		MaxResults: 5,
		Window:     search.WindowYear,
	})
	if err != nil {
		logger.Warn("handle discovery search failed", "query", query, "reason", err.Error())
		return ""
	}

	for _, result := range resp.Results {
		if result.URL == "" {
			continue
		}
		if handle := extract(result.URL); handle != "" {
			return handle
		}
	}
	return ""
}

// discoverCombined runs one multi-site OR query and extracts handles by
// domain from the result set.
func (r *Resolver) discoverCombined(ctx context.Context, name string) core.OfficialProfiles {
	var discovered core.OfficialProfiles
	if r.provider == nil {
		return discovered
	}

	query := fmt.Sprintf("%s (site:instagram.com OR site:x.com OR site:twitter.com OR site:facebook.com OR site:linkedin.com OR site:tiktok.com OR site:youtube.com)", name)
	resp, err := r.provider.Search(ctx, query, search.KindSearch, search.Config{MaxResults: 8})
	if err != nil {
		logger.Warn("combined handle discovery failed", "subject", name, "reason", err.Error())
		return discovered
	}

	for _, result := range resp.Results {
		url := result.URL
		if url == "" {
			continue
		}
		if discovered.Twitter == "" {
			if handle := normalize.ExtractHandle(url, "x.com"); handle != "" {
				discovered.Twitter = handle
			} else {
				discovered.Twitter = normalize.ExtractHandle(url, "twitter.com")
			}
		}
		if discovered.Instagram == "" {
			discovered.Instagram = normalize.ExtractHandle(url, "instagram.com")
		}
		if discovered.Facebook == "" {
			discovered.Facebook = normalize.ExtractHandle(url, "facebook.com")
		}
		if discovered.LinkedIn == "" {
			discovered.LinkedIn = normalize.ExtractHandle(url, "linkedin.com")
		}
		if discovered.TikTok == "" {
			discovered.TikTok = normalize.ExtractHandle(url, "tiktok.com")
		}
		if !normalize.IsVideoURL(url) && (strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")) {
			channelID, username := normalize.ExtractYouTubeProfile(url)
			if discovered.YouTubeChannelID == "" && channelID != "" {
				discovered.YouTubeChannelID = channelID
			}
			if discovered.YouTubeUsername == "" && username != "" {
				discovered.YouTubeUsername = username
			}
		}
	}

	return discovered
}
