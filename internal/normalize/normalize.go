// Package normalize is the single source of truth for URL classification,
// snippet sanitizing, and URL canonicalization. Every other component calls
// into this package instead of re-deriving platform regexes.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"limelight/internal/core"
)

var socialPostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)twitter\.com/[^/]+/status/`),
	regexp.MustCompile(`(?i)x\.com/[^/]+/status/`),
	regexp.MustCompile(`(?i)instagram\.com/(p|reel)/`),
	regexp.MustCompile(`(?i)facebook\.com/[^/]+/posts/`),
	regexp.MustCompile(`(?i)facebook\.com/[^/]+/videos/`),
	regexp.MustCompile(`(?i)facebook\.com/story\.php`),
	regexp.MustCompile(`(?i)linkedin\.com/posts/`),
	regexp.MustCompile(`(?i)linkedin\.com/feed/update/`),
	regexp.MustCompile(`(?i)tiktok\.com/@[^/]+/video/`),
	regexp.MustCompile(`(?i)bsky\.app/profile/[^/]+/post/`),
}

var socialProfileDomains = []string{
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"linkedin.com",
	"tiktok.com",
	"youtube.com",
	"bsky.app",
}

// handleBlocklist lists path segments that look like handles but are
// platform plumbing, not profiles.
var handleBlocklist = map[string]bool{
	"home":    true,
	"search":  true,
	"hashtag": true,
	"intent":  true,
	"share":   true,
	"i":       true,
	"explore": true,
	"status":  true,
	"p":       true,
	"reel":    true,
	"reels":   true,
	"tv":      true,
	"posts":   true,
	"videos":  true,
}

var videoMarkers = []string{
	"youtube.com/watch",
	"youtube.com/shorts/",
	"youtube.com/live/",
	"youtube.com/embed/",
	"youtu.be/",
}

// trackingParams are query parameters stripped during URL normalization.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"igsh":    true,
	"igshid":  true,
	"si":      true,
	"ref_src": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeSnippet collapses whitespace runs to single spaces and trims.
// Idempotent.
func SanitizeSnippet(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// IsVideoURL reports whether the URL points at a video watch page for the
// supported video host.
func IsVideoURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range videoMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsSocialPostURL reports whether the URL is a social post, as opposed to a
// bare profile page.
func IsSocialPostURL(rawURL string) bool {
	for _, pattern := range socialPostPatterns {
		if pattern.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// IsSocialProfileURL reports whether the URL is a profile page on a known
// social platform. Posts and video watch pages are excluded.
func IsSocialProfileURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	onPlatform := false
	for _, domain := range socialProfileDomains {
		if strings.Contains(lower, domain) {
			onPlatform = true
			break
		}
	}
	if !onPlatform || IsSocialPostURL(rawURL) || IsVideoURL(rawURL) {
		return false
	}
	return true
}

// Classify maps a URL to its source type: video, social post, or web.
func Classify(rawURL string) core.SourceType {
	switch {
	case IsVideoURL(rawURL):
		return core.SourceTypeVideo
	case IsSocialPostURL(rawURL):
		return core.SourceTypeSocial
	default:
		return core.SourceTypeWeb
	}
}

// NormalizeURL canonicalizes a URL for comparison and storage: fragment
// dropped, tracking params stripped, scheme and host lower-cased, and the
// legacy twitter.com host collapsed to x.com. Parse failures return the
// input unchanged.
func NormalizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Host)
	if host == "twitter.com" || host == "www.twitter.com" {
		host = "x.com"
	}
	parsed.Host = host

	query := parsed.Query()
	changed := false
	for param := range query {
		if trackingParams[param] || strings.HasPrefix(strings.ToLower(param), "utm_") {
			query.Del(param)
			changed = true
		}
	}
	if changed {
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// Key returns the lower-cased normalized form of a URL, used as a dedup key.
func Key(rawURL string) string {
	return strings.ToLower(NormalizeURL(rawURL))
}

// NormalizeHandle strips @ prefixes, scheme/host noise, and trailing slashes
// from a handle value.
func NormalizeHandle(value string) string {
	if value == "" {
		return ""
	}
	out := strings.TrimPrefix(value, "@")
	out = regexp.MustCompile(`(?i)^https?://(www\.)?`).ReplaceAllString(out, "")
	out = regexp.MustCompile(`(?i)^(x\.com|twitter\.com|instagram\.com|facebook\.com|linkedin\.com)/`).ReplaceAllString(out, "")
	return strings.TrimSuffix(out, "/")
}

// ExtractHandle pulls a profile handle for the given platform domain out of
// a URL. Blocklisted plumbing segments yield "".
func ExtractHandle(rawURL, domain string) string {
	lower := strings.ToLower(rawURL)

	if domain == "linkedin.com" {
		match := regexp.MustCompile(`(?i)linkedin\.com/(in|company)/([^/?#]+)`).FindStringSubmatch(lower)
		if match == nil {
			return ""
		}
		handle := NormalizeHandle(match[2])
		if handle == "" || handleBlocklist[strings.ToLower(handle)] {
			return ""
		}
		return handle
	}

	match := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(domain) + `/([^/?#]+)`).FindStringSubmatch(lower)
	if match == nil {
		return ""
	}
	handle := NormalizeHandle(match[1])
	if handle == "" || handleBlocklist[strings.ToLower(handle)] {
		return ""
	}
	return handle
}

var (
	ytChannelPattern  = regexp.MustCompile(`(?i)youtube\.com/channel/([^/?#]+)`)
	ytAtPattern       = regexp.MustCompile(`(?i)youtube\.com/@([^/?#]+)`)
	ytUserPattern     = regexp.MustCompile(`(?i)youtube\.com/user/([^/?#]+)`)
	ytCustomPattern   = regexp.MustCompile(`(?i)youtube\.com/c/([^/?#]+)`)
)

// ExtractYouTubeProfile pulls a channel ID or username from a YouTube
// profile URL. Exactly one of the two return values is populated on a match.
func ExtractYouTubeProfile(rawURL string) (channelID, username string) {
	lower := strings.ToLower(rawURL)
	if match := ytChannelPattern.FindStringSubmatch(lower); match != nil {
		return match[1], ""
	}
	for _, pattern := range []*regexp.Regexp{ytAtPattern, ytUserPattern, ytCustomPattern} {
		if match := pattern.FindStringSubmatch(lower); match != nil {
			return "", match[1]
		}
	}
	return "", ""
}

// ExtractDomain returns the bare hostname of a URL without the www prefix,
// or "" when the URL does not parse.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// NameTokens lower-cases a subject name and splits it into alphanumeric
// tokens.
func NameTokens(name string) []string {
	cleaned := regexp.MustCompile(`[^a-z0-9\s]`).ReplaceAllString(strings.ToLower(name), " ")
	return strings.Fields(cleaned)
}
