// Package fetch performs outbound page and feed retrieval. Arbitrary page
// fetching is gated behind the outbound-fetch capability and is disabled by
// default; every function degrades to an empty or placeholder result rather
// than returning an error to pipeline stages.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"limelight/internal/logger"
	"limelight/internal/normalize"
)

const (
	// DefaultMaxChars bounds extracted page text.
	DefaultMaxChars = 12000
	// customSnippetChars bounds custom-source snippets.
	customSnippetChars = 360

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Fetcher retrieves page text and images with an outbound gate.
type Fetcher struct {
	client          *http.Client
	outboundEnabled bool
	maxChars        int
}

// NewFetcher creates a Fetcher. maxChars <= 0 selects DefaultMaxChars.
func NewFetcher(outboundEnabled bool, maxChars int) *Fetcher {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		outboundEnabled: outboundEnabled,
		maxChars:        maxChars,
	}
}

// OutboundEnabled reports whether arbitrary page fetching is allowed.
func (f *Fetcher) OutboundEnabled() bool {
	return f.outboundEnabled
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}
	return resp, nil
}

// PageText returns the visible text of a page, whitespace-collapsed and
// truncated. Returns "" when outbound fetching is disabled or on any
// failure.
func (f *Fetcher) PageText(ctx context.Context, pageURL string) string {
	if pageURL == "" || !f.outboundEnabled {
		return ""
	}

	resp, err := f.get(ctx, pageURL)
	if err != nil {
		logger.Debug("page text fetch failed", "url", pageURL, "reason", err.Error())
		return ""
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	return extractVisibleText(doc, f.maxChars)
}

// CustomSourceSnippet returns a short plain-text snippet for a user-supplied
// source URL. When outbound fetching is disabled or the fetch fails, the
// snippet is a placeholder naming the URL, never silently empty.
func (f *Fetcher) CustomSourceSnippet(ctx context.Context, sourceURL string) string {
	placeholder := "Custom source: " + sourceURL
	if !f.outboundEnabled {
		return placeholder
	}

	resp, err := f.get(ctx, sourceURL)
	if err != nil {
		return placeholder
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return placeholder
	}

	text := extractVisibleText(doc, customSnippetChars)
	if text == "" {
		return placeholder
	}
	return text
}

func extractVisibleText(doc *goquery.Document, maxChars int) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()
	text := normalize.SanitizeSnippet(doc.Find("body").Text())
	if len(text) > maxChars {
		text = strings.TrimSpace(text[:maxChars])
	}
	return text
}
