package fetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"limelight/internal/logger"
)

// ogMetaNames are the meta properties/names checked for a page image, in
// preference order.
var ogMetaNames = []string{
	"og:image",
	"og:image:url",
	"og:image:secure_url",
	"twitter:image",
	"twitter:image:src",
	"image",
	"thumbnail",
}

// OpenGraphImage scrapes a page for its Open Graph (or similar) image URL,
// resolved against the page URL. Returns "" when outbound fetching is
// disabled, on any fetch or parse failure, or when only a data: URI is
// advertised.
func (f *Fetcher) OpenGraphImage(ctx context.Context, pageURL string) string {
	if pageURL == "" || !f.outboundEnabled {
		return ""
	}

	resp, err := f.get(ctx, pageURL)
	if err != nil {
		logger.Debug("open graph fetch failed", "url", pageURL, "reason", err.Error())
		return ""
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	image := findMetaImage(doc)
	if image == "" {
		image, _ = doc.Find(`link[rel="image_src"]`).Attr("href")
	}
	if image == "" || strings.HasPrefix(image, "data:") {
		return ""
	}
	return resolveAgainst(image, pageURL)
}

func findMetaImage(doc *goquery.Document) string {
	for _, name := range ogMetaNames {
		for _, attr := range []string{"property", "name"} {
			selector := `meta[` + attr + `="` + name + `"]`
			if content, ok := doc.Find(selector).Attr("content"); ok && content != "" {
				return content
			}
		}
	}
	return ""
}

// resolveAgainst resolves a possibly relative URL against a base page URL,
// returning the input on parse failure.
func resolveAgainst(maybeURL, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return maybeURL
	}
	ref, err := url.Parse(maybeURL)
	if err != nil {
		return maybeURL
	}
	return base.ResolveReference(ref).String()
}
