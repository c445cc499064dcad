package search

import "context"

// Kind selects the Serper endpoint variant.
type Kind string

const (
	KindSearch Kind = "search"
	KindNews   Kind = "news"
	KindImages Kind = "images"
)

// Window restricts results to a recency window.
type Window string

const (
	WindowAny   Window = ""
	WindowDay   Window = "qdr:d"
	WindowWeek  Window = "qdr:w"
	WindowMonth Window = "qdr:m"
	WindowYear  Window = "qdr:y"
)

// Config holds per-request options.
type Config struct {
	MaxResults int
	Window     Window
	FaceFilter bool // image searches only: restrict to face crops
}

// Result is a unified search, news, or image result.
type Result struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date"`
	Source       string `json:"source"`
	Position     int    `json:"position"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ImageWidth   int    `json:"imageWidth,omitempty"`
	ImageHeight  int    `json:"imageHeight,omitempty"`
}

// KnowledgeGraph is the provider's entity panel, when present.
type KnowledgeGraph struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	ImageURL       string `json:"imageUrl"`
	Website        string `json:"website"`
	DescriptionURL string `json:"descriptionUrl"`
}

// Response carries whichever result lists the endpoint returned.
type Response struct {
	Results []Result
	News    []Result
	Images  []Result
	Graph   *KnowledgeGraph
}

// Provider is the gateway to an external search API. Failures are
// recoverable by contract: callers degrade to partial or empty results
// instead of aborting their pipeline stage.
type Provider interface {
	Search(ctx context.Context, query string, kind Kind, cfg Config) (*Response, error)
	Name() string
}
