package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"limelight/internal/logger"
)

const defaultSerperBaseURL = "https://google.serper.dev"

// maxErrorBody bounds how much of an error response is kept for reporting.
const maxErrorBody = 300

// Serper implements Provider against the serper.dev API.
type Serper struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerper creates a Serper search provider.
func NewSerper(apiKey string) (*Serper, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Serper{
		apiKey:  apiKey,
		baseURL: defaultSerperBaseURL,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// Name returns the name of this provider.
func (s *Serper) Name() string {
	return "serper"
}

type serperRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	TBS  string `json:"tbs,omitempty"`
}

type serperResult struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date"`
	Source       string `json:"source"`
	Position     int    `json:"position"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ImageWidth   int    `json:"imageWidth"`
	ImageHeight  int    `json:"imageHeight"`
}

type serperResponse struct {
	Organic        []serperResult `json:"organic"`
	News           []serperResult `json:"news"`
	Images         []serperResult `json:"images"`
	KnowledgeGraph *struct {
		Title          string `json:"title"`
		Type           string `json:"type"`
		ImageURL       string `json:"imageUrl"`
		Image          string `json:"image"`
		Website        string `json:"website"`
		DescriptionURL string `json:"descriptionUrl"`
	} `json:"knowledgeGraph"`
}

// Search issues one POST against the endpoint for the given kind.
func (s *Serper) Search(ctx context.Context, query string, kind Kind, cfg Config) (*Response, error) {
	num := cfg.MaxResults
	if num <= 0 {
		num = 10
	}

	payload := serperRequest{Q: query, Num: num}
	if cfg.Window != WindowAny {
		payload.TBS = string(cfg.Window)
	}
	if kind == KindImages && cfg.FaceFilter {
		payload.TBS = "itp:face"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+string(kind), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(raw)}
	}

	var apiResponse serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	out := &Response{
		Results: mapSerperResults(apiResponse.Organic),
		News:    mapSerperResults(apiResponse.News),
		Images:  mapSerperResults(apiResponse.Images),
	}
	if kg := apiResponse.KnowledgeGraph; kg != nil {
		imageURL := kg.ImageURL
		if imageURL == "" {
			imageURL = kg.Image
		}
		out.Graph = &KnowledgeGraph{
			Title:          kg.Title,
			Type:           kg.Type,
			ImageURL:       imageURL,
			Website:        kg.Website,
			DescriptionURL: kg.DescriptionURL,
		}
	}

	logger.Debug("serper search completed", "kind", string(kind), "query", query,
		"organic", len(out.Results), "news", len(out.News), "images", len(out.Images))

	return out, nil
}

func mapSerperResults(items []serperResult) []Result {
	var results []Result
	for _, item := range items {
		results = append(results, Result{
			Title:        item.Title,
			URL:          item.Link,
			Snippet:      item.Snippet,
			Date:         item.Date,
			Source:       item.Source,
			Position:     item.Position,
			ImageURL:     item.ImageURL,
			ThumbnailURL: item.ThumbnailURL,
			ImageWidth:   item.ImageWidth,
			ImageHeight:  item.ImageHeight,
		})
	}
	return results
}
