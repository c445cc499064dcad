// Package knowledge wraps the Wikidata-style knowledge base: entity lookup
// by label and claim extraction by property.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Wikidata property identifiers used by the resolver and validators.
const (
	PropTwitter        = "P2002"
	PropInstagram      = "P2003"
	PropFacebook       = "P2013"
	PropLinkedIn       = "P6634"
	PropYouTubeChannel = "P2397"
	PropYouTubeUser    = "P1651"
	PropImage          = "P18"
	PropDateOfDeath    = "P570"
)

const defaultBaseURL = "https://www.wikidata.org"

// Client queries the knowledge base. A nil *Client is a valid disabled
// client: every method returns the zero result.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a knowledge-base client. An empty baseURL selects the
// public endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Claims is the property -> statement-list map for one entity.
type Claims map[string][]claimStatement

type claimStatement struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// Value extracts the first statement's value for a property. It supports
// plain-string, referenced-entity, monolingual-text, and time value shapes
// and returns "" when the property is missing.
func (c Claims) Value(property string) string {
	statements := c[property]
	if len(statements) == 0 {
		return ""
	}
	raw := statements[0].MainSnak.DataValue.Value
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var shaped struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		Time string `json:"time"`
	}
	if err := json.Unmarshal(raw, &shaped); err != nil {
		return ""
	}
	switch {
	case shaped.ID != "":
		return shaped.ID
	case shaped.Text != "":
		return shaped.Text
	default:
		return shaped.Time
	}
}

// EntityID resolves a name to an entity ID by exact case-insensitive label
// match among the top candidates. No fuzzy guessing: no exact match means
// "" with a nil error.
func (c *Client) EntityID(ctx context.Context, name string) (string, error) {
	if c == nil {
		return "", nil
	}

	endpoint := fmt.Sprintf(
		"%s/w/api.php?action=wbsearchentities&format=json&language=en&limit=5&search=%s",
		c.baseURL, url.QueryEscape(name),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create entity search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("entity search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("entity search failed with status %d", resp.StatusCode)
	}

	var data struct {
		Search []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"search"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to parse entity search response: %w", err)
	}

	for _, entry := range data.Search {
		if strings.EqualFold(entry.Label, name) {
			return entry.ID, nil
		}
	}
	return "", nil
}

// EntityClaims fetches the full claim set for an entity.
func (c *Client) EntityClaims(ctx context.Context, entityID string) (Claims, error) {
	if c == nil || entityID == "" {
		return Claims{}, nil
	}

	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", c.baseURL, url.PathEscape(entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity data request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity data fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entity data fetch failed with status %d", resp.StatusCode)
	}

	var data struct {
		Entities map[string]struct {
			Claims Claims `json:"claims"`
		} `json:"entities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse entity data response: %w", err)
	}

	entity, ok := data.Entities[entityID]
	if !ok {
		return Claims{}, nil
	}
	return entity.Claims, nil
}

// ImageFileURL turns a P18 image file name into a fetchable Commons URL.
func ImageFileURL(fileName string) string {
	if fileName == "" {
		return ""
	}
	return "https://commons.wikimedia.org/wiki/Special:FilePath/" + url.QueryEscape(fileName)
}
