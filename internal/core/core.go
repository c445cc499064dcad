package core

import "time"

// SourceType classifies where a discovered item came from.
type SourceType string

const (
	SourceTypeWeb    SourceType = "web"
	SourceTypeNews   SourceType = "news"
	SourceTypeVideo  SourceType = "video"
	SourceTypeSocial SourceType = "social"
	SourceTypeCustom SourceType = "custom"
)

// Candidate is a raw discovered item before digest inclusion. It has no
// identity beyond its URL and only lives for one pipeline run.
type Candidate struct {
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Snippet    string     `json:"snippet"`
	SourceType SourceType `json:"sourceType"`
	Date       string     `json:"date"` // source-reported, not guaranteed parseable
}

// DigestItem is a candidate promoted into a digest.
type DigestItem struct {
	ID          string     `json:"id"`
	SourceTitle string     `json:"sourceTitle"`
	SourceURL   string     `json:"sourceUrl"`
	SourceType  SourceType `json:"sourceType"`
	SourceDate  string     `json:"sourceDate"`
	Summary     string     `json:"summary"`
	ContentHash string     `json:"contentHash"`
	IsOfficial  bool       `json:"isOfficial"`
}

// Digest is one role-model-week unit. At most one exists per
// (RoleModelID, WeekStart) pair; regeneration under force keeps the identity.
type Digest struct {
	ID          string       `json:"id"`
	RoleModelID string       `json:"roleModelId"`
	WeekStart   string       `json:"weekStart"` // ISO date, Monday-aligned
	SummaryText string       `json:"summaryText"`
	Topics      []string     `json:"topics"`
	Items       []DigestItem `json:"items"`
	GeneratedAt time.Time    `json:"generatedAt"`
	EmailSentAt time.Time    `json:"emailSentAt,omitempty"`
}

// OfficialProfiles holds a subject's resolved social and video handles.
// Fields are empty strings when discovery found nothing.
type OfficialProfiles struct {
	Twitter          string `json:"twitter"`
	Instagram        string `json:"instagram"`
	Facebook         string `json:"facebook"`
	LinkedIn         string `json:"linkedin"`
	TikTok           string `json:"tiktok"`
	YouTubeChannelID string `json:"youtubeChannelId"`
	YouTubeUsername  string `json:"youtubeUsername"`
}

// Empty reports whether no handle was resolved at all.
func (p OfficialProfiles) Empty() bool {
	return p.Twitter == "" && p.Instagram == "" && p.Facebook == "" &&
		p.LinkedIn == "" && p.TikTok == "" && p.YouTubeChannelID == "" &&
		p.YouTubeUsername == ""
}

// BioSource is candidate evidence for biography writing.
type BioSource struct {
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Snippet    string     `json:"snippet"`
	SourceType SourceType `json:"sourceType"`
	Date       string     `json:"date"`
	Score      float64    `json:"score"`
	IsStrong   bool       `json:"isStrong"`
}

// ImageCandidate is a scored profile-image candidate.
type ImageCandidate struct {
	Title        string  `json:"title"`
	ImageURL     string  `json:"imageUrl"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	SourceURL    string  `json:"sourceUrl"`
	ImageWidth   int     `json:"imageWidth,omitempty"`
	ImageHeight  int     `json:"imageHeight,omitempty"`
	Boost        float64 `json:"boost,omitempty"`
	Score        float64 `json:"score"`
}

// RoleModel is the tracked subject.
type RoleModel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomSource is a user-supplied URL folded into weekly collection.
type CustomSource struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// WeekStart returns the Monday of the week containing t, zeroed to the
// local start of day.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	back := (int(t.Weekday()) + 6) % 7
	t = t.AddDate(0, 0, -back)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ISODate formats t as an ISO calendar date.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
