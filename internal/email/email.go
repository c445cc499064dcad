// Package email renders and delivers the weekly digest message.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"limelight/internal/core"
	"limelight/internal/normalize"
)

// RenderOptions carries the links and labels the layout needs beyond the
// digest itself.
type RenderOptions struct {
	WeekStart string
	DigestURL string
}

var typeOrder = []core.SourceType{
	core.SourceTypeVideo,
	core.SourceTypeSocial,
	core.SourceTypeNews,
	core.SourceTypeWeb,
	core.SourceTypeCustom,
}

var typeLabels = map[core.SourceType]string{
	core.SourceTypeVideo:  "Video",
	core.SourceTypeSocial: "Social",
	core.SourceTypeNews:   "News",
	core.SourceTypeWeb:    "Web",
	core.SourceTypeCustom: "Custom",
}

var actionLabels = map[core.SourceType]string{
	core.SourceTypeVideo:  "Watch",
	core.SourceTypeSocial: "View post",
	core.SourceTypeNews:   "Read",
	core.SourceTypeWeb:    "Read",
	core.SourceTypeCustom: "Open",
}

type emailItem struct {
	Title    string
	Summary  string
	URL      string
	Meta     string
	Action   string
	Official bool
}

type emailSection struct {
	Label string
	Items []emailItem
}

type emailData struct {
	Name      string
	WeekLabel string
	Summary   string
	Spotlight *emailItem
	Sections  []emailSection
	DigestURL string
}

const htmlTemplate = `<div style="margin:0 auto;max-width:640px;padding:24px 18px;font-family:Arial, sans-serif;color:#1d1a16;background:#fffaf4;border:1px solid #f3e6d8;border-radius:20px;">
  <div style="font-size:12px;letter-spacing:2px;text-transform:uppercase;color:#8c7b6b;margin-bottom:10px;">Limelight Digest</div>
  <h2 style="font-size:28px;margin:0 0 8px;">{{.Name}}</h2>
  <div style="color:#6c5a4d;font-size:14px;margin-bottom:16px;">Week of {{.WeekLabel}}</div>
  <div style="font-size:16px;line-height:1.7;color:#2e2b27;margin-bottom:18px;">{{.Summary}}</div>
{{- with .Spotlight}}
  <div style="margin-top:20px;padding:16px;border-radius:16px;background:#fff3e6;border:1px solid #f2d8c2;">
    <div style="font-size:12px;letter-spacing:2px;text-transform:uppercase;color:#6c5a4d;margin-bottom:6px;">Video spotlight</div>
    <div style="font-size:16px;font-weight:600;margin-bottom:6px;">{{.Title}}</div>
    <div style="font-size:14px;line-height:1.6;color:#3d3a35;margin-bottom:10px;">{{.Summary}}</div>
    {{- if .URL}}
    <a href="{{.URL}}" style="color:#ff6b2d;text-decoration:none;">Watch the video</a>
    {{- end}}
  </div>
{{- end}}
{{- range .Sections}}
  <div style="margin-top:24px;">
    <div style="font-size:13px;letter-spacing:2px;text-transform:uppercase;color:#6c5a4d;margin-bottom:8px;">{{.Label}}</div>
    {{- range .Items}}
    <div style="padding:12px 0;border-bottom:1px solid #eee5d9;">
      {{- if .Meta}}
      <div style="font-size:12px;letter-spacing:1px;color:#8c7b6b;text-transform:uppercase;margin-bottom:6px;">{{.Meta}}</div>
      {{- end}}
      <div style="font-size:16px;font-weight:600;margin-bottom:6px;">{{.Title}}</div>
      {{- if .Summary}}
      <div style="font-size:14px;line-height:1.6;color:#3d3a35;margin-bottom:8px;">{{.Summary}}</div>
      {{- end}}
      {{- if .URL}}
      <a href="{{.URL}}" style="color:#ff6b2d;text-decoration:none;">{{.Action}}</a>
      {{- end}}
    </div>
    {{- end}}
  </div>
{{- end}}
{{- if .DigestURL}}
  <div style="margin-top:26px;padding-top:18px;border-top:1px solid #eee5d9;">
    <a href="{{.DigestURL}}" style="background:#ff6b2d;color:#fff;text-decoration:none;padding:10px 16px;border-radius:999px;font-size:14px;">View full digest</a>
  </div>
{{- end}}
</div>`

var digestTemplate = template.Must(template.New("digest").Parse(htmlTemplate))

// Render produces the HTML body and a plain-text fallback for one digest.
// A video item, when present, is pulled out as the spotlight; the rest are
// grouped by source type in a fixed section order.
func Render(name string, d core.Digest, opts RenderOptions) (string, string, error) {
	weekStart := opts.WeekStart
	if weekStart == "" {
		weekStart = d.WeekStart
	}
	data := emailData{
		Name:      name,
		WeekLabel: formatWeekLabel(weekStart),
		Summary:   d.SummaryText,
		DigestURL: opts.DigestURL,
	}

	spotlight := spotlightVideo(d.Items)
	if spotlight != nil {
		item := renderItem(*spotlight, core.SourceTypeVideo)
		data.Spotlight = &item
	}

	grouped := make(map[core.SourceType][]emailItem)
	for _, item := range d.Items {
		if spotlight != nil && item.ID == spotlight.ID {
			continue
		}
		itemType := effectiveType(item)
		grouped[itemType] = append(grouped[itemType], renderItem(item, itemType))
	}
	for _, sourceType := range typeOrder {
		if len(grouped[sourceType]) == 0 {
			continue
		}
		data.Sections = append(data.Sections, emailSection{
			Label: typeLabels[sourceType],
			Items: grouped[sourceType],
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render digest email: %w", err)
	}
	return buf.String(), renderText(name, d, data.WeekLabel, opts), nil
}

// Subject is the delivery subject line for a digest email.
func Subject(name, weekStart string) string {
	return fmt.Sprintf("Your %s digest for the week of %s", name, weekStart)
}

func renderText(name string, d core.Digest, weekLabel string, opts RenderOptions) string {
	lines := []string{
		name + " digest",
		"Week of " + weekLabel,
		"",
		d.SummaryText,
		"",
	}
	for _, item := range d.Items {
		title := item.SourceTitle
		if title == "" {
			title = "Update"
		}
		line := "- " + title + ": " + item.Summary
		if item.SourceURL != "" {
			line += " (" + item.SourceURL + ")"
		}
		lines = append(lines, line)
	}
	if opts.DigestURL != "" {
		lines = append(lines, "", "View full digest: "+opts.DigestURL)
	}
	return strings.Join(lines, "\n")
}

func renderItem(item core.DigestItem, itemType core.SourceType) emailItem {
	title := item.SourceTitle
	if title == "" {
		title = "Update"
	}
	var meta []string
	if item.SourceDate != "" {
		meta = append(meta, item.SourceDate)
	}
	if item.IsOfficial {
		meta = append(meta, "Official")
	}
	return emailItem{
		Title:    title,
		Summary:  item.Summary,
		URL:      item.SourceURL,
		Meta:     strings.Join(meta, " | "),
		Action:   actionLabels[itemType],
		Official: item.IsOfficial,
	}
}

func spotlightVideo(items []core.DigestItem) *core.DigestItem {
	for i, item := range items {
		if effectiveType(item) == core.SourceTypeVideo {
			return &items[i]
		}
	}
	return nil
}

func effectiveType(item core.DigestItem) core.SourceType {
	if item.SourceType == core.SourceTypeVideo || normalize.IsVideoURL(item.SourceURL) {
		return core.SourceTypeVideo
	}
	if item.SourceType == "" {
		return core.SourceTypeWeb
	}
	return item.SourceType
}

func formatWeekLabel(isoDate string) string {
	parsed, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return parsed.Format("Jan 2, 2006")
}
