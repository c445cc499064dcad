// Package pipeline orchestrates one weekly digest run end to end.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"limelight/internal/collector"
	"limelight/internal/core"
	"limelight/internal/email"
	"limelight/internal/logger"
	"limelight/internal/profiles"
	"limelight/internal/store"
	"limelight/internal/summarize"
	"limelight/internal/synthesize"
)

const defaultPreviousWeeks = 6

// Options tunes a single run.
type Options struct {
	// Force regenerates the week even when a digest already exists. The
	// stored digest keeps its identity.
	Force bool
	// Email sends the digest after storing it. Delivery failures never
	// fail the run.
	Email bool
	// Recipient is the delivery address when Email is set.
	Recipient string
	// Now anchors the week. Zero means the current time.
	Now time.Time
}

// Orchestrator wires collection, synthesis, summarization, and delivery
// around the repository. Collaborators other than the repository may be
// nil or internally disabled; the run degrades instead of failing.
type Orchestrator struct {
	repo          store.Repository
	collector     *collector.Collector
	synthesizer   *synthesize.Synthesizer
	summarizer    *summarize.Summarizer
	resolver      *profiles.Resolver
	sender        email.Sender
	previousWeeks int
}

// New creates an Orchestrator. previousWeeks bounds cross-week dedup; zero
// selects the default window.
func New(
	repo store.Repository,
	c *collector.Collector,
	synthesizer *synthesize.Synthesizer,
	summarizer *summarize.Summarizer,
	resolver *profiles.Resolver,
	sender email.Sender,
	previousWeeks int,
) *Orchestrator {
	if previousWeeks <= 0 {
		previousWeeks = defaultPreviousWeeks
	}
	return &Orchestrator{
		repo:          repo,
		collector:     c,
		synthesizer:   synthesizer,
		summarizer:    summarizer,
		resolver:      resolver,
		sender:        sender,
		previousWeeks: previousWeeks,
	}
}

// Run produces the digest for the week containing opts.Now. An existing
// digest for that week is returned as-is unless Force is set. Only
// repository failures propagate; every enrichment stage degrades.
func (o *Orchestrator) Run(ctx context.Context, rm *core.RoleModel, opts Options) (*core.Digest, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	weekStartDate := core.WeekStart(now)
	weekStart := core.ISODate(weekStartDate)

	existing, err := o.repo.GetDigest(ctx, rm.ID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing digest: %w", err)
	}
	if existing != nil && !opts.Force {
		return existing, nil
	}

	custom, err := o.repo.ListCustomSources(ctx, rm.ID)
	if err != nil {
		logger.Warn("failed to load custom sources", "subject", rm.Name, "reason", err.Error())
	}
	previousKeys, err := o.repo.ListPreviousKeys(ctx, rm.ID, weekStart, o.previousWeeks)
	if err != nil {
		logger.Warn("failed to load previous digest keys", "subject", rm.Name, "reason", err.Error())
	}

	candidates := o.collector.Collect(ctx, rm.Name, weekStartDate, custom)
	digest := o.synthesizer.Synthesize(ctx, rm.Name, weekStartDate, candidates, previousKeys)

	digest.RoleModelID = rm.ID
	digest.WeekStart = weekStart
	digest.GeneratedAt = time.Now()
	if existing != nil {
		digest.ID = existing.ID
	} else {
		digest.ID = uuid.NewString()
	}

	if o.summarizer != nil {
		digest.Items = o.summarizer.Items(ctx, digest.Items, rm.Name)
	}
	if refreshed := o.synthesizer.Resummarize(ctx, rm.Name, digest.Items); refreshed != "" {
		digest.SummaryText = refreshed
	}

	o.tagOfficialItems(ctx, rm.Name, &digest)

	if err := o.repo.UpsertDigest(ctx, &digest); err != nil {
		return nil, fmt.Errorf("failed to store digest: %w", err)
	}

	if opts.Email {
		o.deliver(ctx, rm.Name, &digest, opts.Recipient)
	}

	return &digest, nil
}

// tagOfficialItems marks items whose URL belongs to one of the subject's
// resolved handles.
func (o *Orchestrator) tagOfficialItems(ctx context.Context, name string, digest *core.Digest) {
	if o.resolver == nil {
		return
	}
	resolved := o.resolver.Resolve(ctx, name)
	if resolved.Empty() {
		return
	}
	for i, item := range digest.Items {
		if item.IsOfficial {
			continue
		}
		digest.Items[i].IsOfficial = isOfficialSocialURL(item.SourceURL, resolved) ||
			isOfficialVideoURL(item.SourceURL, resolved)
	}
}

func isOfficialSocialURL(url string, p core.OfficialProfiles) bool {
	lowerURL := strings.ToLower(url)
	if handle := strings.ToLower(p.Twitter); handle != "" {
		if strings.Contains(lowerURL, "twitter.com/"+handle) || strings.Contains(lowerURL, "x.com/"+handle) {
			return true
		}
	}
	if handle := strings.ToLower(p.Instagram); handle != "" && strings.Contains(lowerURL, "instagram.com/"+handle) {
		return true
	}
	if handle := strings.ToLower(p.Facebook); handle != "" && strings.Contains(lowerURL, "facebook.com/"+handle) {
		return true
	}
	if handle := strings.ToLower(p.LinkedIn); handle != "" && strings.Contains(lowerURL, "linkedin.com/"+handle) {
		return true
	}
	return false
}

func isOfficialVideoURL(url string, p core.OfficialProfiles) bool {
	lowerURL := strings.ToLower(url)
	if channelID := strings.ToLower(p.YouTubeChannelID); channelID != "" && strings.Contains(lowerURL, "channel/"+channelID) {
		return true
	}
	if username := strings.ToLower(p.YouTubeUsername); username != "" {
		if strings.Contains(lowerURL, "/@"+username) || strings.Contains(lowerURL, "/user/"+username) {
			return true
		}
	}
	return false
}

// deliver renders and sends the digest email, recording the sent time.
// Failures are logged and swallowed so a bad relay never loses the digest.
func (o *Orchestrator) deliver(ctx context.Context, name string, digest *core.Digest, recipient string) {
	if o.sender == nil || recipient == "" {
		return
	}

	html, text, err := email.Render(name, *digest, email.RenderOptions{WeekStart: digest.WeekStart})
	if err != nil {
		logger.Warn("digest email render failed", "subject", name, "reason", err.Error())
		return
	}

	msg := email.Message{
		To:      recipient,
		Subject: email.Subject(name, digest.WeekStart),
		HTML:    html,
		Text:    text,
	}
	if err := o.sender.Send(ctx, msg); err != nil {
		logger.Warn("digest email delivery failed", "subject", name, "reason", err.Error())
		return
	}

	sentAt := time.Now()
	digest.EmailSentAt = sentAt
	if err := o.repo.MarkEmailSent(ctx, digest.ID, sentAt); err != nil {
		logger.Warn("failed to record email delivery", "subject", name, "reason", err.Error())
	}
}
