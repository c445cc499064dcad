// Package store persists role models, custom sources, and weekly digests.
package store

import (
	"context"
	"strings"
	"time"

	"limelight/internal/core"
)

// Repository is the persistence seam. Lookups return (nil, nil) on a miss
// so callers can distinguish "not found" from a storage failure.
type Repository interface {
	SaveRoleModel(ctx context.Context, rm *core.RoleModel) error
	GetRoleModel(ctx context.Context, name string) (*core.RoleModel, error)
	ListRoleModels(ctx context.Context) ([]core.RoleModel, error)

	AddCustomSource(ctx context.Context, roleModelID string, src core.CustomSource) error
	ListCustomSources(ctx context.Context, roleModelID string) ([]core.CustomSource, error)

	GetDigest(ctx context.Context, roleModelID, weekStart string) (*core.Digest, error)
	UpsertDigest(ctx context.Context, d *core.Digest) error
	ListRecentDigests(ctx context.Context, roleModelID string, limit int) ([]core.Digest, error)
	ListPreviousKeys(ctx context.Context, roleModelID, beforeWeek string, weeks int) ([]string, error)
	MarkEmailSent(ctx context.Context, digestID string, at time.Time) error

	Close() error
}

// previousKey matches the synthesizer's cross-week dedup key so stored
// items suppress repeats in later weeks.
func previousKey(url, title string) string {
	return strings.ToLower(url + "|" + title)
}
