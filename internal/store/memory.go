package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"limelight/internal/core"
)

// Memory is an in-process Repository with the same semantics as SQLite.
// It backs tests and one-shot runs that should not touch disk.
type Memory struct {
	mu            sync.RWMutex
	roleModels    map[string]core.RoleModel // by ID
	customSources map[string][]core.CustomSource
	digests       map[string]core.Digest // by digest ID
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		roleModels:    make(map[string]core.RoleModel),
		customSources: make(map[string][]core.CustomSource),
		digests:       make(map[string]core.Digest),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) SaveRoleModel(ctx context.Context, rm *core.RoleModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleModels[rm.ID] = *rm
	return nil
}

func (m *Memory) GetRoleModel(ctx context.Context, name string) (*core.RoleModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rm := range m.roleModels {
		if strings.EqualFold(rm.Name, name) {
			found := rm
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListRoleModels(ctx context.Context) ([]core.RoleModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.RoleModel, 0, len(m.roleModels))
	for _, rm := range m.roleModels {
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AddCustomSource(ctx context.Context, roleModelID string, src core.CustomSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customSources[roleModelID] {
		if existing.URL == src.URL {
			return nil
		}
	}
	m.customSources[roleModelID] = append(m.customSources[roleModelID], src)
	return nil
}

func (m *Memory) ListCustomSources(ctx context.Context, roleModelID string) ([]core.CustomSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]core.CustomSource(nil), m.customSources[roleModelID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (m *Memory) GetDigest(ctx context.Context, roleModelID, weekStart string) (*core.Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.digests {
		if d.RoleModelID == roleModelID && d.WeekStart == weekStart {
			found := cloneDigest(d)
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpsertDigest(ctx context.Context, d *core.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.digests {
		if existing.RoleModelID == d.RoleModelID && existing.WeekStart == d.WeekStart {
			d.ID = id
			break
		}
	}

	stored := cloneDigest(*d)
	stored.Items = stored.Items[:0]
	seen := make(map[string]bool, len(d.Items))
	for _, item := range d.Items {
		urlKey := strings.ToLower(item.SourceURL)
		if urlKey != "" && seen[urlKey] {
			continue
		}
		seen[urlKey] = true
		stored.Items = append(stored.Items, item)
	}

	m.digests[d.ID] = stored
	return nil
}

func (m *Memory) ListRecentDigests(ctx context.Context, roleModelID string, limit int) ([]core.Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recentDigests(roleModelID, "", limit), nil
}

func (m *Memory) ListPreviousKeys(ctx context.Context, roleModelID, beforeWeek string, weeks int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for _, d := range m.recentDigests(roleModelID, beforeWeek, weeks) {
		for _, item := range d.Items {
			keys = append(keys, previousKey(item.SourceURL, item.SourceTitle))
		}
	}
	return keys, nil
}

func (m *Memory) MarkEmailSent(ctx context.Context, digestID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.digests[digestID]
	if !ok {
		return nil
	}
	d.EmailSentAt = at
	m.digests[digestID] = d
	return nil
}

// recentDigests returns digests newest week first, optionally restricted to
// weeks strictly before beforeWeek. Caller holds the lock.
func (m *Memory) recentDigests(roleModelID, beforeWeek string, limit int) []core.Digest {
	var out []core.Digest
	for _, d := range m.digests {
		if d.RoleModelID != roleModelID {
			continue
		}
		if beforeWeek != "" && d.WeekStart >= beforeWeek {
			continue
		}
		out = append(out, cloneDigest(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cloneDigest(d core.Digest) core.Digest {
	d.Topics = append([]string(nil), d.Topics...)
	d.Items = append([]core.DigestItem(nil), d.Items...)
	return d
}
