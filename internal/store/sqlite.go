package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"limelight/internal/core"
)

// SQLite is the file-backed Repository implementation.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (and if needed creates) the database under dataDir and
// applies the schema.
func NewSQLite(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "limelight.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	roleModelsTable := `
	CREATE TABLE IF NOT EXISTS role_models (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		image_url TEXT,
		created_at DATETIME
	);`

	customSourcesTable := `
	CREATE TABLE IF NOT EXISTS custom_sources (
		role_model_id TEXT NOT NULL,
		label TEXT,
		url TEXT NOT NULL,
		UNIQUE (role_model_id, url),
		FOREIGN KEY (role_model_id) REFERENCES role_models (id)
	);`

	// One digest per role model and week. The unique constraint is the
	// idempotency guard: regeneration updates in place instead of
	// inserting a second row.
	digestWeeksTable := `
	CREATE TABLE IF NOT EXISTS digest_weeks (
		id TEXT PRIMARY KEY,
		role_model_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		summary_text TEXT,
		topics TEXT,
		generated_at DATETIME,
		email_sent_at DATETIME,
		UNIQUE (role_model_id, week_start),
		FOREIGN KEY (role_model_id) REFERENCES role_models (id)
	);`

	digestItemsTable := `
	CREATE TABLE IF NOT EXISTS digest_items (
		id TEXT PRIMARY KEY,
		digest_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		source_title TEXT,
		source_url TEXT,
		source_type TEXT,
		source_date TEXT,
		summary TEXT,
		content_hash TEXT,
		is_official INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (digest_id) REFERENCES digest_weeks (id)
	);`

	tables := []string{roleModelsTable, customSourcesTable, digestWeeksTable, digestItemsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveRoleModel inserts or replaces a role model by ID.
func (s *SQLite) SaveRoleModel(ctx context.Context, rm *core.RoleModel) error {
	query := `
	INSERT OR REPLACE INTO role_models (id, name, image_url, created_at)
	VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, rm.ID, rm.Name, rm.ImageURL, rm.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save role model: %w", err)
	}
	return nil
}

// GetRoleModel looks a role model up by name, case-insensitively.
func (s *SQLite) GetRoleModel(ctx context.Context, name string) (*core.RoleModel, error) {
	query := `
	SELECT id, name, image_url, created_at
	FROM role_models
	WHERE name = ? COLLATE NOCASE`

	var rm core.RoleModel
	err := s.db.QueryRowContext(ctx, query, name).Scan(&rm.ID, &rm.Name, &rm.ImageURL, &rm.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan role model: %w", err)
	}
	return &rm, nil
}

// ListRoleModels returns all role models ordered by creation time.
func (s *SQLite) ListRoleModels(ctx context.Context) ([]core.RoleModel, error) {
	query := `
	SELECT id, name, image_url, created_at
	FROM role_models
	ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list role models: %w", err)
	}
	defer rows.Close()

	var out []core.RoleModel
	for rows.Next() {
		var rm core.RoleModel
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.ImageURL, &rm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role model: %w", err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// AddCustomSource registers a user-supplied URL for a role model. Adding
// the same URL twice is a no-op.
func (s *SQLite) AddCustomSource(ctx context.Context, roleModelID string, src core.CustomSource) error {
	query := `
	INSERT OR IGNORE INTO custom_sources (role_model_id, label, url)
	VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, roleModelID, src.Label, src.URL)
	if err != nil {
		return fmt.Errorf("failed to add custom source: %w", err)
	}
	return nil
}

// ListCustomSources returns a role model's custom sources.
func (s *SQLite) ListCustomSources(ctx context.Context, roleModelID string) ([]core.CustomSource, error) {
	query := `
	SELECT label, url
	FROM custom_sources
	WHERE role_model_id = ?
	ORDER BY url`

	rows, err := s.db.QueryContext(ctx, query, roleModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom sources: %w", err)
	}
	defer rows.Close()

	var out []core.CustomSource
	for rows.Next() {
		var src core.CustomSource
		if err := rows.Scan(&src.Label, &src.URL); err != nil {
			return nil, fmt.Errorf("failed to scan custom source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// GetDigest returns the digest for one role-model week, or nil when none
// was generated yet.
func (s *SQLite) GetDigest(ctx context.Context, roleModelID, weekStart string) (*core.Digest, error) {
	query := `
	SELECT id, role_model_id, week_start, summary_text, topics, generated_at, email_sent_at
	FROM digest_weeks
	WHERE role_model_id = ? AND week_start = ?`

	row := s.db.QueryRowContext(ctx, query, roleModelID, weekStart)
	digest, err := scanDigest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	digest.Items, err = s.digestItems(ctx, digest.ID)
	if err != nil {
		return nil, err
	}
	return digest, nil
}

// UpsertDigest stores a digest for its week. A digest already stored for
// that week keeps its row identity: the caller's Digest gets the stored ID
// and the items are replaced wholesale.
func (s *SQLite) UpsertDigest(ctx context.Context, d *core.Digest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM digest_weeks WHERE role_model_id = ? AND week_start = ?`,
		d.RoleModelID, d.WeekStart,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing digest: %w", err)
	}
	if existingID != "" {
		d.ID = existingID
	}

	topics, _ := json.Marshal(d.Topics)
	var emailSentAt any
	if !d.EmailSentAt.IsZero() {
		emailSentAt = d.EmailSentAt
	}

	query := `
	INSERT INTO digest_weeks (id, role_model_id, week_start, summary_text, topics, generated_at, email_sent_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (role_model_id, week_start) DO UPDATE SET
		summary_text = excluded.summary_text,
		topics = excluded.topics,
		generated_at = excluded.generated_at,
		email_sent_at = excluded.email_sent_at`

	if _, err := tx.ExecContext(ctx, query,
		d.ID, d.RoleModelID, d.WeekStart, d.SummaryText, string(topics), d.GeneratedAt, emailSentAt,
	); err != nil {
		return fmt.Errorf("failed to upsert digest: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_items WHERE digest_id = ?`, d.ID); err != nil {
		return fmt.Errorf("failed to clear digest items: %w", err)
	}

	itemQuery := `
	INSERT INTO digest_items
	(id, digest_id, position, source_title, source_url, source_type, source_date, summary, content_hash, is_official)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	seen := make(map[string]bool, len(d.Items))
	position := 0
	for _, item := range d.Items {
		urlKey := strings.ToLower(item.SourceURL)
		if urlKey != "" && seen[urlKey] {
			continue
		}
		seen[urlKey] = true
		if _, err := tx.ExecContext(ctx, itemQuery,
			item.ID, d.ID, position, item.SourceTitle, item.SourceURL, string(item.SourceType),
			item.SourceDate, item.Summary, item.ContentHash, item.IsOfficial,
		); err != nil {
			return fmt.Errorf("failed to insert digest item: %w", err)
		}
		position++
	}

	return tx.Commit()
}

// ListRecentDigests returns up to limit digests for a role model, newest
// week first.
func (s *SQLite) ListRecentDigests(ctx context.Context, roleModelID string, limit int) ([]core.Digest, error) {
	query := `
	SELECT id, role_model_id, week_start, summary_text, topics, generated_at, email_sent_at
	FROM digest_weeks
	WHERE role_model_id = ?
	ORDER BY week_start DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, roleModelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	defer rows.Close()

	var out []core.Digest
	for rows.Next() {
		digest, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *digest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Items, err = s.digestItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListPreviousKeys returns the cross-week dedup keys of items stored in up
// to weeks digests before the given week.
func (s *SQLite) ListPreviousKeys(ctx context.Context, roleModelID, beforeWeek string, weeks int) ([]string, error) {
	query := `
	SELECT i.source_url, i.source_title
	FROM digest_items i
	JOIN digest_weeks w ON w.id = i.digest_id
	WHERE w.role_model_id = ? AND w.week_start < ?
	  AND w.week_start IN (
		SELECT week_start FROM digest_weeks
		WHERE role_model_id = ? AND week_start < ?
		ORDER BY week_start DESC
		LIMIT ?
	  )`

	rows, err := s.db.QueryContext(ctx, query, roleModelID, beforeWeek, roleModelID, beforeWeek, weeks)
	if err != nil {
		return nil, fmt.Errorf("failed to list previous keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var url, title string
		if err := rows.Scan(&url, &title); err != nil {
			return nil, fmt.Errorf("failed to scan previous key: %w", err)
		}
		keys = append(keys, previousKey(url, title))
	}
	return keys, rows.Err()
}

// MarkEmailSent records the email delivery time on a digest.
func (s *SQLite) MarkEmailSent(ctx context.Context, digestID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE digest_weeks SET email_sent_at = ? WHERE id = ?`, at, digestID)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDigest(row rowScanner) (*core.Digest, error) {
	var digest core.Digest
	var topics string
	var emailSentAt sql.NullTime

	err := row.Scan(
		&digest.ID,
		&digest.RoleModelID,
		&digest.WeekStart,
		&digest.SummaryText,
		&topics,
		&digest.GeneratedAt,
		&emailSentAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan digest: %w", err)
	}

	json.Unmarshal([]byte(topics), &digest.Topics)
	if emailSentAt.Valid {
		digest.EmailSentAt = emailSentAt.Time
	}
	return &digest, nil
}

func (s *SQLite) digestItems(ctx context.Context, digestID string) ([]core.DigestItem, error) {
	query := `
	SELECT id, source_title, source_url, source_type, source_date, summary, content_hash, is_official
	FROM digest_items
	WHERE digest_id = ?
	ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, digestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest items: %w", err)
	}
	defer rows.Close()

	var items []core.DigestItem
	for rows.Next() {
		var item core.DigestItem
		var sourceType string
		if err := rows.Scan(
			&item.ID, &item.SourceTitle, &item.SourceURL, &sourceType,
			&item.SourceDate, &item.Summary, &item.ContentHash, &item.IsOfficial,
		); err != nil {
			return nil, fmt.Errorf("failed to scan digest item: %w", err)
		}
		item.SourceType = core.SourceType(sourceType)
		items = append(items, item)
	}
	return items, rows.Err()
}
