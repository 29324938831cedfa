// Package sqlite stores pages and slot overrides in a SQLite database
// through the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
	"loopsite/infrastructure/persistence/schema"
	"loopsite/pkg/utils"
)

var migrations = []schema.Migration{
	{
		Version:     1,
		Description: "pages and slot overrides",
		Up: schema.Exec(
			`CREATE TABLE pages (
				path TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				published INTEGER NOT NULL DEFAULT 0,
				sections TEXT NOT NULL DEFAULT '[]',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE slot_overrides (
				path TEXT PRIMARY KEY,
				overrides TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		),
	},
	{
		Version:     2,
		Description: "index published pages",
		Up:          schema.Exec(`CREATE INDEX idx_pages_published ON pages(published)`),
	},
}

// Store implements ports.PageStore on SQLite
type Store struct {
	db     *sql.DB
	clock  utils.Clock
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	evolution, err := schema.NewEvolution(migrations...)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := evolution.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite page store ready", zap.String("path", path), zap.Int("schemaVersion", evolution.Latest()))
	return &Store{db: db, clock: utils.SystemClock{}, logger: logger}, nil
}

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// Ping implements ports.HealthChecker
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// FetchPage implements ports.PageReader
func (s *Store) FetchPage(ctx context.Context, path string) (*pages.Page, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, title, description, published, sections, created_at, updated_at FROM pages WHERE path = ?`, path)

	var (
		page                 pages.Page
		rawSections          string
		createdAt, updatedAt string
	)
	err := row.Scan(&page.Path, &page.Title, &page.Description, &page.Published, &rawSections, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch page: %w", err)
	}

	// Stored content is decoded leniently; the renderer skips what it cannot use.
	page.Sections, err = sections.Decode([]byte(rawSections))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode sections of %q: %w", path, err)
	}
	if page.CreatedAt, err = utils.ParseStoredTime(createdAt); err != nil {
		return nil, false, fmt.Errorf("failed to read page %q: %w", path, err)
	}
	if page.UpdatedAt, err = utils.ParseStoredTime(updatedAt); err != nil {
		return nil, false, fmt.Errorf("failed to read page %q: %w", path, err)
	}
	return &page, true, nil
}

// FetchSlotOverrides implements ports.PageReader
func (s *Store) FetchSlotOverrides(ctx context.Context, path string) (slots.Overrides, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT overrides FROM slot_overrides WHERE path = ?`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch slot overrides: %w", err)
	}

	var overrides slots.Overrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, false, fmt.Errorf("failed to decode slot overrides of %q: %w", path, err)
	}
	return overrides, true, nil
}

// SavePage implements ports.PageWriter
func (s *Store) SavePage(ctx context.Context, page *pages.Page) error {
	list := page.Sections
	if list == nil {
		list = []sections.Section{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pages (path, title, description, published, sections, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			published = excluded.published,
			sections = excluded.sections,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		page.Path, page.Title, page.Description, page.Published, string(raw),
		utils.FormatRFC3339(page.CreatedAt), utils.FormatRFC3339(page.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// DeletePage implements ports.PageWriter
func (s *Store) DeletePage(ctx context.Context, path string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("failed to delete page: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveSlotOverrides implements ports.PageWriter
func (s *Store) SaveSlotOverrides(ctx context.Context, path string, overrides slots.Overrides) error {
	if overrides == nil {
		overrides = slots.Overrides{}
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode slot overrides: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO slot_overrides (path, overrides, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET overrides = excluded.overrides, updated_at = excluded.updated_at`,
		path, string(raw), utils.FormatRFC3339(s.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save slot overrides: %w", err)
	}
	return nil
}

// ListPages implements ports.PageLister
func (s *Store) ListPages(ctx context.Context) ([]pages.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, title, published, updated_at FROM pages ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	out := []pages.Summary{}
	for rows.Next() {
		var (
			summary   pages.Summary
			updatedAt string
		)
		if err := rows.Scan(&summary.Path, &summary.Title, &summary.Published, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		if summary.UpdatedAt, err = utils.ParseStoredTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to read page %q: %w", summary.Path, err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}
