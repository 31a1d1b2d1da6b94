package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pickpost/backend/internal/domain"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Compile-time interface guard.
var _ domain.DraftRepository = (*SQLiteStore)(nil)

// SQLiteStore is a draft repository backed by SQLite via modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path,
// applies recommended pragmas, and ensures the drafts table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements for pragmas, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			id              TEXT PRIMARY KEY,
			batch_id        TEXT NOT NULL,
			email           TEXT NOT NULL,
			name            TEXT NOT NULL,
			subject         TEXT NOT NULL,
			body            TEXT NOT NULL,
			html_body       TEXT NOT NULL DEFAULT '',
			recommendations TEXT NOT NULL DEFAULT '[]',
			status          TEXT NOT NULL,
			send_error      TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL,
			sent_at         TEXT,
			seq             INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_drafts_batch ON drafts(batch_id);
		CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create drafts table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts a new draft row.
func (s *SQLiteStore) Save(ctx context.Context, draft *domain.Draft) error {
	recs, err := json.Marshal(draft.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts
		(id, batch_id, email, name, subject, body, html_body, recommendations,
		 status, send_error, created_at, updated_at, sent_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		        (SELECT COALESCE(MAX(seq), 0) + 1 FROM drafts))`,
		draft.ID, draft.BatchID, draft.Email, draft.Name, draft.Subject,
		draft.Body, draft.HTMLBody, string(recs), string(draft.Status),
		draft.SendError, formatTime(draft.CreatedAt), formatTime(draft.UpdatedAt),
		formatTimePtr(draft.SentAt))
	if err != nil {
		return fmt.Errorf("insert draft %s: %w", draft.ID, err)
	}
	return nil
}

// Get returns the draft with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM drafts WHERE id = ?`, id)
	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDraftNotFound
	}
	return draft, err
}

// List returns drafts matching the filter in insertion order.
func (s *SQLiteStore) List(ctx context.Context, filter domain.DraftFilter) ([]*domain.Draft, error) {
	query := selectColumns + ` FROM drafts WHERE 1=1`
	var args []any
	if filter.BatchID != "" {
		query += ` AND batch_id = ?`
		args = append(args, filter.BatchID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	// Non-nil even when empty so callers serialize [] rather than null.
	out := make([]*domain.Draft, 0)
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an existing draft.
func (s *SQLiteStore) Update(ctx context.Context, draft *domain.Draft) error {
	recs, err := json.Marshal(draft.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET subject = ?, body = ?, html_body = ?, recommendations = ?,
		    status = ?, send_error = ?, updated_at = ?, sent_at = ?
		WHERE id = ?`,
		draft.Subject, draft.Body, draft.HTMLBody, string(recs),
		string(draft.Status), draft.SendError, formatTime(draft.UpdatedAt),
		formatTimePtr(draft.SentAt), draft.ID)
	if err != nil {
		return fmt.Errorf("update draft %s: %w", draft.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

// Delete removes a draft row.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, batch_id, email, name, subject, body, html_body,
	       recommendations, status, send_error, created_at, updated_at, sent_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(sc scanner) (*domain.Draft, error) {
	var (
		d         domain.Draft
		recs      string
		status    string
		createdAt string
		updatedAt string
		sentAt    sql.NullString
	)
	if err := sc.Scan(&d.ID, &d.BatchID, &d.Email, &d.Name, &d.Subject, &d.Body,
		&d.HTMLBody, &recs, &status, &d.SendError, &createdAt, &updatedAt, &sentAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(recs), &d.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations for %s: %w", d.ID, err)
	}
	d.Status = domain.DraftStatus(status)

	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, err
		}
		d.SentAt = &t
	}
	return &d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
