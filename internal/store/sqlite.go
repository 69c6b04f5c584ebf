package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jonathan/freshapply/internal/ats"
)

// SQLite is the embedded store.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id               TEXT PRIMARY KEY,
		ats              TEXT NOT NULL,
		company          TEXT NOT NULL,
		title            TEXT NOT NULL,
		url              TEXT,
		location         TEXT,
		description      TEXT,
		description_html TEXT DEFAULT '',
		salary           TEXT DEFAULT '',
		desc_hash        TEXT,
		published_at     TEXT DEFAULT '',
		first_seen_at    TEXT NOT NULL,
		last_seen_at     TEXT NOT NULL,
		reposted         INTEGER DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company)`,
	`CREATE TABLE IF NOT EXISTS desc_hashes (
		hash    TEXT NOT NULL,
		company TEXT NOT NULL,
		title   TEXT NOT NULL,
		job_id  TEXT NOT NULL,
		seen_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_desc_hashes_hash ON desc_hashes(hash, company)`,
}

// addedColumns were introduced after the first schema and are added to older
// databases by Migrate.
var addedColumns = []struct{ name, ddl string }{
	{"description_html", `ALTER TABLE jobs ADD COLUMN description_html TEXT DEFAULT ''`},
	{"salary", `ALTER TABLE jobs ADD COLUMN salary TEXT DEFAULT ''`},
	{"published_at", `ALTER TABLE jobs ADD COLUMN published_at TEXT DEFAULT ''`},
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &Error{Op: "open", Cause: err}
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &Error{Op: "open", Cause: err}
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

// Migrate creates tables and adds columns missing from older databases.
func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &Error{Op: "migrate", Cause: err}
		}
	}

	existing, err := s.columns(ctx, "jobs")
	if err != nil {
		return &Error{Op: "migrate", Cause: err}
	}
	for _, col := range addedColumns {
		if existing[col.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, col.ddl); err != nil {
			return &Error{Op: "migrate", Cause: fmt.Errorf("failed to add column %s: %w", col.name, err)}
		}
	}
	return nil
}

func (s *SQLite) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Upsert inserts a new posting or bumps last_seen_at on a known one. A new ID
// whose description hash was already seen at the same company under another ID
// is a repost.
func (s *SQLite) Upsert(ctx context.Context, job ats.Job, now time.Time) (Outcome, error) {
	ts := Timestamp(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM jobs WHERE id = ?`, job.ID).Scan(&existing)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET last_seen_at = ? WHERE id = ?`, ts, job.ID); err != nil {
			return "", &Error{Op: "upsert", Cause: err}
		}
		if err := tx.Commit(); err != nil {
			return "", &Error{Op: "upsert", Cause: err}
		}
		return OutcomeUpdated, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", &Error{Op: "upsert", Cause: err}
	}

	hash := DescriptionHash(job.Description)

	var prev string
	reposted := true
	err = tx.QueryRowContext(ctx,
		`SELECT job_id FROM desc_hashes WHERE hash = ? AND company = ? AND job_id != ? LIMIT 1`,
		hash, job.Company, job.ID,
	).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		reposted = false
	} else if err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO jobs (id, ats, company, title, url, location, description,
		                   description_html, salary, desc_hash, published_at,
		                   first_seen_at, last_seen_at, reposted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Platform), job.Company, job.Title, job.URL, job.Location, job.Description,
		job.DescriptionHTML, job.Salary, hash, job.PublishedAt, ts, ts, reposted,
	); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO desc_hashes (hash, company, title, job_id, seen_at) VALUES (?, ?, ?, ?, ?)`,
		hash, job.Company, job.Title, job.ID, ts,
	); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}

	if reposted {
		return OutcomeReposted, nil
	}
	return OutcomeNew, nil
}

// List returns every posting, most recently first seen first.
func (s *SQLite) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM jobs ORDER BY first_seen_at DESC, id`)
	if err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, &Error{Op: "list", Cause: err}
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	return records, nil
}

// Get returns the posting with id, or nil if none exists.
func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "get", Cause: err}
	}
	return r, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
