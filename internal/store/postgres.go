package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/freshapply/internal/ats"
)

// Postgres stores postings in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

var postgresSchema = []string{
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
		reposted         BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS description_html TEXT DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS salary TEXT DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS published_at TEXT DEFAULT ''`,
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

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &Error{Op: "connect", Cause: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &Error{Op: "ping", Cause: err}
	}

	return &Postgres{pool: pool}, nil
}

// Migrate creates tables and adds columns missing from older databases.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return &Error{Op: "migrate", Cause: err}
		}
	}
	return nil
}

// Upsert inserts a new posting or bumps last_seen_at on a known one.
func (p *Postgres) Upsert(ctx context.Context, job ats.Job, now time.Time) (Outcome, error) {
	ts := Timestamp(now)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE jobs SET last_seen_at = $1 WHERE id = $2`, ts, job.ID)
	if err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	if tag.RowsAffected() > 0 {
		if err := tx.Commit(ctx); err != nil {
			return "", &Error{Op: "upsert", Cause: err}
		}
		return OutcomeUpdated, nil
	}

	hash := DescriptionHash(job.Description)

	var prev string
	reposted := true
	err = tx.QueryRow(ctx,
		`SELECT job_id FROM desc_hashes WHERE hash = $1 AND company = $2 AND job_id <> $3 LIMIT 1`,
		hash, job.Company, job.ID,
	).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		reposted = false
	} else if err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO jobs (id, ats, company, title, url, location, description,
		                   description_html, salary, desc_hash, published_at,
		                   first_seen_at, last_seen_at, reposted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12, $13)`,
		job.ID, string(job.Platform), job.Company, job.Title, job.URL, job.Location, job.Description,
		job.DescriptionHTML, job.Salary, hash, job.PublishedAt, ts, reposted,
	); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO desc_hashes (hash, company, title, job_id, seen_at) VALUES ($1, $2, $3, $4, $5)`,
		hash, job.Company, job.Title, job.ID, ts,
	); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", &Error{Op: "upsert", Cause: err}
	}

	if reposted {
		return OutcomeReposted, nil
	}
	return OutcomeNew, nil
}

// List returns every posting, most recently first seen first.
func (p *Postgres) List(ctx context.Context) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+recordColumns+` FROM jobs ORDER BY first_seen_at DESC, id`)
	if err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	defer rows.Close()

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
func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	r, err := scanRecord(p.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &Error{Op: "get", Cause: err}
	}
	return r, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
