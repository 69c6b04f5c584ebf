// Package store persists scraped postings and detects reposts by description hash.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/engine"
)

// Outcome is the result of an upsert.
type Outcome string

const (
	OutcomeNew      Outcome = "new"
	OutcomeUpdated  Outcome = "updated"
	OutcomeReposted Outcome = "reposted"
)

// Record is a stored posting.
type Record struct {
	ID              string `json:"id"`
	Platform        string `json:"platform"`
	Company         string `json:"company"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"description_html"`
	Salary          string `json:"salary"`
	DescHash        string `json:"desc_hash"`
	PublishedAt     string `json:"published_at,omitempty"`
	FirstSeenAt     string `json:"first_seen_at"`
	LastSeenAt      string `json:"last_seen_at"`
	Reposted        bool   `json:"reposted"`
}

// Posting converts the record into engine input. The stored cleaned HTML is
// already sanitized, so it is passed through as raw HTML.
func (r Record) Posting() engine.Posting {
	return engine.Posting{
		ID:               r.ID,
		Company:          r.Company,
		Title:            r.Title,
		URL:              r.URL,
		RawHTML:          r.DescriptionHTML,
		PlainDescription: r.Description,
		Location:         r.Location,
		FirstSeenAt:      r.FirstSeenAt,
		LastSeenAt:       r.LastSeenAt,
		Reposted:         r.Reposted,
		PublishedAt:      r.PublishedAt,
	}
}

// Postings converts records into engine input.
func Postings(records []Record) []engine.Posting {
	out := make([]engine.Posting, len(records))
	for i, r := range records {
		out[i] = r.Posting()
	}
	return out
}

// Store persists postings.
type Store interface {
	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error
	// Upsert records a sighting of job at now.
	Upsert(ctx context.Context, job ats.Job, now time.Time) (Outcome, error)
	// List returns every stored posting, newest first.
	List(ctx context.Context) ([]Record, error)
	// Get returns one posting, or nil if it does not exist.
	Get(ctx context.Context, id string) (*Record, error)
	Close() error
}

// Error wraps a failed store operation.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// DescriptionHash returns the first 16 hex characters of the SHA-256 of a
// plain-text description.
func DescriptionHash(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:])[:16]
}

// Timestamp formats t the way records store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// IsPostgresURL reports whether databaseURL names a PostgreSQL database.
func IsPostgresURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://")
}

// Open connects to databaseURL, PostgreSQL for postgres:// URLs and SQLite
// otherwise, and migrates the schema.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)
	if IsPostgresURL(databaseURL) {
		s, err = ConnectPostgres(ctx, databaseURL)
	} else {
		s, err = OpenSQLite(databaseURL)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Debug("store ready", zap.Bool("postgres", IsPostgresURL(databaseURL)))
	return s, nil
}

// recordColumns tolerates NULLs left by older schemas.
const recordColumns = `id, ats, company, title, COALESCE(url, ''), COALESCE(location, ''),
	COALESCE(description, ''), COALESCE(description_html, ''), COALESCE(salary, ''),
	COALESCE(desc_hash, ''), COALESCE(published_at, ''), first_seen_at, last_seen_at, reposted`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	if err := row.Scan(&r.ID, &r.Platform, &r.Company, &r.Title, &r.URL, &r.Location,
		&r.Description, &r.DescriptionHTML, &r.Salary, &r.DescHash, &r.PublishedAt,
		&r.FirstSeenAt, &r.LastSeenAt, &r.Reposted); err != nil {
		return nil, err
	}
	return &r, nil
}
