package ats

import (
	"fmt"

	"github.com/jonathan/freshapply/internal/sanitize"
)

// Job is one in-scope posting scraped from a board.
type Job struct {
	ID              string   `json:"id"`
	Platform        Platform `json:"platform"`
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"description_html"`
	Salary          string   `json:"salary"`
	PublishedAt     string   `json:"published_at,omitempty"`
}

// JobID builds the stable composite ID "{prefix}:{slug}:{externalID}".
func JobID(p Platform, slug, externalID string) string {
	return fmt.Sprintf("%s:%s:%s", p.IDPrefix(), slug, externalID)
}

// newJob fills the derived text fields. plain may be empty, in which case it is
// derived from rawHTML.
func newJob(b Board, externalID, title, jobURL, location, rawHTML, plain, publishedAt string) Job {
	if plain == "" {
		plain = sanitize.StripHTML(rawHTML)
	}
	return Job{
		ID:              JobID(b.Platform, b.Slug, externalID),
		Platform:        b.Platform,
		Company:         b.Slug,
		Title:           title,
		URL:             jobURL,
		Location:        location,
		Description:     plain,
		DescriptionHTML: sanitize.SanitizeHTML(rawHTML),
		Salary:          sanitize.ExtractSalary(plain),
		PublishedAt:     publishedAt,
	}
}

// Error represents a failure scraping one board.
type Error struct {
	Platform Platform
	Board    string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s board %s: %s: %v", e.Platform, e.Board, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s board %s: %s", e.Platform, e.Board, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
