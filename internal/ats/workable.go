package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/freshapply/internal/fetch"
	"github.com/jonathan/freshapply/internal/sanitize"
)

type workableAccount struct {
	Jobs []struct {
		ID          flexString   `json:"id"`
		Shortcode   string       `json:"shortcode"`
		Title       string       `json:"title"`
		URL         string       `json:"url"`
		Location    flexLocation `json:"location"`
		City        string       `json:"city"`
		State       string       `json:"state"`
		Country     string       `json:"country"`
		Description string       `json:"description"`
		PublishedOn flexTime     `json:"published_on"`
		CreatedAt   flexTime     `json:"created_at"`
	} `json:"jobs"`
}

// decodeWorkable reads the widget account. The widget carries no formatted
// HTML, so postings keep an empty cleaned description.
func decodeWorkable(ctx context.Context, g fetch.Getter, b Board, endpoint string) ([]listing, error) {
	var account workableAccount
	if err := fetch.JSON(ctx, g, endpoint, &account); err != nil {
		return nil, err
	}
	out := make([]listing, 0, len(account.Jobs))
	for _, j := range account.Jobs {
		shortcode := firstNonEmpty(j.Shortcode, string(j.ID))
		jobURL := j.URL
		if jobURL == "" && shortcode != "" {
			jobURL = fmt.Sprintf("https://apply.workable.com/%s/j/%s/", b.Slug, shortcode)
		}
		location := string(j.Location)
		if location == "" {
			location = joinNonEmpty(", ", j.City, j.State, j.Country)
		}
		out = append(out, listing{
			externalID:  shortcode,
			title:       j.Title,
			url:         jobURL,
			location:    location,
			plain:       sanitize.StripHTML(j.Description),
			publishedAt: firstNonEmpty(string(j.PublishedOn), string(j.CreatedAt)),
		})
	}
	return out, nil
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
