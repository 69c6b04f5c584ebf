package ats

import (
	"context"

	"github.com/jonathan/freshapply/internal/fetch"
)

type leverPosting struct {
	ID               flexString `json:"id"`
	Text             string     `json:"text"`
	HostedURL        string     `json:"hostedUrl"`
	Description      string     `json:"description"`
	DescriptionPlain string     `json:"descriptionPlain"`
	CreatedAt        flexTime   `json:"createdAt"`
	Categories       struct {
		Location     flexLocation `json:"location"`
		AllLocations flexLocation `json:"allLocations"`
	} `json:"categories"`
}

// decodeLever reads the postings array.
func decodeLever(ctx context.Context, g fetch.Getter, _ Board, endpoint string) ([]listing, error) {
	var postings []leverPosting
	if err := fetch.JSON(ctx, g, endpoint, &postings); err != nil {
		return nil, err
	}
	out := make([]listing, 0, len(postings))
	for _, p := range postings {
		out = append(out, listing{
			externalID:  string(p.ID),
			title:       p.Text,
			url:         p.HostedURL,
			location:    firstNonEmpty(string(p.Categories.Location), string(p.Categories.AllLocations)),
			rawHTML:     p.Description,
			plain:       p.DescriptionPlain,
			publishedAt: string(p.CreatedAt),
		})
	}
	return out, nil
}
