package ats

import (
	"context"

	"github.com/jonathan/freshapply/internal/fetch"
)

type ashbyBoard struct {
	Jobs []struct {
		ID               flexString   `json:"id"`
		Title            string       `json:"title"`
		Location         flexLocation `json:"location"`
		JobURL           string       `json:"jobUrl"`
		HostedURL        string       `json:"hostedUrl"`
		DescriptionHTML  string       `json:"descriptionHtml"`
		Description      string       `json:"description"`
		DescriptionPlain string       `json:"descriptionPlain"`
		PublishedAt      flexTime     `json:"publishedAt"`
	} `json:"jobs"`
}

func decodeAshby(ctx context.Context, g fetch.Getter, _ Board, endpoint string) ([]listing, error) {
	var board ashbyBoard
	if err := fetch.JSON(ctx, g, endpoint, &board); err != nil {
		return nil, err
	}
	out := make([]listing, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		out = append(out, listing{
			externalID:  string(j.ID),
			title:       j.Title,
			url:         firstNonEmpty(j.JobURL, j.HostedURL),
			location:    string(j.Location),
			rawHTML:     firstNonEmpty(j.DescriptionHTML, j.Description),
			plain:       j.DescriptionPlain,
			publishedAt: string(j.PublishedAt),
		})
	}
	return out, nil
}
