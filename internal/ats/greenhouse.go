package ats

import (
	"context"

	"github.com/jonathan/freshapply/internal/fetch"
)

type greenhouseBoard struct {
	Jobs []struct {
		ID             flexString   `json:"id"`
		Title          string       `json:"title"`
		Location       flexLocation `json:"location"`
		Content        string       `json:"content"`
		AbsoluteURL    string       `json:"absolute_url"`
		FirstPublished flexTime     `json:"first_published"`
		UpdatedAt      flexTime     `json:"updated_at"`
	} `json:"jobs"`
}

// decodeGreenhouse reads the board's jobs list. Content is entity-encoded HTML.
func decodeGreenhouse(ctx context.Context, g fetch.Getter, _ Board, endpoint string) ([]listing, error) {
	var board greenhouseBoard
	if err := fetch.JSON(ctx, g, endpoint, &board); err != nil {
		return nil, err
	}
	out := make([]listing, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		out = append(out, listing{
			externalID:  string(j.ID),
			title:       j.Title,
			url:         j.AbsoluteURL,
			location:    string(j.Location),
			rawHTML:     j.Content,
			publishedAt: firstNonEmpty(string(j.FirstPublished), string(j.UpdatedAt)),
		})
	}
	return out, nil
}
