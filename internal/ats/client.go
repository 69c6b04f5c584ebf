package ats

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jonathan/freshapply/internal/fetch"
	"github.com/jonathan/freshapply/internal/titles"
)

// Endpoints are the API base URLs per platform. Empty fields use the public APIs.
type Endpoints struct {
	Greenhouse string
	Lever      string
	Ashby      string
	Workable   string
}

// DefaultEndpoints returns the public API base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Greenhouse: "https://boards-api.greenhouse.io/v1/boards",
		Lever:      "https://api.lever.co/v0/postings",
		Ashby:      "https://api.ashbyhq.com/posting-api/job-board",
		Workable:   "https://apply.workable.com/api/v1/widget/accounts",
	}
}

// SingleHost points every platform at one base URL, for tests and proxies.
func SingleHost(base string) Endpoints {
	return Endpoints{
		Greenhouse: base + "/greenhouse",
		Lever:      base + "/lever",
		Ashby:      base + "/ashby",
		Workable:   base + "/workable",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.Greenhouse == "" {
		e.Greenhouse = d.Greenhouse
	}
	if e.Lever == "" {
		e.Lever = d.Lever
	}
	if e.Ashby == "" {
		e.Ashby = d.Ashby
	}
	if e.Workable == "" {
		e.Workable = d.Workable
	}
	return e
}

// URL returns the listing endpoint for a board.
func (e Endpoints) URL(b Board) (string, error) {
	e = e.withDefaults()
	slug := url.PathEscape(b.Slug)
	switch b.Platform {
	case Greenhouse:
		return e.Greenhouse + "/" + slug + "/jobs?content=true", nil
	case Lever:
		return e.Lever + "/" + slug, nil
	case Ashby:
		return e.Ashby + "/" + slug, nil
	case Workable:
		return e.Workable + "/" + slug, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", b.Platform)
	}
}

// listing is the platform-neutral shape each adapter decodes into.
type listing struct {
	externalID  string
	title       string
	url         string
	location    string
	rawHTML     string
	plain       string
	publishedAt string
}

type decoder func(ctx context.Context, g fetch.Getter, b Board, endpoint string) ([]listing, error)

var decoders = map[Platform]decoder{
	Greenhouse: decodeGreenhouse,
	Lever:      decodeLever,
	Ashby:      decodeAshby,
	Workable:   decodeWorkable,
}

// Client scrapes boards and keeps postings whose titles pass the role gate.
type Client struct {
	getter    fetch.Getter
	endpoints Endpoints
	titles    *titles.Classifier
}

// NewClient creates a client. A nil classifier uses titles.Default().
func NewClient(getter fetch.Getter, endpoints Endpoints, classifier *titles.Classifier) *Client {
	if classifier == nil {
		classifier = titles.Default()
	}
	return &Client{
		getter:    getter,
		endpoints: endpoints.withDefaults(),
		titles:    classifier,
	}
}

// Jobs fetches a board and returns its in-scope postings. Postings without an
// ID are skipped.
func (c *Client) Jobs(ctx context.Context, b Board) ([]Job, error) {
	decode, ok := decoders[b.Platform]
	if !ok {
		return nil, &Error{Platform: b.Platform, Board: b.Slug, Message: "unsupported platform"}
	}
	endpoint, err := c.endpoints.URL(b)
	if err != nil {
		return nil, &Error{Platform: b.Platform, Board: b.Slug, Message: "failed to build URL", Cause: err}
	}

	listings, err := decode(ctx, c.getter, b, endpoint)
	if err != nil {
		return nil, &Error{Platform: b.Platform, Board: b.Slug, Message: "failed to fetch board", Cause: err}
	}

	var jobs []Job
	for _, l := range listings {
		if l.externalID == "" || !c.titles.InScope(l.title) {
			continue
		}
		jobs = append(jobs, newJob(b, l.externalID, l.title, l.url, l.location, l.rawHTML, l.plain, l.publishedAt))
	}
	return jobs, nil
}
