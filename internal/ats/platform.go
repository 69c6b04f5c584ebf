// Package ats scrapes public job-board APIs (Greenhouse, Lever, Ashby, Workable).
package ats

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform is a supported applicant tracking system.
type Platform string

const (
	// Greenhouse is the Greenhouse job board API.
	Greenhouse Platform = "greenhouse"
	// Lever is the Lever postings API.
	Lever Platform = "lever"
	// Ashby is the Ashby posting API.
	Ashby Platform = "ashby"
	// Workable is the Workable widget API.
	Workable Platform = "workable"
	// Unknown is an unrecognized platform.
	Unknown Platform = "unknown"
)

// Platforms lists the supported platforms in scrape order.
var Platforms = []Platform{Greenhouse, Lever, Ashby, Workable}

// IDPrefix returns the short prefix used in job IDs.
func (p Platform) IDPrefix() string {
	switch p {
	case Greenhouse:
		return "gh"
	case Lever:
		return "lv"
	case Ashby:
		return "ab"
	case Workable:
		return "wk"
	default:
		return string(p)
	}
}

// Label returns the human-readable platform name.
func (p Platform) Label() string {
	switch p {
	case Greenhouse:
		return "Greenhouse"
	case Lever:
		return "Lever"
	case Ashby:
		return "Ashby"
	case Workable:
		return "Workable"
	default:
		return string(p)
	}
}

// ParsePlatform maps a platform name to a Platform.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, true
		}
	}
	return Unknown, false
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return Unknown
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		return Greenhouse
	case strings.HasSuffix(host, "lever.co"):
		return Lever
	case strings.HasSuffix(host, "ashbyhq.com"):
		return Ashby
	case strings.HasSuffix(host, "workable.com"):
		return Workable
	default:
		return Unknown
	}
}

// apiPathPrefixes are path prefixes that precede the board slug in API URLs.
var apiPathPrefixes = []string{
	"v1/boards/",
	"v0/postings/",
	"posting-api/job-board/",
	"api/v1/widget/accounts/",
}

// ParseBoard accepts either "platform:slug" or a careers/API URL and returns
// the board it names.
func ParseBoard(s string) (Board, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "://") {
		name, slug, ok := strings.Cut(s, ":")
		platform, known := ParsePlatform(name)
		if !ok || !known || slug == "" {
			return Board{}, fmt.Errorf("invalid board %q: want platform:slug or a board URL", s)
		}
		return Board{Platform: platform, Slug: slug}, nil
	}

	platform := DetectPlatform(s)
	if platform == Unknown {
		return Board{}, fmt.Errorf("unsupported board URL %q", s)
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return Board{}, fmt.Errorf("invalid board URL %q: %w", s, err)
	}

	path := strings.Trim(parsed.Path, "/")
	for _, prefix := range apiPathPrefixes {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			path = rest
			break
		}
	}
	slug, _, _ := strings.Cut(path, "/")
	if slug == "" {
		return Board{}, fmt.Errorf("board URL %q has no board name", s)
	}
	return Board{Platform: platform, Slug: slug}, nil
}
