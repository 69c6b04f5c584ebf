package ats

import (
	"strings"
	"unicode"
)

// Board is one company's job board on one platform.
type Board struct {
	Platform    Platform `json:"platform" yaml:"platform" validate:"required,oneof=greenhouse lever ashby workable"`
	Slug        string   `json:"slug" yaml:"slug" validate:"required"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}

// Name returns the configured display name, falling back to DisplayName(Slug).
func (b Board) Name() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return DisplayName(b.Slug)
}

func (b Board) String() string {
	return string(b.Platform) + ":" + b.Slug
}

var defaultSlugs = map[Platform][]string{
	Greenhouse: {
		"anthropic", "appliedintuition", "arizeai", "assemblyai", "cresta", "deepmind",
		"descript", "fireworksai", "inflectionai", "nuro", "sambanovasystems", "snorkelai",
		"stabilityai", "togetherai", "airbnb", "airtable", "amplitude", "brex", "coinbase",
		"databricks", "datadog", "figma", "gitlab", "gleanwork", "gongio", "grammarly",
		"hebbia", "onetrust", "runwayml", "samsara", "scaleai", "stripe", "twilio",
		"urbancompass", "vercel", "verkada",
	},
	Lever: {"mistral", "plaid", "zoox"},
	Ashby: {
		"anyscale", "baseten", "character", "cohere", "deepgram", "elevenlabs", "langchain",
		"modal", "openai", "pinecone", "sierra", "twelve-labs", "writer", "cursor", "decagon",
		"harvey", "linear", "notion", "perplexity", "ramp", "replit", "rula", "zapier",
	},
	Workable: {"huggingface", "kody", "leadtech", "smeetz"},
}

// DefaultBoards returns the built-in board roster in platform order.
func DefaultBoards() []Board {
	var boards []Board
	for _, p := range Platforms {
		for _, slug := range defaultSlugs[p] {
			boards = append(boards, Board{Platform: p, Slug: slug})
		}
	}
	return boards
}

var displayNames = map[string]string{
	"appliedintuition": "Applied Intuition",
	"arizeai":          "Arize AI",
	"assemblyai":       "AssemblyAI",
	"character":        "Character.AI",
	"cursor":           "Cursor",
	"deepmind":         "DeepMind",
	"elevenlabs":       "ElevenLabs",
	"fireworksai":      "Fireworks AI",
	"gitlab":           "GitLab",
	"gleanwork":        "Glean",
	"gongio":           "Gong",
	"huggingface":      "Hugging Face",
	"inflectionai":     "Inflection AI",
	"langchain":        "LangChain",
	"leadtech":         "Leadtech",
	"onetrust":         "OneTrust",
	"openai":           "OpenAI",
	"runwayml":         "Runway",
	"sambanovasystems": "SambaNova Systems",
	"scaleai":          "Scale AI",
	"snorkelai":        "Snorkel AI",
	"stabilityai":      "Stability AI",
	"togetherai":       "Together AI",
	"twelve-labs":      "Twelve Labs",
	"urbancompass":     "Compass",
}

// DisplayName returns the company name for a board slug. Unknown slugs are
// title-cased with hyphens as spaces.
func DisplayName(slug string) string {
	if name, ok := displayNames[slug]; ok {
		return name
	}
	return titleCase(strings.ReplaceAll(slug, "-", " "))
}

// titleCase upper-cases the first letter of each run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
