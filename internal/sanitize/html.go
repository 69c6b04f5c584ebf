// Package sanitize turns raw job-board HTML into plain text and display-safe HTML,
// and extracts advertised salary ranges from description text.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

// boilerplateMarkers are class-name fragments that ATS platforms put on the block
// where the job content ends and legal/benefits boilerplate begins.
var boilerplateMarkers = []string{
	"pay-transparency",
	"content-pay",
	"compensation",
	"content-conclusion",
}

// boilerplateHeadings are bold paragraph headings that open trailing boilerplate.
var boilerplateHeadings = []string{
	"PLEASE NOTE",
	"About Us",
	"EEO",
	"Equal Opportunity",
}

// removedElements are dropped together with their content.
var removedElements = []string{"script", "style", "iframe", "noscript", "form"}

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	encodedTagRe = regexp.MustCompile(`&lt;/?[a-zA-Z]`)

	elementBlockRes = compileElementBlocks(removedElements)
	strayElementRe  = regexp.MustCompile(`(?i)</?(?:` + strings.Join(removedElements, "|") + `)\b[^>]*/?>`)

	eventHandlerDoubleRe = regexp.MustCompile(`(?i)\s+on\w+\s*=\s*"[^"]*"`)
	eventHandlerSingleRe = regexp.MustCompile(`(?i)\s+on\w+\s*=\s*'[^']*'`)

	boilerplateBlockRe = regexp.MustCompile(`(?is)<(?:div|section)\b[^>]*\bclass\s*=\s*["'][^"']*(?:` +
		quoteAll(boilerplateMarkers) + `)[^"']*["'][^>]*>.*`)
	boilerplateHeadingRe = regexp.MustCompile(`(?is)<p\b[^>]*>\s*<(?:strong|b)>\s*(?:` +
		quoteAll(boilerplateHeadings) + `)[^<]*</(?:strong|b)>.*`)

	divTagRe         = regexp.MustCompile(`(?i)</?div\b[^>]*>`)
	emptyParagraphRe = regexp.MustCompile(`(?i)<p\b[^>]*>\s*</p>`)

	attrDoubleRe = regexp.MustCompile(`(?i)\s+(?:class|style|id|data-[\w-]+)\s*=\s*"[^"]*"`)
	attrSingleRe = regexp.MustCompile(`(?i)\s+(?:class|style|id|data-[\w-]+)\s*=\s*'[^']*'`)

	blankRunRe = regexp.MustCompile(`(?:\s*\n){3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"\u00a0", " ",
	"&mdash;", "—",
	"&ndash;", "–",
)

// StripHTML decodes entities, replaces every tag with a space and collapses
// whitespace runs. Empty input yields an empty string.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	text := html.UnescapeString(raw)
	text = tagRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// SanitizeHTML keeps basic formatting markup and removes scripts, embeds, event
// handlers, presentational attributes and trailing ATS boilerplate. Boilerplate is
// removed from its opening tag to the end of the document.
func SanitizeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// 1. Decode entities; some boards store markup encoded twice
	text := decodeEntities(raw)

	// 2. Drop active and embedded content
	for _, re := range elementBlockRes {
		text = re.ReplaceAllString(text, "")
	}
	text = strayElementRe.ReplaceAllString(text, "")

	// 3. Drop inline event handlers
	text = eventHandlerDoubleRe.ReplaceAllString(text, "")
	text = eventHandlerSingleRe.ReplaceAllString(text, "")

	// 4. Truncate at the first boilerplate block or heading
	text = boilerplateBlockRe.ReplaceAllString(text, "")
	text = boilerplateHeadingRe.ReplaceAllString(text, "")

	// 5. Unwrap divs
	text = divTagRe.ReplaceAllString(text, "")

	// 6. Normalize leftover entities
	text = entityReplacer.Replace(text)

	// 7. Remove empty paragraphs and presentational attributes
	for {
		next := emptyParagraphRe.ReplaceAllString(text, "")
		if next == text {
			break
		}
		text = next
	}
	text = attrDoubleRe.ReplaceAllString(text, "")
	text = attrSingleRe.ReplaceAllString(text, "")

	// 8. Collapse blank line runs
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// decodeEntities unescapes once, and a second time when encoded tags survive
// the first pass.
func decodeEntities(raw string) string {
	text := html.UnescapeString(raw)
	if encodedTagRe.MatchString(text) {
		text = html.UnescapeString(text)
	}
	return text
}

func compileElementBlocks(tags []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(tags))
	for _, tag := range tags {
		res = append(res, regexp.MustCompile(`(?is)<`+tag+`\b[^>]*>.*?</`+tag+`\s*>`))
	}
	return res
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = regexp.QuoteMeta(item)
	}
	return strings.Join(quoted, "|")
}
