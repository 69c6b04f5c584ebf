package sanitize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Problem names a way cleaned HTML breaks the sanitizer contract.
type Problem string

const (
	ProblemResidualTags  Problem = "residual HTML tags"
	ProblemEncodedMarkup Problem = "entity-encoded HTML"
	ProblemNbsp          Problem = "contains &nbsp;"
	ProblemBoilerplate   Problem = "ATS boilerplate not stripped"
	ProblemClassAttrs    Problem = "class attributes remaining"
)

// forbiddenSelector lists elements that must never survive sanitization.
const forbiddenSelector = "div, script, style, iframe, form"

// Audit checks cleaned HTML against the sanitizer contract and returns the
// problems found, in a fixed order. An empty result means the document is clean.
func Audit(cleaned string) ([]Problem, error) {
	if cleaned == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var problems []Problem
	if doc.Find(forbiddenSelector).Length() > 0 {
		problems = append(problems, ProblemResidualTags)
	}
	if strings.Contains(cleaned, "&lt;div") || strings.Contains(cleaned, "&lt;p&gt;") {
		problems = append(problems, ProblemEncodedMarkup)
	}
	if strings.Contains(cleaned, "&nbsp;") {
		problems = append(problems, ProblemNbsp)
	}
	if hasBoilerplateClass(doc) {
		problems = append(problems, ProblemBoilerplate)
	}
	if doc.Find("[class]").Length() > 0 {
		problems = append(problems, ProblemClassAttrs)
	}
	return problems, nil
}

func hasBoilerplateClass(doc *goquery.Document) bool {
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		for _, marker := range boilerplateMarkers {
			if strings.Contains(class, marker) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
