// Package titles decides whether a job title belongs to the product-management
// role family being tracked.
package titles

import "regexp"

// Rule is a named, case-insensitive title pattern.
type Rule struct {
	Name    string
	Pattern string
}

// DefaultInclude lists the role-family patterns a title must match.
var DefaultInclude = []Rule{
	{Name: "product manager", Pattern: `product\s+manag`},
	{Name: "product lead", Pattern: `product\s+lead`},
	{Name: "product director", Pattern: `product\s+director`},
	{Name: "seniority pm", Pattern: `(?:group|senior|staff|principal)\s+pm\b`},
	{Name: "director of product", Pattern: `director.{0,30}product`},
	{Name: "head of product", Pattern: `head\s+of\s+product`},
	{Name: "vp product", Pattern: `vp.{0,20}product`},
	{Name: "vice president product", Pattern: `vice\s+president.{0,20}product`},
}

// DefaultExclude lists near-miss roles that are rejected even when an include
// rule matches.
var DefaultExclude = []Rule{
	{Name: "adjacent product function", Pattern: `product\s+(?:market|design|counsel|communi|account|legal|launch)`},
	{Name: "qualified product", Pattern: `(?:engineer|software|legal|video|sales).{0,25}product`},
	{Name: "technical program", Pattern: `technical\s+program`},
	{Name: "project manager", Pattern: `project\s+manag`},
}

type compiledRule struct {
	name string
	re   *regexp.Regexp
}

// Classifier applies include and exclude rules to titles. Exclusion always wins.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	include []compiledRule
	exclude []compiledRule
}

// Verdict explains a classification.
type Verdict struct {
	InScope bool   `json:"inScope"`
	Include string `json:"includeRule,omitempty"`
	Exclude string `json:"excludeRule,omitempty"`
}

// New compiles the rules. It panics on an invalid pattern.
func New(include, exclude []Rule) *Classifier {
	return &Classifier{
		include: compile(include),
		exclude: compile(exclude),
	}
}

var defaultClassifier = New(DefaultInclude, DefaultExclude)

// Default returns the classifier built from DefaultInclude and DefaultExclude.
func Default() *Classifier {
	return defaultClassifier
}

// Classify reports the first include and first exclude rule that match title.
// The title is in scope only when some include rule matches and no exclude rule does.
func (c *Classifier) Classify(title string) Verdict {
	var v Verdict
	v.Include = firstMatch(c.include, title)
	v.Exclude = firstMatch(c.exclude, title)
	v.InScope = v.Include != "" && v.Exclude == ""
	return v
}

// InScope is shorthand for Classify(title).InScope.
func (c *Classifier) InScope(title string) bool {
	if firstMatch(c.exclude, title) != "" {
		return false
	}
	return firstMatch(c.include, title) != ""
}

func firstMatch(rules []compiledRule, title string) string {
	for _, r := range rules {
		if r.re.MatchString(title) {
			return r.name
		}
	}
	return ""
}

func compile(rules []Rule) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, compiledRule{name: r.Name, re: regexp.MustCompile(`(?i)` + r.Pattern)})
	}
	return out
}
