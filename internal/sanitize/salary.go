package sanitize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxAmount bounds a parsed amount; anything larger is not a salary.
const maxAmount = 1e12

const (
	currencyPrefix = `(?:(?:USD|CAD|GBP|EUR)\s*)?`
	moneyAmount    = `\$[\d,]+(?:\.\d+)?\s*[kK]?`
	currencySuffix = `(?:\s*(?:USD|CAD|GBP|EUR)\+?)?`
	payPeriod      = `(?:\s*(?:per\s+(?:year|annum)|annually|/\s*yr|/\s*year))?`

	rangeSide = currencyPrefix + moneyAmount + currencySuffix
)

var (
	dashRangeRe = regexp.MustCompile(`(?i)` + rangeSide + `\s*[-–—~]+\s*` + rangeSide + payPeriod)
	wordRangeRe = regexp.MustCompile(`(?i)` + rangeSide + `\s+(?:to|and)\s+` + rangeSide + payPeriod)

	amountValueRe  = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)\s*([kK])?`)
	amountDigitsRe = regexp.MustCompile(`\$[\d,]+(?:\.\d+)?`)
	// Spelled-out units may follow a space; abbreviations must touch the amount,
	// so "$150,000 B2B" is not read as billions.
	largeUnitRe = regexp.MustCompile(`(?i)^(?:\s*(?:million|billion)\b|(?:mm|bn|m|b)(?:[^a-zA-Z0-9]|$))`)
)

// ExtractSalary returns the advertised pay range in text, or "" when none is found.
// A single range is returned as written. Several ranges (per-location tiers) are
// merged into one "$min - $max" envelope. Ranges whose amounts carry a million or
// billion unit are treated as revenue or valuation and ignored.
func ExtractSalary(text string) string {
	if text == "" {
		return ""
	}

	var candidates []string
	for _, re := range []*regexp.Regexp{dashRangeRe, wordRangeRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			c := text[loc[0]:loc[1]]
			if hasLargeUnit(text, loc[0], loc[1]) || exceedsMax(c) {
				continue
			}
			candidates = append(candidates, c)
		}
	}

	switch len(candidates) {
	case 0:
		return ""
	case 1:
		return strings.TrimSpace(candidates[0])
	}

	var values []int64
	for _, c := range candidates {
		for _, v := range amounts(c) {
			values = append(values, int64(v))
		}
	}
	if len(values) == 0 {
		return strings.TrimSpace(candidates[0])
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return "$" + humanize.Comma(lo) + " - $" + humanize.Comma(hi)
}

// hasLargeUnit reports whether any amount in text[start:end] is immediately
// followed by a million/billion unit in the surrounding text.
func hasLargeUnit(text string, start, end int) bool {
	for _, loc := range amountDigitsRe.FindAllStringIndex(text[start:end], -1) {
		if largeUnitRe.MatchString(text[start+loc[1]:]) {
			return true
		}
	}
	return false
}

// amounts parses every dollar amount in a candidate range, applying the k
// multiplier.
func amounts(candidate string) []float64 {
	var values []float64
	for _, m := range amountValueRe.FindAllStringSubmatch(candidate, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		values = append(values, v)
	}
	return values
}

// exceedsMax reports whether a candidate carries an amount no salary reaches.
func exceedsMax(candidate string) bool {
	for _, v := range amounts(candidate) {
		if v >= maxAmount {
			return true
		}
	}
	return false
}
