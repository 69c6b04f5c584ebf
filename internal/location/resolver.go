// Package location resolves free-text job locations into country codes and decides
// whether a posting implies relocation or an international move for the user.
package location

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	segmentSplitRe = regexp.MustCompile(`\s*[|;•]\s*|\s+or\s+`)
	subdivisionRe  = regexp.MustCompile(`,\s*([A-Z]{2})\b`)
)

// CountrySet is a set of country codes. The zero value is an empty set.
type CountrySet map[string]struct{}

// Has reports whether code is in the set.
func (s CountrySet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in lexical order.
func (s CountrySet) Sorted() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MarshalJSON encodes the set as a sorted array.
func (s CountrySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of codes.
func (s *CountrySet) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	set := make(CountrySet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	*s = set
	return nil
}

type regionRule struct {
	pattern   *regexp.Regexp
	countries []string
}

type countryRule struct {
	pattern *regexp.Regexp
	code    string
}

// Resolver holds compiled location tables. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	regions   []regionRule
	countries []countryRule
	cities    []Alias
	usStates  map[string]struct{}
	provinces map[string]struct{}
}

// NewResolver compiles t. It panics if a table entry cannot be compiled.
func NewResolver(t Tables) *Resolver {
	r := &Resolver{
		usStates:  toSet(t.USStates),
		provinces: toSet(t.Provinces),
	}
	for _, region := range t.Regions {
		r.regions = append(r.regions, regionRule{
			pattern:   wordPattern(region.Name),
			countries: append([]string(nil), region.Countries...),
		})
	}
	for _, alias := range t.Countries {
		r.countries = append(r.countries, countryRule{pattern: wordPattern(alias.Name), code: alias.Code})
	}
	for _, city := range t.Cities {
		r.cities = append(r.cities, Alias{Name: fold(city.Name), Code: city.Code})
	}
	return r
}

var defaultResolver = NewResolver(DefaultTables())

// Default returns the resolver built from DefaultTables.
func Default() *Resolver {
	return defaultResolver
}

// DetectCountries returns every country code the location string mentions.
// Each segment is resolved by the first rule that matches, in order: region name,
// country name or alias, trailing state/province code, known city.
func (r *Resolver) DetectCountries(location string) CountrySet {
	countries := CountrySet{}
	if strings.TrimSpace(location) == "" {
		return countries
	}

	for _, part := range segments(location) {
		lower := fold(strings.TrimSpace(part))
		if lower == "" {
			continue
		}
		if codes, ok := r.matchRegion(lower); ok {
			for _, code := range codes {
				countries[code] = struct{}{}
			}
			continue
		}
		if code, ok := r.matchCountry(lower); ok {
			countries[code] = struct{}{}
			continue
		}
		if code, ok := r.matchSubdivision(part); ok {
			countries[code] = struct{}{}
			continue
		}
		if code, ok := r.matchCity(lower); ok {
			countries[code] = struct{}{}
		}
	}
	return countries
}

// IsRegionOnly reports whether the location names only regions or countries, with
// no city. Blank locations count as region-only.
func (r *Resolver) IsRegionOnly(location string) bool {
	if strings.TrimSpace(location) == "" {
		return true
	}
	for _, part := range segments(location) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if subdivisionRe.MatchString(part) {
			return false
		}
		if _, ok := r.matchCity(fold(part)); ok {
			return false
		}
		if strings.Contains(part, ",") {
			return false
		}
	}
	return true
}

func (r *Resolver) matchRegion(lower string) ([]string, bool) {
	for _, rule := range r.regions {
		if rule.pattern.MatchString(lower) {
			return rule.countries, true
		}
	}
	return nil, false
}

func (r *Resolver) matchCountry(lower string) (string, bool) {
	for _, rule := range r.countries {
		if rule.pattern.MatchString(lower) {
			return rule.code, true
		}
	}
	return "", false
}

// matchSubdivision checks a ", XX" code against the original-case segment.
func (r *Resolver) matchSubdivision(part string) (string, bool) {
	m := subdivisionRe.FindStringSubmatch(part)
	if m == nil {
		return "", false
	}
	if _, ok := r.usStates[m[1]]; ok {
		return "US", true
	}
	if _, ok := r.provinces[m[1]]; ok {
		return "CA", true
	}
	return "", false
}

func (r *Resolver) matchCity(lower string) (string, bool) {
	for _, city := range r.cities {
		if strings.Contains(lower, city.Name) {
			return city.Code, true
		}
	}
	return "", false
}

func segments(location string) []string {
	return segmentSplitRe.Split(location, -1)
}

func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(fold(name)) + `\b`)
}

// fold lower-cases s and strips diacritics, so "Zürich" matches "zurich".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
