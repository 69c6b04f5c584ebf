package location

import (
	"strings"
	"unicode/utf8"
)

// WorkType is where the work happens.
type WorkType string

const (
	Remote WorkType = "Remote"
	Hybrid WorkType = "Hybrid"
	OnSite WorkType = "On-site"
)

// Flag marks a posting that would require the user to move.
type Flag string

const (
	FlagNone          Flag = ""
	FlagRelocation    Flag = "Relocation"
	FlagInternational Flag = "International"
)

// hybridScanRunes bounds how much of the description is searched for "hybrid".
const hybridScanRunes = 500

// ClassifyWorkType derives the work arrangement from the location and the opening
// of the description. Blank and region-only locations are treated as remote.
func (r *Resolver) ClassifyWorkType(location, description string) WorkType {
	loc := strings.ToLower(location)
	if strings.Contains(loc, "hybrid") || strings.Contains(strings.ToLower(prefixRunes(description, hybridScanRunes)), "hybrid") {
		return Hybrid
	}
	if strings.Contains(loc, "remote") {
		return Remote
	}
	if strings.TrimSpace(location) == "" {
		return Remote
	}
	if r.IsRegionOnly(location) {
		return Remote
	}
	return OnSite
}

// ClassifyFlag compares the posting location with the user's home country and city.
// Without a configured country it never flags.
func (r *Resolver) ClassifyFlag(location string, workType WorkType, userCountry, userCity string) Flag {
	if userCountry == "" {
		return FlagNone
	}
	home := strings.ToUpper(strings.TrimSpace(userCountry))
	countries := r.DetectCountries(location)

	if workType == Remote {
		if len(countries) == 0 || countries.Has(home) {
			return FlagNone
		}
		return FlagInternational
	}

	if len(countries) == 0 {
		return FlagNone
	}
	if !countries.Has(home) {
		return FlagInternational
	}
	if userCity == "" {
		return FlagNone
	}
	if cityInLocation(userCity, location) {
		return FlagNone
	}
	return FlagRelocation
}

// cityInLocation matches the first comma segment of the user's city against the
// whole location, case-insensitively.
func cityInLocation(userCity, location string) bool {
	city, _, _ := strings.Cut(strings.ToLower(userCity), ",")
	return strings.Contains(strings.ToLower(location), strings.TrimSpace(city))
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
