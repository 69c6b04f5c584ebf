package location

// Tables holds the lookup data a Resolver is built from. Slices are ordered and the
// first match within a segment wins, so more specific names must come first where
// they overlap.
type Tables struct {
	Regions   []Region
	Countries []Alias
	Cities    []Alias
	USStates  []string
	Provinces []string
}

// Region maps a multi-country region name to the countries it covers.
type Region struct {
	Name      string
	Countries []string
}

// Alias maps a lowercase name to a country code.
type Alias struct {
	Name string
	Code string
}

// DefaultTables returns the built-in region, country, city and subdivision tables.
// United Kingdom is reported as "UK" throughout.
func DefaultTables() Tables {
	return Tables{
		Regions: []Region{
			{Name: "namer", Countries: []string{"US", "CA"}},
			{Name: "north america", Countries: []string{"US", "CA"}},
			{Name: "americas", Countries: []string{"US", "CA"}},
			{Name: "latam", Countries: []string{"MX", "BR"}},
			{Name: "emea", Countries: []string{"UK", "DE", "FR", "NL", "IE", "IL", "ES", "CH"}},
			{Name: "europe", Countries: []string{"UK", "DE", "FR", "NL", "IE", "ES", "CH", "SE"}},
			{Name: "apac", Countries: []string{"IN", "SG", "JP", "AU", "KR"}},
		},
		Countries: []Alias{
			{"united states", "US"}, {"united states of america", "US"}, {"us", "US"}, {"usa", "US"},
			{"canada", "CA"},
			{"united kingdom", "UK"}, {"england", "UK"}, {"uk", "UK"},
			{"germany", "DE"}, {"france", "FR"}, {"netherlands", "NL"},
			{"ireland", "IE"}, {"israel", "IL"}, {"spain", "ES"}, {"italy", "IT"},
			{"sweden", "SE"}, {"norway", "NO"}, {"denmark", "DK"}, {"finland", "FI"},
			{"switzerland", "CH"}, {"austria", "AT"}, {"belgium", "BE"}, {"portugal", "PT"},
			{"poland", "PL"},
			{"australia", "AU"}, {"india", "IN"}, {"singapore", "SG"}, {"japan", "JP"},
			{"south korea", "KR"}, {"china", "CN"}, {"taiwan", "TW"},
			{"brazil", "BR"}, {"mexico", "MX"},
			{"uae", "AE"}, {"united arab emirates", "AE"}, {"qatar", "QA"}, {"saudi arabia", "SA"},
		},
		Cities: []Alias{
			{"san francisco", "US"}, {"new york", "US"}, {"new york city", "US"}, {"nyc", "US"},
			{"seattle", "US"}, {"austin", "US"}, {"chicago", "US"}, {"los angeles", "US"},
			{"mountain view", "US"}, {"palo alto", "US"}, {"menlo park", "US"},
			{"sunnyvale", "US"}, {"redwood city", "US"}, {"san mateo", "US"},
			{"san jose", "US"}, {"miami", "US"}, {"dallas", "US"}, {"houston", "US"},
			{"boston", "US"}, {"denver", "US"}, {"portland", "US"}, {"phoenix", "US"},
			{"salt lake city", "US"}, {"washington", "US"}, {"atlanta", "US"},
			{"toronto", "CA"}, {"vancouver", "CA"}, {"montreal", "CA"}, {"ottawa", "CA"},
			{"london", "UK"}, {"edinburgh", "UK"}, {"manchester", "UK"},
			{"dublin", "IE"}, {"paris", "FR"}, {"berlin", "DE"}, {"munich", "DE"},
			{"amsterdam", "NL"}, {"zurich", "CH"}, {"barcelona", "ES"}, {"stockholm", "SE"},
			{"tel aviv", "IL"}, {"singapore", "SG"}, {"tokyo", "JP"}, {"seoul", "KR"},
			{"bangalore", "IN"}, {"bengaluru", "IN"}, {"mumbai", "IN"}, {"hyderabad", "IN"},
			{"sydney", "AU"}, {"melbourne", "AU"},
			{"dubai", "AE"}, {"riyadh", "SA"},
		},
		USStates: []string{
			"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN",
			"IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV",
			"NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN",
			"TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "DC",
		},
		Provinces: []string{
			"AB", "BC", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT",
		},
	}
}
