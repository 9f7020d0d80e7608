package place

import (
	"regexp"
	"strings"
)

// Field defaults used when the upstream leaves a binding unbound.
const (
	MissingLabel = "—"
)

// CountryInfo is the normalized result of a country lookup.
type CountryInfo struct {
	ISO3        string      `json:"iso3"`
	EntityID    string      `json:"countryQid"`
	WikidataURL string      `json:"wikidataUrl"`
	Meta        CountryMeta `json:"meta"`
}

type CountryMeta struct {
	Capital    string `json:"capital"`
	Continent  string `json:"continent"`
	Population string `json:"population"`
}

// PlaceSummary is one entry of a places-in-country list.
type PlaceSummary struct {
	EntityID    string  `json:"qid"`
	Label       string  `json:"label"`
	Description string  `json:"desc"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Image       string  `json:"image"`
	Sitelinks   int     `json:"sitelinks"`
	WikidataURL string  `json:"wikidataUrl"`
}

// PlaceDetail holds the aggregated properties of a single place.
// Numeric-looking values are kept as the strings the upstream delivered.
type PlaceDetail struct {
	Types      string `json:"types"`
	Website    string `json:"website"`
	Inception  string `json:"inception"`
	Population string `json:"population"`
	Area       string `json:"area"`
	Country    string `json:"country"`
	Admin      string `json:"admin"`
	Image      string `json:"image"`
}

var (
	countryCodePattern = regexp.MustCompile(`^\d{1,3}$`)
	entityIDPattern    = regexp.MustCompile(`^Q\d+$`)
)

// CountryCode is a validated ISO 3166-1 numeric code, zero-padded to three digits.
// The zero value is invalid; use ParseCountryCode.
type CountryCode struct{ v string }

// ParseCountryCode trims raw, checks it is one to three digits and pads it to three.
func ParseCountryCode(raw string) (CountryCode, error) {
	s := strings.TrimSpace(raw)
	if !countryCodePattern.MatchString(s) {
		return CountryCode{}, &ValidationError{Field: "iso3", Value: raw, Reason: "expected 1-3 digits"}
	}
	for len(s) < 3 {
		s = "0" + s
	}
	return CountryCode{v: s}, nil
}

func (c CountryCode) String() string { return c.v }

// Valid reports whether c was produced by ParseCountryCode.
func (c CountryCode) Valid() bool { return len(c.v) == 3 && countryCodePattern.MatchString(c.v) }

// EntityID is a validated knowledge-graph entity reference such as "Q55".
type EntityID struct{ v string }

// ParseEntityID accepts exactly Q followed by digits, after trimming whitespace.
func ParseEntityID(raw string) (EntityID, error) {
	s := strings.TrimSpace(raw)
	if !entityIDPattern.MatchString(s) {
		return EntityID{}, &ValidationError{Field: "qid", Value: raw, Reason: "expected Q<digits>"}
	}
	return EntityID{v: s}, nil
}

func (id EntityID) String() string { return id.v }

func (id EntityID) Valid() bool { return entityIDPattern.MatchString(id.v) }

// IsEntityID reports whether s is a well-formed entity reference.
func IsEntityID(s string) bool { return entityIDPattern.MatchString(s) }

// EntityURL is the human-facing page for an entity.
func EntityURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.wikidata.org/wiki/" + id
}
