// Package query renders the three fixed SPARQL query shapes the proxy issues.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
)

const (
	DefaultPlacesLimit = 30
	MaxPlacesLimit     = 60
	DefaultLanguages   = "nl,en"
)

var languagesPattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]+)?(,[a-z]{2,3}(-[a-z]+)?)*$`)

var templates = template.Must(template.New("sparql").Parse(`
{{- define "country" -}}
SELECT ?country ?capitalLabel ?continentLabel ?population WHERE {
  ?country wdt:P299 "{{.Code}}" .
  OPTIONAL { ?country wdt:P36 ?capital . }
  OPTIONAL { ?country wdt:P30 ?continent . }
  OPTIONAL { ?country wdt:P1082 ?population . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "{{.Languages}}". }
}
LIMIT 1
{{end -}}

{{- define "places" -}}
SELECT ?place ?placeLabel ?placeDescription ?coord ?image ?sitelinks WHERE {
  ?country wdt:P299 "{{.Code}}" .

  ?place wdt:P625 ?coord .
  ?place wdt:P17 ?country .

  FILTER NOT EXISTS { ?place wdt:P31 wd:Q4167836 }
  FILTER NOT EXISTS { ?place wdt:P31 wd:Q13406463 }

  OPTIONAL { ?place wdt:P18 ?image . }
  OPTIONAL { ?place wikibase:sitelinks ?sitelinks . }
{{if gt .MinSitelinks 0}}
  FILTER(COALESCE(?sitelinks, 0) >= {{.MinSitelinks}})
{{end}}
  SERVICE wikibase:label { bd:serviceParam wikibase:language "{{.Languages}}". }
}
ORDER BY DESC(COALESCE(?sitelinks, 0))
LIMIT {{.Limit}}
{{end -}}

{{- define "detail" -}}
SELECT
  (GROUP_CONCAT(DISTINCT ?typeLabel; separator=", ") AS ?types)
  (SAMPLE(?website) AS ?website)
  (SAMPLE(?inception) AS ?inception)
  (SAMPLE(?population) AS ?population)
  (SAMPLE(?area) AS ?area)
  (SAMPLE(?countryLabel) AS ?countryLabel)
  (SAMPLE(?adminLabel) AS ?adminLabel)
  (SAMPLE(?image) AS ?image)
WHERE {
  BIND(wd:{{.ID}} AS ?place)
  OPTIONAL { ?place wdt:P31 ?type . }
  OPTIONAL { ?place wdt:P856 ?website . }
  OPTIONAL { ?place wdt:P571 ?inception . }
  OPTIONAL { ?place wdt:P1082 ?population . }
  OPTIONAL { ?place wdt:P2046 ?area . }
  OPTIONAL { ?place wdt:P17 ?country . }
  OPTIONAL { ?place wdt:P131 ?admin . }
  OPTIONAL { ?place wdt:P18 ?image . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "{{.Languages}}". }
}
{{end -}}
`))

// Builder renders queries with a fixed label-language preference.
type Builder struct {
	languages string
}

// NewBuilder validates languages (e.g. "nl,en"); an empty value selects DefaultLanguages.
func NewBuilder(languages string) (*Builder, error) {
	languages = strings.ReplaceAll(strings.TrimSpace(languages), " ", "")
	if languages == "" {
		languages = DefaultLanguages
	}
	if !languagesPattern.MatchString(languages) {
		return nil, fmt.Errorf("invalid label languages %q", languages)
	}
	return &Builder{languages: languages}, nil
}

// ClampLimit bounds a requested list size to [1, MaxPlacesLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPlacesLimit {
		return MaxPlacesLimit
	}
	return limit
}

// ClampMinSitelinks bounds a popularity threshold to [0, ∞).
func ClampMinSitelinks(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Country selects the entity whose ISO-numeric code equals code.
func (b *Builder) Country(code place.CountryCode) (string, error) {
	if !code.Valid() {
		return "", &place.ValidationError{Field: "iso3", Value: code.String(), Reason: "not a parsed country code"}
	}
	return b.render("country", map[string]any{"Code": code.String(), "Languages": b.languages})
}

// Places selects coordinate-bearing places in the country, most linked first.
// limit and minSitelinks are clamped rather than rejected.
func (b *Builder) Places(code place.CountryCode, limit, minSitelinks int) (string, error) {
	if !code.Valid() {
		return "", &place.ValidationError{Field: "iso3", Value: code.String(), Reason: "not a parsed country code"}
	}
	return b.render("places", map[string]any{
		"Code":         code.String(),
		"Limit":        ClampLimit(limit),
		"MinSitelinks": ClampMinSitelinks(minSitelinks),
		"Languages":    b.languages,
	})
}

// PlaceDetail aggregates the optional properties of one entity into a single row.
func (b *Builder) PlaceDetail(id place.EntityID) (string, error) {
	if !id.Valid() {
		return "", &place.ValidationError{Field: "qid", Value: id.String(), Reason: "not a parsed entity id"}
	}
	return b.render("detail", map[string]any{"ID": id.String(), "Languages": b.languages})
}

func (b *Builder) render(name string, data map[string]any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s query: %w", name, err)
	}
	return sb.String(), nil
}
