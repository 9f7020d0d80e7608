package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/placeproxy/internal/application/normalize"
	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
)

func uri(v string) sparql.Term     { return sparql.Term{Type: "uri", Value: v} }
func literal(v string) sparql.Term { return sparql.Term{Type: "literal", Value: v} }

func results(rows ...sparql.Row) *sparql.Results {
	return &sparql.Results{Results: sparql.Bindings{Bindings: rows}}
}

func TestEntityIDFromURI(t *testing.T) {
	assert.Equal(t, "Q55", normalize.EntityIDFromURI("http://www.wikidata.org/entity/Q55"))
	assert.Equal(t, "", normalize.EntityIDFromURI("http://www.wikidata.org/entity/P31"))
	assert.Equal(t, "", normalize.EntityIDFromURI("http://www.wikidata.org/entity/Q55/"))
	assert.Equal(t, "", normalize.EntityIDFromURI(""))
}

func TestParsePoint(t *testing.T) {
	p, ok := normalize.ParsePoint("Point(4.8897 52.374)")
	require.True(t, ok)
	assert.InDelta(t, 52.374, p.Lat, 1e-9)
	assert.InDelta(t, 4.8897, p.Lon, 1e-9)

	p, ok = normalize.ParsePoint("<http://www.wikidata.org/entity/Q405> Point(-12.5 -7)")
	require.True(t, ok)
	assert.InDelta(t, -7.0, p.Lat, 1e-9)

	for _, bad := range []string{"", "Point(NaN NaN)", "Point(1.2.3 4)", "POINT(1 2)", "Point(1)"} {
		_, ok := normalize.ParsePoint(bad)
		assert.False(t, ok, bad)
	}
}

func TestCommonsImageURL(t *testing.T) {
	assert.Equal(t, "https://commons.wikimedia.org/wiki/Special:FilePath/Example.jpg?width=560",
		normalize.CommonsImageURL("Example.jpg", 560))
	assert.Equal(t, "https://commons.wikimedia.org/wiki/Special:FilePath/My%20File.jpg?width=760",
		normalize.CommonsImageURL("My File.jpg", 760))
	assert.Equal(t, "http://commons.wikimedia.org/wiki/Special:FilePath/Dam%20Square.jpg?width=560",
		normalize.CommonsImageURL("http://commons.wikimedia.org/wiki/Special:FilePath/Dam%20Square.jpg", 560))
	assert.Equal(t, "", normalize.CommonsImageURL("", 560))
}

func TestCountry_DefaultsWhenNoMatch(t *testing.T) {
	code, err := place.ParseCountryCode("999")
	require.NoError(t, err)
	info := normalize.Country(code, results())
	assert.Equal(t, place.CountryInfo{
		ISO3: "999",
		Meta: place.CountryMeta{Capital: "—", Continent: "—", Population: ""},
	}, info)
}

func TestCountry_MapsRow(t *testing.T) {
	code, err := place.ParseCountryCode("528")
	require.NoError(t, err)
	info := normalize.Country(code, results(sparql.Row{
		"country":        uri("http://www.wikidata.org/entity/Q55"),
		"capitalLabel":   literal("Amsterdam"),
		"continentLabel": literal("Europa"),
		"population":     literal("17590672"),
	}))
	assert.Equal(t, "Q55", info.EntityID)
	assert.Equal(t, "http://www.wikidata.org/entity/Q55", info.WikidataURL)
	assert.Equal(t, "Amsterdam", info.Meta.Capital)
	assert.Equal(t, "Europa", info.Meta.Continent)
	assert.Equal(t, "17590672", info.Meta.Population)
}

func TestPlaces_DeduplicatesAndDropsBadGeometry(t *testing.T) {
	res := results(
		sparql.Row{
			"place":      uri("http://www.wikidata.org/entity/Q727"),
			"placeLabel": literal("Amsterdam"),
			"coord":      literal("Point(4.89 52.37)"),
			"image":      uri("http://commons.wikimedia.org/wiki/Special:FilePath/Amsterdam.jpg"),
			"sitelinks":  literal("250"),
		},
		sparql.Row{
			"place":      uri("http://www.wikidata.org/entity/Q727"),
			"placeLabel": literal("Amsterdam (duplicate)"),
			"coord":      literal("Point(4.90 52.38)"),
			"sitelinks":  literal("250"),
		},
		sparql.Row{
			"place":      uri("http://www.wikidata.org/entity/Q1"),
			"placeLabel": literal("No coordinates"),
			"coord":      literal("Point(NaN NaN)"),
		},
		sparql.Row{
			"place":      uri("http://www.wikidata.org/entity/Q2"),
			"placeLabel": literal("Unbound coordinates"),
		},
		sparql.Row{
			"place":     uri("http://www.wikidata.org/entity/Q9920"),
			"coord":     literal("Point(5.12 52.09)"),
			"sitelinks": literal("not-a-number"),
		},
	)

	places := normalize.Places(res)
	require.Len(t, places, 2)

	first := places[0]
	assert.Equal(t, "Q727", first.EntityID)
	assert.Equal(t, "Amsterdam", first.Label)
	assert.InDelta(t, 52.37, first.Lat, 1e-9)
	assert.InDelta(t, 4.89, first.Lng, 1e-9)
	assert.Equal(t, "http://commons.wikimedia.org/wiki/Special:FilePath/Amsterdam.jpg?width=560", first.Image)
	assert.Equal(t, 250, first.Sitelinks)
	assert.Equal(t, "http://www.wikidata.org/entity/Q727", first.WikidataURL)

	second := places[1]
	assert.Equal(t, "Q9920", second.EntityID)
	assert.Equal(t, "Q9920", second.Label, "label falls back to the id")
	assert.Equal(t, "", second.Description)
	assert.Equal(t, "", second.Image)
	assert.Equal(t, 0, second.Sitelinks)
}

func TestPlaces_EmptyResultIsEmptyList(t *testing.T) {
	places := normalize.Places(results())
	require.NotNil(t, places)
	assert.Empty(t, places)
}

func TestPlaceDetail(t *testing.T) {
	detail := normalize.PlaceDetail(results(sparql.Row{
		"types":        literal("stad, hoofdstad"),
		"website":      uri("https://www.amsterdam.nl"),
		"population":   literal("921402"),
		"countryLabel": literal("Nederland"),
		"image":        uri("http://commons.wikimedia.org/wiki/Special:FilePath/Amsterdam.jpg"),
	}))
	assert.Equal(t, place.PlaceDetail{
		Types:      "stad, hoofdstad",
		Website:    "https://www.amsterdam.nl",
		Population: "921402",
		Country:    "Nederland",
		Image:      "http://commons.wikimedia.org/wiki/Special:FilePath/Amsterdam.jpg?width=760",
	}, detail)

	assert.Equal(t, place.PlaceDetail{}, normalize.PlaceDetail(results()))
}
