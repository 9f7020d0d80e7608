// Package normalize reshapes SPARQL result rows into the proxy's stable output records.
package normalize

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
)

// Thumbnail widths per context.
const (
	ListImageWidth   = 560
	DetailImageWidth = 760
)

const commonsFilePath = "https://commons.wikimedia.org/wiki/Special:FilePath/"

var (
	entityURIPattern = regexp.MustCompile(`/(Q\d+)$`)
	pointPattern     = regexp.MustCompile(`Point\(([-\d.]+)\s+([-\d.]+)\)`)
)

// Point is a parsed WKT point.
type Point struct {
	Lat float64
	Lon float64
}

// EntityIDFromURI returns the trailing Q<digits> token of uri, or "".
func EntityIDFromURI(uri string) string {
	m := entityURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParsePoint parses "Point(<lon> <lat>)". Unparseable or non-finite coordinates report ok=false.
func ParsePoint(wkt string) (Point, bool) {
	m := pointPattern.FindStringSubmatch(wkt)
	if m == nil {
		return Point{}, false
	}
	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, false
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}

// CommonsImageURL turns an image reference into a thumbnail URL of the given width.
// Full Special:FilePath URLs keep their base; bare file names are escaped onto the canonical base.
func CommonsImageURL(file string, width int) string {
	if file == "" {
		return ""
	}
	w := strconv.Itoa(width)
	if strings.Contains(file, "Special:FilePath/") {
		sep := "?"
		if strings.Contains(file, "?") {
			sep = "&"
		}
		return file + sep + "width=" + w
	}
	return commonsFilePath + url.PathEscape(file) + "?width=" + w
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Country maps the (at most one) country row. An empty result yields defaulted fields.
func Country(code place.CountryCode, res *sparql.Results) place.CountryInfo {
	row := res.First()
	uri := row.Value("country")
	id := EntityIDFromURI(uri)
	return place.CountryInfo{
		ISO3:        code.String(),
		EntityID:    id,
		WikidataURL: orDefault(uri, place.EntityURL(id)),
		Meta: place.CountryMeta{
			Capital:    orDefault(row.Value("capitalLabel"), place.MissingLabel),
			Continent:  orDefault(row.Value("continentLabel"), place.MissingLabel),
			Population: row.Value("population"),
		},
	}
}

// Places maps list rows in upstream order. Rows without an entity id, with a repeated id,
// or without a parseable point are dropped; the first row for an id wins.
func Places(res *sparql.Results) []place.PlaceSummary {
	rows := res.Rows()
	out := make([]place.PlaceSummary, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		uri := row.Value("place")
		id := EntityIDFromURI(uri)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		pt, ok := ParsePoint(row.Value("coord"))
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, place.PlaceSummary{
			EntityID:    id,
			Label:       orDefault(row.Value("placeLabel"), id),
			Description: row.Value("placeDescription"),
			Lat:         pt.Lat,
			Lng:         pt.Lon,
			Image:       CommonsImageURL(row.Value("image"), ListImageWidth),
			Sitelinks:   parseCount(row.Value("sitelinks")),
			WikidataURL: uri,
		})
	}
	return out
}

// PlaceDetail maps the single aggregated detail row.
func PlaceDetail(res *sparql.Results) place.PlaceDetail {
	row := res.First()
	return place.PlaceDetail{
		Types:      row.Value("types"),
		Website:    row.Value("website"),
		Inception:  row.Value("inception"),
		Population: row.Value("population"),
		Area:       row.Value("area"),
		Country:    row.Value("countryLabel"),
		Admin:      row.Value("adminLabel"),
		Image:      CommonsImageURL(row.Value("image"), DetailImageWidth),
	}
}

func parseCount(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
