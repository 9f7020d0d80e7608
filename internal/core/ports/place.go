package ports

import (
	"context"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
)

// QueryClient executes a rendered SPARQL query against the upstream endpoint.
// Failures are *place.UpstreamError or *place.TransportError.
type QueryClient interface {
	Execute(ctx context.Context, query string) (*sparql.Results, error)
}

// PlaceRepository resolves normalized records for validated inputs.
type PlaceRepository interface {
	GetCountry(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error)
	ListPlaces(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error)
	GetPlaceDetail(ctx context.Context, id place.EntityID) (*place.PlaceDetail, error)
}

// PlaceService is the entry point for handlers: it validates raw input before touching the repository.
type PlaceService interface {
	GetCountry(ctx context.Context, iso3 string) (*place.CountryInfo, error)
	ListPlaces(ctx context.Context, iso3 string, limit, minSitelinks int) ([]place.PlaceSummary, error)
	GetPlaceDetail(ctx context.Context, qid string) (*place.PlaceDetail, error)
}
