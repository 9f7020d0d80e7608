package repositories

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/placeproxy/internal/application/normalize"
	"github.com/avatarctic/placeproxy/internal/application/query"
	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
	"github.com/avatarctic/placeproxy/internal/core/ports"
)

// WikidataPlaceRepository builds a query, executes it upstream and normalizes the result.
// It never caches; wrap it with NewCachingPlaceRepository.
type WikidataPlaceRepository struct {
	builder *query.Builder
	client  ports.QueryClient
	logger  *logrus.Logger
}

func NewWikidataPlaceRepository(builder *query.Builder, client ports.QueryClient, logger *logrus.Logger) ports.PlaceRepository {
	return &WikidataPlaceRepository{builder: builder, client: client, logger: logger}
}

func (r *WikidataPlaceRepository) GetCountry(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error) {
	q, err := r.builder.Country(code)
	if err != nil {
		return nil, err
	}
	res, err := r.execute(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("country %s: %w", code, err)
	}
	info := normalize.Country(code, res)
	return &info, nil
}

func (r *WikidataPlaceRepository) ListPlaces(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error) {
	q, err := r.builder.Places(code, limit, minSitelinks)
	if err != nil {
		return nil, err
	}
	res, err := r.execute(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("places in %s: %w", code, err)
	}
	places := normalize.Places(res)
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"iso3": code.String(), "rows": len(res.Rows()), "places": len(places)}).Debug("normalized places")
	}
	return places, nil
}

func (r *WikidataPlaceRepository) GetPlaceDetail(ctx context.Context, id place.EntityID) (*place.PlaceDetail, error) {
	q, err := r.builder.PlaceDetail(id)
	if err != nil {
		return nil, err
	}
	res, err := r.execute(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("place %s: %w", id, err)
	}
	detail := normalize.PlaceDetail(res)
	return &detail, nil
}

// execute detaches the call from the caller's cancellation: once issued, an upstream
// query runs until it completes or hits the client's own deadline.
func (r *WikidataPlaceRepository) execute(ctx context.Context, q string) (*sparql.Results, error) {
	return r.client.Execute(context.WithoutCancel(ctx), q)
}
