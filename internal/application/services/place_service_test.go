package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/placeproxy/internal/application/services"
	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/test/mocks"
)

func TestGetPlaceDetail_InvalidIDNeverReachesRepository(t *testing.T) {
	repo := &mocks.PlaceRepositoryMock{}
	svc := impl.NewPlaceService(repo, nil)

	for _, qid := range []string{"", "abc", "Q", "Q12x", "P31", "Q1 } UNION { ?s ?p ?o"} {
		_, err := svc.GetPlaceDetail(context.Background(), qid)
		var ve *place.ValidationError
		require.True(t, errors.As(err, &ve), "qid %q", qid)
	}
	assert.Equal(t, int32(0), repo.DetailCalls.Load())
}

func TestGetCountry_InvalidCodeNeverReachesRepository(t *testing.T) {
	repo := &mocks.PlaceRepositoryMock{}
	svc := impl.NewPlaceService(repo, nil)

	_, err := svc.GetCountry(context.Background(), "NLD")
	var ve *place.ValidationError
	require.True(t, errors.As(err, &ve))
	_, err = svc.ListPlaces(context.Background(), "12345", 5, 0)
	require.True(t, errors.As(err, &ve))

	assert.Equal(t, int32(0), repo.CountryCalls.Load())
	assert.Equal(t, int32(0), repo.PlacesCalls.Load())
}

func TestGetCountry_PadsCode(t *testing.T) {
	var got string
	repo := &mocks.PlaceRepositoryMock{GetCountryFn: func(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error) {
		got = code.String()
		return &place.CountryInfo{ISO3: got}, nil
	}}
	svc := impl.NewPlaceService(repo, nil)

	info, err := svc.GetCountry(context.Background(), "56")
	require.NoError(t, err)
	assert.Equal(t, "056", got)
	assert.Equal(t, "056", info.ISO3)
}

func TestListPlaces_PropagatesUpstreamFailure(t *testing.T) {
	repo := &mocks.PlaceRepositoryMock{ListPlacesFn: func(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error) {
		return nil, &place.UpstreamError{Status: 500, StatusText: "Internal Server Error"}
	}}
	svc := impl.NewPlaceService(repo, nil)

	_, err := svc.ListPlaces(context.Background(), "528", 5, 0)
	var ue *place.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 500, ue.Status)
}
