package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/ports"
)

// PlaceService validates raw request values and resolves them through the repository.
// Malformed input fails with *place.ValidationError before the repository is touched.
type PlaceService struct {
	repo   ports.PlaceRepository
	logger *logrus.Logger
}

func NewPlaceService(repo ports.PlaceRepository, logger *logrus.Logger) ports.PlaceService {
	return &PlaceService{repo: repo, logger: logger}
}

func (s *PlaceService) GetCountry(ctx context.Context, iso3 string) (*place.CountryInfo, error) {
	code, err := place.ParseCountryCode(iso3)
	if err != nil {
		return nil, err
	}
	info, err := s.repo.GetCountry(ctx, code)
	if err != nil {
		s.logFailure(err, logrus.Fields{"iso3": code.String()}, "country lookup failed")
		return nil, err
	}
	return info, nil
}

func (s *PlaceService) ListPlaces(ctx context.Context, iso3 string, limit, minSitelinks int) ([]place.PlaceSummary, error) {
	code, err := place.ParseCountryCode(iso3)
	if err != nil {
		return nil, err
	}
	places, err := s.repo.ListPlaces(ctx, code, limit, minSitelinks)
	if err != nil {
		s.logFailure(err, logrus.Fields{"iso3": code.String(), "limit": limit, "min_sitelinks": minSitelinks}, "places lookup failed")
		return nil, err
	}
	return places, nil
}

func (s *PlaceService) GetPlaceDetail(ctx context.Context, qid string) (*place.PlaceDetail, error) {
	id, err := place.ParseEntityID(qid)
	if err != nil {
		return nil, err
	}
	detail, err := s.repo.GetPlaceDetail(ctx, id)
	if err != nil {
		s.logFailure(err, logrus.Fields{"qid": id.String()}, "place detail lookup failed")
		return nil, err
	}
	return detail, nil
}

func (s *PlaceService) logFailure(err error, fields logrus.Fields, msg string) {
	if s.logger != nil {
		s.logger.WithFields(fields).WithError(err).Error(msg)
	}
}
