package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
)

// QueryClientMock is a lightweight mock for ports.QueryClient that records every query.
type QueryClientMock struct {
	ExecuteFn func(ctx context.Context, query string) (*sparql.Results, error)

	mu      sync.Mutex
	queries []string
}

func (m *QueryClientMock) Execute(ctx context.Context, query string) (*sparql.Results, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, query)
	}
	return &sparql.Results{}, nil
}

// Queries returns the queries executed so far.
func (m *QueryClientMock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Calls returns how many times Execute ran.
func (m *QueryClientMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// PlaceRepositoryMock is a lightweight mock for ports.PlaceRepository with call counters.
type PlaceRepositoryMock struct {
	GetCountryFn     func(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error)
	ListPlacesFn     func(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error)
	GetPlaceDetailFn func(ctx context.Context, id place.EntityID) (*place.PlaceDetail, error)

	CountryCalls atomic.Int32
	PlacesCalls  atomic.Int32
	DetailCalls  atomic.Int32
}

func (m *PlaceRepositoryMock) GetCountry(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error) {
	m.CountryCalls.Add(1)
	if m.GetCountryFn != nil {
		return m.GetCountryFn(ctx, code)
	}
	return &place.CountryInfo{ISO3: code.String()}, nil
}

func (m *PlaceRepositoryMock) ListPlaces(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error) {
	m.PlacesCalls.Add(1)
	if m.ListPlacesFn != nil {
		return m.ListPlacesFn(ctx, code, limit, minSitelinks)
	}
	return []place.PlaceSummary{}, nil
}

func (m *PlaceRepositoryMock) GetPlaceDetail(ctx context.Context, id place.EntityID) (*place.PlaceDetail, error) {
	m.DetailCalls.Add(1)
	if m.GetPlaceDetailFn != nil {
		return m.GetPlaceDetailFn(ctx, id)
	}
	return &place.PlaceDetail{}, nil
}

// PlaceServiceMock is a lightweight mock for ports.PlaceService.
type PlaceServiceMock struct {
	GetCountryFn     func(ctx context.Context, iso3 string) (*place.CountryInfo, error)
	ListPlacesFn     func(ctx context.Context, iso3 string, limit, minSitelinks int) ([]place.PlaceSummary, error)
	GetPlaceDetailFn func(ctx context.Context, qid string) (*place.PlaceDetail, error)
}

func (m *PlaceServiceMock) GetCountry(ctx context.Context, iso3 string) (*place.CountryInfo, error) {
	if m.GetCountryFn != nil {
		return m.GetCountryFn(ctx, iso3)
	}
	return &place.CountryInfo{}, nil
}

func (m *PlaceServiceMock) ListPlaces(ctx context.Context, iso3 string, limit, minSitelinks int) ([]place.PlaceSummary, error) {
	if m.ListPlacesFn != nil {
		return m.ListPlacesFn(ctx, iso3, limit, minSitelinks)
	}
	return []place.PlaceSummary{}, nil
}

func (m *PlaceServiceMock) GetPlaceDetail(ctx context.Context, qid string) (*place.PlaceDetail, error) {
	if m.GetPlaceDetailFn != nil {
		return m.GetPlaceDetailFn(ctx, qid)
	}
	return &place.PlaceDetail{}, nil
}

// RateLimiterServiceMock is a lightweight mock for ports.RateLimiterService.
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, client string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, client string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, client)
	}
	return true, 1, 1, time.Now(), nil
}

// FakeClock is a settable time source.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock { return &FakeClock{now: start} }

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
