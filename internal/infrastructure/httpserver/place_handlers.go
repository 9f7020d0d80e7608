package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/placeproxy/internal/application/query"
)

func (s *Server) getCountry(c echo.Context) error {
	info, err := s.placeService.GetCountry(c.Request().Context(), c.Param("iso3"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// listPlaces accepts ?limit= (default 30, clamped to 1..60) and ?minSitelinks= (default 0).
func (s *Server) listPlaces(c echo.Context) error {
	limit := intQueryParam(c, "limit", query.DefaultPlacesLimit)
	minSitelinks := intQueryParam(c, "minSitelinks", 0)
	places, err := s.placeService.ListPlaces(c.Request().Context(), c.Param("iso3"), limit, minSitelinks)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, places)
}

func (s *Server) getPlaceDetail(c echo.Context) error {
	detail, err := s.placeService.GetPlaceDetail(c.Request().Context(), c.Param("qid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// intQueryParam returns def when the parameter is missing or not an integer.
func intQueryParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= -1e9 && f <= 1e9 {
		return int(f)
	}
	return def
}
