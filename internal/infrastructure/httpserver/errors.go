package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
)

// toHTTPError maps domain failures onto status codes: bad input 400, upstream or
// transport failure 502, anything else 500.
func toHTTPError(err error) error {
	var ve *place.ValidationError
	var ue *place.UpstreamError
	var te *place.TransportError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error()).SetInternal(err)
	case errors.As(err, &ue), errors.As(err, &te):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// jsonErrorHandler renders every error as {"error": "<message>"}.
func jsonErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else if logger != nil {
			logger.WithError(err).Error("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, map[string]string{"error": msg})
		}
		if writeErr != nil && logger != nil {
			logger.WithError(writeErr).Warn("failed to write error response")
		}
	}
}
