package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/bitboletos/internal/middleware"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/Eursukkul/bitboletos/internal/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps service errors onto status codes. Store failures surface
// as 502 since the catalog lives behind a remote backend.
func toHTTPError(err error) error {
	var (
		authErr  *service.AuthError
		fetchErr *service.RemoteFetchError
		writeErr *service.RemoteWriteError
	)

	switch {
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidEvent):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &authErr):
		switch authErr.Reason {
		case service.ReasonUserExists:
			return echo.NewHTTPError(http.StatusConflict, authErr.Error())
		case service.ReasonWeakPassword, service.ReasonInvalidEmail:
			return echo.NewHTTPError(http.StatusBadRequest, authErr.Error())
		default:
			return echo.NewHTTPError(http.StatusUnauthorized, authErr.Error())
		}
	case errors.As(err, &fetchErr), errors.As(err, &writeErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func eventIDParam(c echo.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	return id.String(), nil
}

func currentSession(c echo.Context) (*session.Session, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}
