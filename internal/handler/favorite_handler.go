package handler

import (
	"net/http"

	"github.com/Eursukkul/bitboletos/internal/dto"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	svc service.FavoriteService
}

func NewFavoriteHandler(svc service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

func (h *FavoriteHandler) RegisterRoutes(e *echo.Echo, auth, limit echo.MiddlewareFunc) {
	e.POST("/api/v1/events/:id/favorite", h.Toggle, limit, auth)
	e.GET("/api/v1/events/:id/favorite", h.Status, auth)
	e.GET("/api/v1/favorites", h.List, auth)
}

func (h *FavoriteHandler) Toggle(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	favorited, err := h.svc.Toggle(c.Request().Context(), s.UserID, eventID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.FavoriteToggleResponse{EventID: eventID, Favorited: favorited})
}

func (h *FavoriteHandler) Status(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	favorited, err := h.svc.IsFavorite(c.Request().Context(), s.UserID, eventID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.FavoriteToggleResponse{EventID: eventID, Favorited: favorited})
}

func (h *FavoriteHandler) List(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}

	favorites, err := h.svc.List(c.Request().Context(), s.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.FavoriteResponse, len(favorites))
	for i := range favorites {
		resp[i] = dto.ToFavoriteResponse(&favorites[i])
	}
	return c.JSON(http.StatusOK, resp)
}
