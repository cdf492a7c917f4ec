package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/bitboletos/internal/dto"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/api/v1/profile", auth)
	g.GET("", h.GetProfile)
	g.PUT("", h.UpdateProfile)
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}

	profile, err := h.svc.Get(c.Request().Context(), s.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	profile, err := h.svc.Upsert(c.Request().Context(), s.UserID, req.Name, req.City)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}
