package handler

import (
	"net/http"

	"github.com/Eursukkul/bitboletos/internal/dto"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/api/v1/tickets", h.ListTickets, auth)
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return err
	}
	upcoming, err := boolParam(c, "upcoming", true)
	if err != nil {
		return err
	}

	tickets, err := h.svc.List(c.Request().Context(), s.UserID, upcoming)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		resp[i] = dto.ToTicketResponse(&tickets[i])
	}
	return c.JSON(http.StatusOK, resp)
}
