package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/bitboletos/internal/dto"
	"github.com/Eursukkul/bitboletos/internal/middleware"
	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/query"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	catalog service.CatalogService
	home    service.HomeService
}

func NewEventHandler(catalog service.CatalogService, home service.HomeService) *EventHandler {
	return &EventHandler{catalog: catalog, home: home}
}

// RegisterRoutes mounts the public catalog routes. Event creation goes
// through auth and requires the admin role.
func (h *EventHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	events := e.Group("/api/v1/events")
	events.GET("", h.ListEvents)
	events.GET("/search", h.SearchEvents)
	events.GET("/:id", h.GetEvent)
	events.POST("", h.CreateEvent, auth, middleware.RequireAdmin())

	e.GET("/api/v1/home", h.Home)
	e.GET("/api/v1/cities", h.ListCities)
	e.GET("/api/v1/categories", h.ListCategories)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	filter, err := catalogFilter(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.Search(c.Request().Context(), filter, "", query.SortDate)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventListResponse(result))
}

func (h *EventHandler) SearchEvents(c echo.Context) error {
	key, err := query.ParseSortKey(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter, err := catalogFilter(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.Search(c.Request().Context(), filter, c.QueryParam("q"), key)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventListResponse(result))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}

	event, err := h.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		ImageURL:    req.ImageURL,
		Venue:       req.Venue,
		IsFeatured:  req.IsFeatured,
		IsLive:      req.IsLive,
		CityID:      req.CityID,
		CategoryID:  req.CategoryID,
		OrganizerID: req.OrganizerID,
	}
	for _, tt := range req.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, models.TicketType{
			Name:              tt.Name,
			Description:       tt.Description,
			Price:             tt.Price,
			Currency:          tt.Currency,
			AvailableQuantity: tt.AvailableQuantity,
			TotalQuantity:     tt.TotalQuantity,
			IsAvailable:       tt.AvailableQuantity > 0,
		})
	}

	if err := h.catalog.CreateEvent(c.Request().Context(), event); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) Home(c echo.Context) error {
	feed, err := h.home.Load(c.Request().Context(), c.QueryParam("city_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToHomeResponse(feed))
}

func (h *EventHandler) ListCities(c echo.Context) error {
	cities, err := h.home.Cities(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, cities)
}

func (h *EventHandler) ListCategories(c echo.Context) error {
	categories, err := h.home.Categories(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// catalogFilter reads city_id, category_id (repeatable or comma separated),
// featured, upcoming, from, to and limit from the query string.
func catalogFilter(c echo.Context) (service.CatalogFilter, error) {
	filter := service.CatalogFilter{CityID: c.QueryParam("city_id")}

	for _, raw := range c.QueryParams()["category_id"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.CategoryIDs = append(filter.CategoryIDs, id)
			}
		}
	}

	var err error
	if filter.FeaturedOnly, err = boolParam(c, "featured", false); err != nil {
		return filter, err
	}
	if filter.Upcoming, err = boolParam(c, "upcoming", false); err != nil {
		return filter, err
	}
	if filter.StartDate, err = dateParam(c, "from"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = dateParam(c, "to"); err != nil {
		return filter, err
	}

	if s := c.QueryParam("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if limit > service.MaxCatalogLimit {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "limit must be at most "+strconv.Itoa(service.MaxCatalogLimit))
		}
		filter.Limit = limit
	}
	return filter, nil
}

func boolParam(c echo.Context, name string, def bool) (bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be YYYY-MM-DD")
	}
	return &t, nil
}
