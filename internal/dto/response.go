package dto

import (
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/Eursukkul/bitboletos/internal/session"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type TicketTypeResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	AvailableQuantity int     `json:"available_quantity"`
	TotalQuantity     int     `json:"total_quantity"`
	IsAvailable       bool    `json:"is_available"`
}

type EventResponse struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	ImageURL      string               `json:"image_url"`
	Venue         string               `json:"venue,omitempty"`
	IsFeatured    bool                 `json:"is_featured"`
	Rating        *float64             `json:"rating,omitempty"`
	ReviewCount   *int                 `json:"review_count,omitempty"`
	FavoriteCount int                  `json:"favorite_count"`
	MinPrice      float64              `json:"min_price"`
	IsFree        bool                 `json:"is_free"`
	CityID        string               `json:"city_id"`
	CategoryID    *string              `json:"category_id,omitempty"`
	OrganizerID   string               `json:"organizer_id"`
	City          *models.City         `json:"city,omitempty"`
	Category      *models.Category     `json:"category,omitempty"`
	Organizer     *models.Organizer    `json:"organizer,omitempty"`
	TicketTypes   []TicketTypeResponse `json:"ticket_types"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
	Stale  bool            `json:"stale,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type FavoriteToggleResponse struct {
	EventID   string `json:"event_id"`
	Favorited bool   `json:"favorited"`
}

type FavoriteResponse struct {
	ID        string         `json:"id"`
	EventID   string         `json:"event_id"`
	CreatedAt time.Time      `json:"created_at"`
	Event     *EventResponse `json:"event,omitempty"`
}

type HomeResponse struct {
	Cities     []models.City     `json:"cities"`
	Categories []models.Category `json:"categories"`
	Featured   []EventResponse   `json:"featured"`
	Upcoming   []EventResponse   `json:"upcoming"`
	Errors     map[string]string `json:"errors,omitempty"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

type SessionResponse struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

type AuthResponse struct {
	User             UserResponse     `json:"user"`
	Session          *SessionResponse `json:"session,omitempty"`
	VerificationSent bool             `json:"verification_sent,omitempty"`
	Message          string           `json:"message,omitempty"`
}

type ProfileResponse struct {
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	City      string      `json:"city,omitempty"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	Role      models.Role `json:"role"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type TicketResponse struct {
	ID           string              `json:"id"`
	EventID      string              `json:"event_id"`
	Quantity     int                 `json:"quantity"`
	TotalPrice   float64             `json:"total_price"`
	Status       models.TicketStatus `json:"status"`
	TicketNumber string              `json:"ticket_number,omitempty"`
	QRCode       string              `json:"qr_code,omitempty"`
	PurchaseDate *time.Time          `json:"purchase_date,omitempty"`
	Event        *EventResponse      `json:"event,omitempty"`
	TicketType   *TicketTypeResponse `json:"ticket_type,omitempty"`
}

func ToTicketTypeResponse(t *models.TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		Price:             t.Price,
		Currency:          t.Currency,
		AvailableQuantity: t.AvailableQuantity,
		TotalQuantity:     t.TotalQuantity,
		IsAvailable:       t.IsAvailable,
	}
}

func ToEventResponse(e *models.Event) EventResponse {
	types := make([]TicketTypeResponse, len(e.TicketTypes))
	for i := range e.TicketTypes {
		types[i] = ToTicketTypeResponse(&e.TicketTypes[i])
	}
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date.Format(time.DateOnly),
		Time:          e.Time,
		ImageURL:      e.ImageURL,
		Venue:         e.Venue,
		IsFeatured:    e.IsFeatured,
		Rating:        e.Rating,
		ReviewCount:   e.ReviewCount,
		FavoriteCount: e.Favorites(),
		MinPrice:      e.MinPrice(),
		IsFree:        e.IsFree(),
		CityID:        e.CityID,
		CategoryID:    e.CategoryID,
		OrganizerID:   e.OrganizerID,
		City:          e.City,
		Category:      e.Category,
		Organizer:     e.Organizer,
		TicketTypes:   types,
	}
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

func ToEventListResponse(r service.SearchResult) EventListResponse {
	resp := EventListResponse{
		Events: ToEventResponses(r.Events),
		Count:  len(r.Events),
		Stale:  r.Stale,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

func ToFavoriteResponse(f *models.Favorite) FavoriteResponse {
	resp := FavoriteResponse{ID: f.ID, EventID: f.EventID, CreatedAt: f.CreatedAt}
	if f.Event != nil {
		ev := ToEventResponse(f.Event)
		resp.Event = &ev
	}
	return resp
}

func ToHomeResponse(feed *service.HomeFeed) HomeResponse {
	resp := HomeResponse{
		Cities:     feed.Cities,
		Categories: feed.Categories,
		Featured:   ToEventResponses(feed.Featured),
		Upcoming:   ToEventResponses(feed.Upcoming),
	}
	if resp.Cities == nil {
		resp.Cities = []models.City{}
	}
	if resp.Categories == nil {
		resp.Categories = []models.Category{}
	}
	if len(feed.Errors) > 0 {
		resp.Errors = make(map[string]string, len(feed.Errors))
		for section, err := range feed.Errors {
			resp.Errors[section] = err.Error()
		}
	}
	return resp
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Confirmed: u.Confirmed()}
}

func ToSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		AccessToken: s.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   s.ExpiresAt,
		UserID:      s.UserID,
		Email:       s.Email,
		Role:        s.Role,
	}
}

func ToAuthResponse(r *service.AuthResult) AuthResponse {
	resp := AuthResponse{User: ToUserResponse(r.User), VerificationSent: r.VerificationSent}
	if r.Session != nil {
		s := ToSessionResponse(r.Session)
		resp.Session = &s
	} else {
		resp.Message = "check your inbox to confirm your email"
	}
	return resp
}

func ToProfileResponse(p *models.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:    p.UserID,
		Name:      p.Name,
		City:      p.City,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		Quantity:     t.Quantity,
		TotalPrice:   t.TotalPrice,
		Status:       t.Status,
		TicketNumber: t.TicketNumber,
		QRCode:       t.QRCode,
		PurchaseDate: t.PurchaseDate,
	}
	if t.Event != nil {
		ev := ToEventResponse(t.Event)
		resp.Event = &ev
	}
	if t.TicketType != nil {
		tt := ToTicketTypeResponse(t.TicketType)
		resp.TicketType = &tt
	}
	return resp
}
