package dto

type TicketTypeRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	AvailableQuantity int     `json:"available_quantity"`
	TotalQuantity     int     `json:"total_quantity"`
}

// CreateEventRequest carries Date as YYYY-MM-DD and Time as HH:MM, both
// local to the venue.
type CreateEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	ImageURL    string              `json:"image_url"`
	Venue       string              `json:"venue"`
	IsFeatured  bool                `json:"is_featured"`
	IsLive      bool                `json:"is_live"`
	CityID      string              `json:"city_id"`
	CategoryID  *string             `json:"category_id"`
	OrganizerID string              `json:"organizer_id"`
	TicketTypes []TicketTypeRequest `json:"ticket_types"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}
