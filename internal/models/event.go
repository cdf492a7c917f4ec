package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Date          time.Time `gorm:"type:date;not null;index;index:idx_events_live_city_date,priority:3" json:"date"`
	Time          string    `gorm:"type:varchar(8);not null;default:'00:00:00'" json:"time"`
	ImageURL      string    `json:"image_url"`
	Venue         string    `json:"venue,omitempty"`
	IsFeatured    bool      `gorm:"not null;default:false" json:"is_featured"`
	IsLive        bool      `gorm:"not null;default:false;index;index:idx_events_live_city_date,priority:1" json:"is_live"`
	Rating        *float64  `json:"rating,omitempty"`
	ReviewCount   *int      `json:"review_count,omitempty"`
	FavoriteCount *int      `json:"favorite_count,omitempty"`
	CityID        string    `gorm:"type:varchar(36);not null;index;index:idx_events_live_city_date,priority:2" json:"city_id"`
	CategoryID    *string   `gorm:"type:varchar(36);index" json:"category_id,omitempty"`
	OrganizerID   string    `gorm:"type:varchar(36);not null" json:"organizer_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	City        *City        `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Organizer   *Organizer   `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	TicketTypes []TicketType `gorm:"foreignKey:EventID" json:"ticket_types,omitempty"`
}

// ClockLayout is how showing times are stored. Zero padding keeps the
// column's string order equal to the chronological order.
const ClockLayout = "15:04:05"

var ErrInvalidClock = errors.New("time must be HH:MM or HH:MM:SS")

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Normalize()
	return nil
}

// Normalize defaults the loosely typed columns of a row coming from the store.
// A parseable time is rewritten as HH:MM:SS; anything else is left as is.
func (e *Event) Normalize() {
	e.Time = strings.TrimSpace(e.Time)
	if e.Time == "" {
		e.Time = "00:00:00"
	} else if offset, ok := parseClock(e.Time); ok {
		e.Time = time.Time{}.Add(offset).Format(ClockLayout)
	}
	y, m, d := e.Date.Date()
	e.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateTime accepts an empty time (midnight) or HH:MM[:SS].
func (e *Event) ValidateTime() error {
	clock := strings.TrimSpace(e.Time)
	if clock == "" {
		return nil
	}
	if _, ok := parseClock(clock); !ok {
		return ErrInvalidClock
	}
	return nil
}

// ShowingAt combines the calendar date and the local clock time into the
// single instant used for ordering. The clock time is taken literally, no
// zone is applied. A malformed time counts as midnight.
func (e *Event) ShowingAt() time.Time {
	y, m, d := e.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	offset, _ := parseClock(strings.TrimSpace(e.Time))
	return day.Add(offset)
}

func parseClock(clock string) (time.Duration, bool) {
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// MinPrice is the cheapest ticket type, 0 ("free") when there are none.
func (e *Event) MinPrice() float64 {
	if len(e.TicketTypes) == 0 {
		return 0
	}
	min := e.TicketTypes[0].Price
	for _, tt := range e.TicketTypes[1:] {
		if tt.Price < min {
			min = tt.Price
		}
	}
	return min
}

func (e *Event) Favorites() int {
	if e.FavoriteCount == nil {
		return 0
	}
	return *e.FavoriteCount
}

func (e *Event) IsFree() bool {
	return e.MinPrice() == 0
}
