package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNegativePrice     = errors.New("ticket price must not be negative")
	ErrQuantityExceeded  = errors.New("available quantity exceeds total quantity")
	ErrNegativeQuantity  = errors.New("ticket quantity must not be negative")
	ErrMissingTicketName = errors.New("ticket type name is required")
)

const DefaultCurrency = "MXN"

type TicketType struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID           string    `gorm:"type:varchar(36);not null;index" json:"event_id"`
	Name              string    `gorm:"not null" json:"name"`
	Description       string    `json:"description,omitempty"`
	Price             float64   `gorm:"not null;default:0" json:"price"`
	Currency          string    `gorm:"type:varchar(3);not null;default:'MXN'" json:"currency"`
	AvailableQuantity int       `gorm:"not null;default:0" json:"available_quantity"`
	TotalQuantity     int       `gorm:"not null;default:0" json:"total_quantity"`
	IsAvailable       bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt         time.Time `json:"created_at"`
}

func (t *TicketType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	return t.Validate()
}

func (t *TicketType) Validate() error {
	switch {
	case t.Name == "":
		return ErrMissingTicketName
	case t.Price < 0:
		return ErrNegativePrice
	case t.AvailableQuantity < 0 || t.TotalQuantity < 0:
		return ErrNegativeQuantity
	case t.AvailableQuantity > t.TotalQuantity:
		return ErrQuantityExceeded
	}
	return nil
}
