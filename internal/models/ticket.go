package models

import "time"

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketConfirmed TicketStatus = "confirmed"
	TicketCancelled TicketStatus = "cancelled"
	TicketUsed      TicketStatus = "used"
)

type Ticket struct {
	ID           string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	EventID      string       `gorm:"type:varchar(36);not null;index" json:"event_id"`
	TicketTypeID string       `gorm:"type:varchar(36);not null" json:"ticket_type_id"`
	Quantity     int          `gorm:"not null;default:1" json:"quantity"`
	TotalPrice   float64      `gorm:"not null;default:0" json:"total_price"`
	Status       TicketStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TicketNumber string       `json:"ticket_number,omitempty"`
	QRCode       string       `json:"qr_code,omitempty"`
	PurchaseDate *time.Time   `json:"purchase_date,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`

	Event      *Event      `gorm:"foreignKey:EventID" json:"event,omitempty"`
	TicketType *TicketType `gorm:"foreignKey:TicketTypeID" json:"ticket_type,omitempty"`
}
