package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"gorm.io/gorm"
)

type TicketRepository interface {
	FindByUser(ctx context.Context, userID string, today time.Time, upcoming bool) ([]models.Ticket, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) FindByUser(ctx context.Context, userID string, today time.Time, upcoming bool) ([]models.Ticket, error) {
	op := "<"
	if upcoming {
		op = ">="
	}

	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = tickets.event_id").
		Preload("Event").
		Preload("TicketType").
		Where("tickets.user_id = ?", userID).
		Where("events.date "+op+" ?", today.Format(time.DateOnly)).
		Order("events.date ASC, events.time ASC, tickets.id ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
