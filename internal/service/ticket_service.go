package service

import (
	"context"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
)

// TicketService only lists tickets; purchasing is not offered.
type TicketService interface {
	List(ctx context.Context, userID string, upcoming bool) ([]models.Ticket, error)
}

type ticketService struct {
	repo repository.TicketRepository
	now  func() time.Time
}

func NewTicketService(repo repository.TicketRepository) TicketService {
	return &ticketService{repo: repo, now: time.Now}
}

func (s *ticketService) List(ctx context.Context, userID string, upcoming bool) ([]models.Ticket, error) {
	tickets, err := s.repo.FindByUser(ctx, userID, truncateDay(s.now()), upcoming)
	if err != nil {
		return nil, fetchErr("tickets", err)
	}
	return tickets, nil
}
