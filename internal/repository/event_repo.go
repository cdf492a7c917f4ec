package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"gorm.io/gorm"
)

// EventFilter narrows a catalog read. Only published events are ever read.
type EventFilter struct {
	CityID       string
	CategoryIDs  []string
	FeaturedOnly bool
	From         *time.Time
	To           *time.Time
	Limit        int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindLive(ctx context.Context, filter EventFilter) ([]models.Event, error)
	UpdateFavoriteCount(ctx context.Context, eventID string, count int64) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	event.Normalize()
	return &event, nil
}

func (r *eventRepository) FindLive(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	q := r.withRelations(r.db.WithContext(ctx)).Where("is_live = ?", true)

	if filter.CityID != "" {
		q = q.Where("city_id = ?", filter.CityID)
	}
	if len(filter.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", filter.From.Format(time.DateOnly))
	}
	if filter.To != nil {
		q = q.Where("date <= ?", filter.To.Format(time.DateOnly))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var events []models.Event
	if err := q.Order("date ASC, time ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Normalize()
	}
	return events, nil
}

// UpdateFavoriteCount writes the badge count without touching updated_at.
func (r *eventRepository) UpdateFavoriteCount(ctx context.Context, eventID string, count int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("favorite_count", count).Error
}

func (r *eventRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("City").
		Preload("Category").
		Preload("Organizer").
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("price ASC, id ASC")
		})
}
