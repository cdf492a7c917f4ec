package repository

import (
	"context"

	"github.com/Eursukkul/bitboletos/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Find(ctx context.Context, userID, eventID string) (*models.Favorite, error)
	Insert(ctx context.Context, favorite *models.Favorite) (bool, error)
	Delete(ctx context.Context, userID, eventID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Find(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	var fav models.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&fav).Error
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// Insert reports false when the (user, event) row already existed; the
// unique index turns a racing insert into a no-op.
func (r *favoriteRepository) Insert(ctx context.Context, favorite *models.Favorite) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(favorite)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete reports false when there was no row left to delete.
func (r *favoriteRepository) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser skips favorites whose event is not published.
func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = favorites.event_id AND events.is_live = ?", true).
		Preload("Event").
		Preload("Event.TicketTypes").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id ASC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
