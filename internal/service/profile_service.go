package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"github.com/Eursukkul/bitboletos/pkg/rabbitmq"
	"gorm.io/gorm"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, userID, name, city string) (*models.UserProfile, error)
	IsAdmin(ctx context.Context, userID string) bool
}

type profileService struct {
	repo      repository.ProfileRepository
	publisher rabbitmq.MessagePublisher
	now       func() time.Time
}

func NewProfileService(repo repository.ProfileRepository, publisher rabbitmq.MessagePublisher) ProfileService {
	return &profileService{repo: repo, publisher: publisher, now: time.Now}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fetchErr("profile", err)
	}
	return profile, nil
}

// Upsert creates the profile on first edit and updates it afterwards.
func (s *profileService) Upsert(ctx context.Context, userID, name, city string) (*models.UserProfile, error) {
	now := s.now().UTC()
	profile := &models.UserProfile{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		City:      strings.TrimSpace(city),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, writeErr("profile", err)
	}

	stored, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(rabbitmq.RoutingProfileUpdated, stored); err != nil {
			log.Printf("[Profile] publish %s: %v", rabbitmq.RoutingProfileUpdated, err)
		}
	}
	return stored, nil
}

// IsAdmin treats a missing or unreadable profile as a regular user.
func (s *profileService) IsAdmin(ctx context.Context, userID string) bool {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return false
	}
	return profile.Role == models.RoleAdmin
}
