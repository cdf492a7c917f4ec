package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"github.com/Eursukkul/bitboletos/pkg/rabbitmq"
	"gorm.io/gorm"
)

type FavoriteService interface {
	Toggle(ctx context.Context, userID, eventID string) (bool, error)
	IsFavorite(ctx context.Context, userID, eventID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	Recount(ctx context.Context, eventID string) (int64, error)
}

type favoriteService struct {
	favRepo   repository.FavoriteRepository
	eventRepo repository.EventRepository
	publisher rabbitmq.MessagePublisher
	locks     *pairLocks
	now       func() time.Time
}

func NewFavoriteService(favRepo repository.FavoriteRepository, eventRepo repository.EventRepository, publisher rabbitmq.MessagePublisher) FavoriteService {
	return &favoriteService{
		favRepo:   favRepo,
		eventRepo: eventRepo,
		publisher: publisher,
		locks:     newPairLocks(),
		now:       time.Now,
	}
}

// Toggle flips the favorite state of (userID, eventID) and returns the new
// state. A double tap handled by this process is serialized; a toggle racing
// another instance converges on whatever the unique index lets through.
// Only published events can be favorited; an existing row can always be
// removed.
func (s *favoriteService) Toggle(ctx context.Context, userID, eventID string) (bool, error) {
	unlock := s.locks.lock(userID + "/" + eventID)
	defer unlock()

	existing, err := s.favRepo.Find(ctx, userID, eventID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fetchErr("favorite", err)
	}

	favorited := existing == nil
	if existing != nil {
		if _, err := s.favRepo.Delete(ctx, userID, eventID); err != nil {
			return false, writeErr("favorite delete", err)
		}
	} else {
		if err := s.requireLive(ctx, eventID); err != nil {
			return false, err
		}
		if _, err := s.favRepo.Insert(ctx, &models.Favorite{UserID: userID, EventID: eventID}); err != nil {
			return false, writeErr("favorite insert", err)
		}
	}

	s.announce(ctx, models.FavoriteToggled{
		UserID:    userID,
		EventID:   eventID,
		Favorited: favorited,
		At:        s.now().UTC(),
	})
	return favorited, nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, eventID string) (bool, error) {
	_, err := s.favRepo.Find(ctx, userID, eventID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fetchErr("favorite", err)
}

// List returns the user's favorites on published events. Rows whose event
// was unpublished stay in the store but are not listed.
func (s *favoriteService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites, err := s.favRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fetchErr("favorites", err)
	}
	live := favorites[:0]
	for _, f := range favorites {
		if f.Event != nil && f.Event.IsLive {
			live = append(live, f)
		}
	}
	return live, nil
}

func (s *favoriteService) requireLive(ctx context.Context, eventID string) error {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fetchErr("event", err)
	}
	if !event.IsLive {
		return ErrEventNotFound
	}
	return nil
}

// Recount refreshes the event's badge count from the favorites table.
func (s *favoriteService) Recount(ctx context.Context, eventID string) (int64, error) {
	count, err := s.favRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, fetchErr("favorite count", err)
	}
	if err := s.eventRepo.UpdateFavoriteCount(ctx, eventID, count); err != nil {
		return 0, writeErr("favorite count", err)
	}
	return count, nil
}

// announce hands the count refresh to the favorite consumer, or does it
// inline when no broker is configured.
func (s *favoriteService) announce(ctx context.Context, msg models.FavoriteToggled) {
	if s.publisher != nil {
		err := s.publisher.Publish(rabbitmq.RoutingFavoriteToggled, msg)
		if err == nil {
			return
		}
		log.Printf("[Favorites] publish failed, recounting inline: %v", err)
	}
	if _, err := s.Recount(ctx, msg.EventID); err != nil {
		log.Printf("[Favorites] recount %s: %v", msg.EventID, err)
	}
}

// pairLocks hands out one mutex per key and forgets it once unused.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*pairLock)}
}

func (p *pairLocks) lock(key string) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
