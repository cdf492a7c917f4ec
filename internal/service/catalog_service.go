package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/query"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"github.com/Eursukkul/bitboletos/pkg/rabbitmq"
	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
)

const (
	DefaultCatalogLimit  = 50
	DefaultFeaturedLimit = 10
	DefaultUpcomingLimit = 20

	// MaxCatalogLimit caps a single catalog read.
	MaxCatalogLimit = 100
	// MaxSnapshots bounds the number of filters kept for stale fallback.
	// The least recently used filter is evicted first.
	MaxSnapshots = 64
)

// CatalogFilter restricts a catalog load. Unpublished events are never
// returned, whatever the filter says.
type CatalogFilter struct {
	CityID       string
	CategoryIDs  []string
	FeaturedOnly bool
	Upcoming     bool
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
}

// Key identifies the snapshot a filter loads into.
func (f CatalogFilter) Key() string {
	cats := append([]string(nil), f.CategoryIDs...)
	sort.Strings(cats)
	return fmt.Sprintf("city=%s|cat=%s|featured=%t|upcoming=%t|from=%s|to=%s|limit=%d",
		f.CityID, strings.Join(cats, ","), f.FeaturedOnly, f.Upcoming,
		formatDate(f.StartDate), formatDate(f.EndDate), f.Limit)
}

// SearchResult is the derived list shown by the explore screen. Stale is set
// when the catalog could not be refreshed and the previous load was used.
type SearchResult struct {
	Events []models.Event
	Stale  bool
	Err    error
}

type CatalogService interface {
	Load(ctx context.Context, filter CatalogFilter) ([]models.Event, error)
	Snapshot(filter CatalogFilter) ([]models.Event, bool)
	Get(ctx context.Context, id string) (*models.Event, error)
	Search(ctx context.Context, filter CatalogFilter, text string, key query.SortKey) (SearchResult, error)
	CreateEvent(ctx context.Context, event *models.Event) error
}

type catalogService struct {
	repo      repository.EventRepository
	publisher rabbitmq.MessagePublisher
	now       func() time.Time
	limit     int
	snapshots *lru.Cache[string, []models.Event]
}

func NewCatalogService(repo repository.EventRepository, publisher rabbitmq.MessagePublisher, limit int) CatalogService {
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	if limit > MaxCatalogLimit {
		limit = MaxCatalogLimit
	}
	snapshots, err := lru.New[string, []models.Event](MaxSnapshots)
	if err != nil {
		panic(err)
	}
	return &catalogService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
		limit:     limit,
		snapshots: snapshots,
	}
}

// Load reads the catalog for filter and replaces its snapshot. A failed read
// leaves the previous snapshot in place.
func (s *catalogService) Load(ctx context.Context, filter CatalogFilter) ([]models.Event, error) {
	events, err := s.repo.FindLive(ctx, s.toRepoFilter(filter))
	if err != nil {
		return nil, fetchErr("events", err)
	}

	live := events[:0]
	for _, e := range events {
		if e.IsLive {
			live = append(live, e)
		}
	}

	s.snapshots.Add(filter.Key(), live)

	return live, nil
}

// Snapshot returns the last collection successfully loaded for filter.
func (s *catalogService) Snapshot(filter CatalogFilter) ([]models.Event, bool) {
	events, ok := s.snapshots.Get(filter.Key())
	if !ok {
		return nil, false
	}
	out := make([]models.Event, len(events))
	copy(out, events)
	return out, true
}

func (s *catalogService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fetchErr("event", err)
	}
	if !event.IsLive {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// Search loads the catalog and derives the displayed list from it. When the
// load fails but an earlier one succeeded, the earlier collection is used
// and the result is marked stale.
func (s *catalogService) Search(ctx context.Context, filter CatalogFilter, text string, key query.SortKey) (SearchResult, error) {
	events, err := s.Load(ctx, filter)
	if err != nil {
		previous, ok := s.Snapshot(filter)
		if !ok {
			return SearchResult{}, err
		}
		return SearchResult{Events: query.Apply(previous, text, key), Stale: true, Err: err}, nil
	}
	return SearchResult{Events: query.Apply(events, text, key)}, nil
}

func (s *catalogService) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	event.Normalize()
	if err := s.repo.Create(ctx, event); err != nil {
		return writeErr("event", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(rabbitmq.RoutingEventCreated, event); err != nil {
			log.Printf("[Catalog] publish %s: %v", rabbitmq.RoutingEventCreated, err)
		}
	}
	return nil
}

func (s *catalogService) toRepoFilter(f CatalogFilter) repository.EventFilter {
	out := repository.EventFilter{
		CityID:       f.CityID,
		CategoryIDs:  f.CategoryIDs,
		FeaturedOnly: f.FeaturedOnly,
		From:         f.StartDate,
		To:           f.EndDate,
		Limit:        f.Limit,
	}
	if f.Upcoming {
		today := truncateDay(s.now())
		if out.From == nil || out.From.Before(today) {
			out.From = &today
		}
	}
	if out.Limit <= 0 {
		out.Limit = s.limit
	}
	if out.Limit > MaxCatalogLimit {
		out.Limit = MaxCatalogLimit
	}
	return out
}

func validateEvent(e *models.Event) error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case e.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidEvent)
	case e.CityID == "":
		return fmt.Errorf("%w: city_id is required", ErrInvalidEvent)
	case e.OrganizerID == "":
		return fmt.Errorf("%w: organizer_id is required", ErrInvalidEvent)
	}
	if err := e.ValidateTime(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	for i := range e.TicketTypes {
		if err := e.TicketTypes[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
