package service

import (
	"context"
	"sync"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	SectionCities     = "cities"
	SectionCategories = "categories"
	SectionFeatured   = "featured"
	SectionUpcoming   = "upcoming"
)

// HomeFeed is the landing screen. Each section is filled independently; a
// section that failed keeps its zero value and has an entry in Errors.
type HomeFeed struct {
	Cities     []models.City
	Categories []models.Category
	Featured   []models.Event
	Upcoming   []models.Event
	Errors     map[string]error
}

type HomeService interface {
	Load(ctx context.Context, cityID string) (*HomeFeed, error)
	Cities(ctx context.Context) ([]models.City, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type homeService struct {
	refs    repository.ReferenceRepository
	catalog CatalogService
}

func NewHomeService(refs repository.ReferenceRepository, catalog CatalogService) HomeService {
	return &homeService{refs: refs, catalog: catalog}
}

// Load issues the four section reads concurrently and waits for all of them.
// It only returns an error when ctx is done, in which case the caller should
// discard the feed.
func (s *homeService) Load(ctx context.Context, cityID string) (*HomeFeed, error) {
	feed := &HomeFeed{Errors: make(map[string]error)}
	var mu sync.Mutex
	fail := func(section string, err error) {
		mu.Lock()
		feed.Errors[section] = err
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		cities, err := s.Cities(ctx)
		if err != nil {
			fail(SectionCities, err)
			return nil
		}
		feed.Cities = cities
		return nil
	})
	g.Go(func() error {
		categories, err := s.Categories(ctx)
		if err != nil {
			fail(SectionCategories, err)
			return nil
		}
		feed.Categories = categories
		return nil
	})
	g.Go(func() error {
		featured, err := s.catalog.Load(ctx, CatalogFilter{FeaturedOnly: true, Limit: DefaultFeaturedLimit})
		if err != nil {
			fail(SectionFeatured, err)
			return nil
		}
		feed.Featured = featured
		return nil
	})
	g.Go(func() error {
		upcoming, err := s.catalog.Load(ctx, CatalogFilter{CityID: cityID, Upcoming: true, Limit: DefaultUpcomingLimit})
		if err != nil {
			fail(SectionUpcoming, err)
			return nil
		}
		feed.Upcoming = upcoming
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return feed, nil
}

func (s *homeService) Cities(ctx context.Context) ([]models.City, error) {
	cities, err := s.refs.ListCities(ctx)
	if err != nil {
		return nil, fetchErr("cities", err)
	}
	return cities, nil
}

func (s *homeService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.refs.ListCategories(ctx)
	if err != nil {
		return nil, fetchErr("categories", err)
	}
	return categories, nil
}
