package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/pkg/rabbitmq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToggle_InsertsThenDeletes(t *testing.T) {
	favs := newMemFavoriteRepo()
	pub := &fakePublisher{}
	svc := NewFavoriteService(favs, &mockEventRepo{}, pub)
	ctx := context.Background()

	favorited, err := svc.Toggle(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.True(t, favorited)
	assert.Equal(t, 1, favs.size())

	favorited, err = svc.Toggle(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.False(t, favorited)
	assert.Equal(t, 0, favs.size())

	require.Len(t, pub.messages, 2)
	first := pub.messages[0]
	assert.Equal(t, rabbitmq.RoutingFavoriteToggled, first.routingKey)
	msg, ok := first.payload.(models.FavoriteToggled)
	require.True(t, ok)
	assert.True(t, msg.Favorited)
	assert.Equal(t, "event-1", msg.EventID)
}

func TestToggle_RecountsInlineWithoutPublisher(t *testing.T) {
	favs := newMemFavoriteRepo()
	var counted int64 = -1
	events := &mockEventRepo{
		updateCountFn: func(ctx context.Context, eventID string, count int64) error {
			counted = count
			return nil
		},
	}
	svc := NewFavoriteService(favs, events, nil)

	_, err := svc.Toggle(context.Background(), "user-1", "event-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counted)

	_, err = svc.Toggle(context.Background(), "user-2", "event-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counted)
}

func TestToggle_RecountsInlineWhenPublishFails(t *testing.T) {
	favs := newMemFavoriteRepo()
	recounted := false
	events := &mockEventRepo{
		updateCountFn: func(ctx context.Context, eventID string, count int64) error {
			recounted = true
			return nil
		},
	}
	svc := NewFavoriteService(favs, events, &fakePublisher{err: errors.New("channel closed")})

	favorited, err := svc.Toggle(context.Background(), "user-1", "event-1")

	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, recounted)
}

func TestToggle_ConvergesWhenRowAlreadyPresent(t *testing.T) {
	favs := newMemFavoriteRepo()
	// Find misses but the insert hits the unique index.
	racing := &racingFavoriteRepo{memFavoriteRepo: favs}
	_, _ = favs.Insert(context.Background(), &models.Favorite{UserID: "user-1", EventID: "event-1"})

	svc := NewFavoriteService(racing, &mockEventRepo{}, &fakePublisher{})
	favorited, err := svc.Toggle(context.Background(), "user-1", "event-1")

	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.Equal(t, 1, favs.size())
}

func TestToggle_RemoteErrors(t *testing.T) {
	ctx := context.Background()

	favs := newMemFavoriteRepo()
	favs.findErr = errBackend
	_, err := NewFavoriteService(favs, &mockEventRepo{}, nil).Toggle(ctx, "u", "e")
	var fetchErr *RemoteFetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, errBackend)

	favs = newMemFavoriteRepo()
	favs.insertErr = errBackend
	_, err = NewFavoriteService(favs, &mockEventRepo{}, nil).Toggle(ctx, "u", "e")
	var writeErr *RemoteWriteError
	assert.True(t, errors.As(err, &writeErr))

	favs = newMemFavoriteRepo()
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "u", EventID: "e"})
	favs.deleteErr = errBackend
	_, err = NewFavoriteService(favs, &mockEventRepo{}, nil).Toggle(ctx, "u", "e")
	assert.True(t, errors.As(err, &writeErr))
	assert.Equal(t, 1, favs.size())
}

func TestToggle_OnlyPublishedEvents(t *testing.T) {
	draft := &models.Event{ID: "draft", IsLive: false}
	events := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Event, error) {
			switch id {
			case "draft":
				return draft, nil
			case "broken":
				return nil, errBackend
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	favs := newMemFavoriteRepo()
	svc := NewFavoriteService(favs, events, &fakePublisher{})
	ctx := context.Background()

	_, err := svc.Toggle(ctx, "user-1", "draft")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Toggle(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Toggle(ctx, "user-1", "broken")
	var fetchErr *RemoteFetchError
	assert.True(t, errors.As(err, &fetchErr))

	assert.Equal(t, 0, favs.size())
	assert.Equal(t, 0, favs.inserts)

	// A favorite made before the event was unpublished can still be removed.
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "user-1", EventID: "draft"})
	favorited, err := svc.Toggle(ctx, "user-1", "draft")
	assert.NoError(t, err)
	assert.False(t, favorited)
	assert.Equal(t, 0, favs.size())
}

func TestList_SkipsUnpublishedEvents(t *testing.T) {
	favs := newMemFavoriteRepo()
	favs.events = map[string]*models.Event{
		"live":  {ID: "live", Title: "Indie Night", IsLive: true},
		"draft": {ID: "draft", Title: "Secret Show", IsLive: false},
	}
	ctx := context.Background()
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "user-1", EventID: "live"})
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "user-1", EventID: "draft"})
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "user-1", EventID: "gone"})

	list, err := NewFavoriteService(favs, &mockEventRepo{}, nil).List(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "live", list[0].EventID)
}

func TestToggle_ConcurrentDoubleTaps(t *testing.T) {
	favs := newMemFavoriteRepo()
	svc := NewFavoriteService(favs, &mockEventRepo{}, &fakePublisher{})

	const taps = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	on := 0
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			favorited, err := svc.Toggle(context.Background(), "user-1", "event-1")
			assert.NoError(t, err)
			if favorited {
				mu.Lock()
				on++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, taps/2, on)
	assert.Equal(t, 0, favs.size())
	assert.Equal(t, taps/2, favs.inserts)
	assert.Equal(t, taps/2, favs.deletes)
}

func TestIsFavorite(t *testing.T) {
	favs := newMemFavoriteRepo()
	svc := NewFavoriteService(favs, &mockEventRepo{}, nil)
	ctx := context.Background()

	ok, err := svc.IsFavorite(ctx, "user-1", "event-1")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "user-1", EventID: "event-1"})
	ok, err = svc.IsFavorite(ctx, "user-1", "event-1")
	assert.NoError(t, err)
	assert.True(t, ok)

	favs.findErr = errBackend
	_, err = svc.IsFavorite(ctx, "user-1", "event-1")
	var fetchErr *RemoteFetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestRecount(t *testing.T) {
	favs := newMemFavoriteRepo()
	ctx := context.Background()
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "a", EventID: "event-1"})
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "b", EventID: "event-1"})
	_, _ = favs.Insert(ctx, &models.Favorite{UserID: "a", EventID: "event-2"})

	var gotID string
	var gotCount int64
	events := &mockEventRepo{
		updateCountFn: func(ctx context.Context, eventID string, count int64) error {
			gotID, gotCount = eventID, count
			return nil
		},
	}
	svc := NewFavoriteService(favs, events, nil)

	n, err := svc.Recount(ctx, "event-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "event-1", gotID)
	assert.Equal(t, int64(2), gotCount)

	events.updateCountFn = func(ctx context.Context, eventID string, count int64) error { return errBackend }
	_, err = svc.Recount(ctx, "event-1")
	var writeErr *RemoteWriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestPairLocks_ReleasesEntries(t *testing.T) {
	locks := newPairLocks()
	unlock := locks.lock("a/b")
	assert.Len(t, locks.locks, 1)
	unlock()
	assert.Len(t, locks.locks, 0)
}

// racingFavoriteRepo reports no row on Find, as if another instance inserted
// it between the read and the write.
type racingFavoriteRepo struct {
	*memFavoriteRepo
}

func (r *racingFavoriteRepo) Find(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	return r.memFavoriteRepo.Find(ctx, "nobody", eventID)
}
