package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"gorm.io/gorm"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn      func(ctx context.Context, event *models.Event) error
	findByIDFn    func(ctx context.Context, id string) (*models.Event, error)
	findLiveFn    func(ctx context.Context, filter repository.EventFilter) ([]models.Event, error)
	updateCountFn func(ctx context.Context, eventID string, count int64) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
// FindByID defaults to a published event so favorite tests only stub it
// when the event itself matters.
func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if m.findByIDFn == nil {
		return &models.Event{ID: id, IsLive: true}, nil
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindLive(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	return m.findLiveFn(ctx, filter)
}
func (m *mockEventRepo) UpdateFavoriteCount(ctx context.Context, eventID string, count int64) error {
	if m.updateCountFn == nil {
		return nil
	}
	return m.updateCountFn(ctx, eventID, count)
}

// --- In-memory FavoriteRepository ---

// memFavoriteRepo keeps one row per (user, event) like the unique index.
// The *Err fields inject failures.
type memFavoriteRepo struct {
	mu   sync.Mutex
	rows map[string]models.Favorite

	findErr   error
	insertErr error
	deleteErr error
	countErr  error

	inserts int
	deletes int

	// events is attached to listed rows by event id.
	events map[string]*models.Event
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{rows: make(map[string]models.Favorite)}
}

func (m *memFavoriteRepo) Find(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	f, ok := m.rows[userID+"/"+eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

func (m *memFavoriteRepo) Insert(ctx context.Context, f *models.Favorite) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return false, m.insertErr
	}
	k := f.UserID + "/" + f.EventID
	if _, ok := m.rows[k]; ok {
		return false, nil
	}
	m.rows[k] = *f
	m.inserts++
	return true, nil
}

func (m *memFavoriteRepo) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	k := userID + "/" + eventID
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	m.deletes++
	return true, nil
}

func (m *memFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Favorite
	for _, f := range m.rows {
		if f.UserID == userID {
			f.Event = m.events[f.EventID]
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFavoriteRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, f := range m.rows {
		if f.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *memFavoriteRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// --- Mock ReferenceRepository ---

type mockReferenceRepo struct {
	citiesFn     func(ctx context.Context) ([]models.City, error)
	categoriesFn func(ctx context.Context) ([]models.Category, error)
}

func (m *mockReferenceRepo) ListCities(ctx context.Context) ([]models.City, error) {
	return m.citiesFn(ctx)
}
func (m *mockReferenceRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return m.categoriesFn(ctx)
}

// --- Mock ProfileRepository ---

type mockProfileRepo struct {
	findFn   func(ctx context.Context, userID string) (*models.UserProfile, error)
	upsertFn func(ctx context.Context, profile *models.UserProfile) error
}

func (m *mockProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	return m.findFn(ctx, userID)
}
func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.UserProfile) error {
	return m.upsertFn(ctx, profile)
}

// --- In-memory UserRepository ---

type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (m *memUserRepo) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == "" {
		u.ID = "user-" + u.Email
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) Confirm(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.EmailConfirmedAt = &at
	u.VerificationToken = nil
	return nil
}

// --- Mock TicketRepository ---

type mockTicketRepo struct {
	findFn func(ctx context.Context, userID string, today time.Time, upcoming bool) ([]models.Ticket, error)
}

func (m *mockTicketRepo) FindByUser(ctx context.Context, userID string, today time.Time, upcoming bool) ([]models.Ticket, error) {
	return m.findFn(ctx, userID, today, upcoming)
}

// --- Fake publisher and mailer ---

type published struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{routingKey: routingKey, payload: payload})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.routingKey
	}
	return out
}

type fakeMailer struct {
	to, token string
	err       error
}

func (m *fakeMailer) SendVerification(to, token string) error {
	m.to, m.token = to, token
	return m.err
}

var errBackend = errors.New("backend unavailable")

// captureLog redirects the standard logger for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}
