package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/Eursukkul/bitboletos/internal/middleware"
	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/query"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/Eursukkul/bitboletos/internal/session"
	"github.com/labstack/echo/v4"
)

// --- Mock CatalogService ---

type mockCatalogService struct {
	searchFn func(ctx context.Context, filter service.CatalogFilter, text string, key query.SortKey) (service.SearchResult, error)
	getFn    func(ctx context.Context, id string) (*models.Event, error)
	createFn func(ctx context.Context, event *models.Event) error
}

func (m *mockCatalogService) Load(ctx context.Context, filter service.CatalogFilter) ([]models.Event, error) {
	return nil, nil
}
func (m *mockCatalogService) Snapshot(filter service.CatalogFilter) ([]models.Event, bool) {
	return nil, false
}
func (m *mockCatalogService) Get(ctx context.Context, id string) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockCatalogService) Search(ctx context.Context, filter service.CatalogFilter, text string, key query.SortKey) (service.SearchResult, error) {
	return m.searchFn(ctx, filter, text, key)
}
func (m *mockCatalogService) CreateEvent(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}

// --- Mock HomeService ---

type mockHomeService struct {
	loadFn       func(ctx context.Context, cityID string) (*service.HomeFeed, error)
	citiesFn     func(ctx context.Context) ([]models.City, error)
	categoriesFn func(ctx context.Context) ([]models.Category, error)
}

func (m *mockHomeService) Load(ctx context.Context, cityID string) (*service.HomeFeed, error) {
	return m.loadFn(ctx, cityID)
}
func (m *mockHomeService) Cities(ctx context.Context) ([]models.City, error) {
	return m.citiesFn(ctx)
}
func (m *mockHomeService) Categories(ctx context.Context) ([]models.Category, error) {
	return m.categoriesFn(ctx)
}

// --- Mock FavoriteService ---

type mockFavoriteService struct {
	toggleFn     func(ctx context.Context, userID, eventID string) (bool, error)
	isFavoriteFn func(ctx context.Context, userID, eventID string) (bool, error)
	listFn       func(ctx context.Context, userID string) ([]models.Favorite, error)
}

func (m *mockFavoriteService) Toggle(ctx context.Context, userID, eventID string) (bool, error) {
	return m.toggleFn(ctx, userID, eventID)
}
func (m *mockFavoriteService) IsFavorite(ctx context.Context, userID, eventID string) (bool, error) {
	return m.isFavoriteFn(ctx, userID, eventID)
}
func (m *mockFavoriteService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return m.listFn(ctx, userID)
}
func (m *mockFavoriteService) Recount(ctx context.Context, eventID string) (int64, error) {
	return 0, nil
}

// --- Mock AuthService ---

type mockAuthService struct {
	signUpFn  func(ctx context.Context, email, password string) (*service.AuthResult, error)
	verifyFn  func(ctx context.Context, token string) error
	signInFn  func(ctx context.Context, email, password string) (*service.AuthResult, error)
	signOutFn func(ctx context.Context, token string) error
	sessionFn func(ctx context.Context, token string) (*session.Session, error)
	refreshFn func(ctx context.Context, token string) (*session.Session, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.signUpFn(ctx, email, password)
}
func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.verifyFn(ctx, token)
}
func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.signInFn(ctx, email, password)
}
func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	return m.signOutFn(ctx, token)
}
func (m *mockAuthService) Session(ctx context.Context, token string) (*session.Session, error) {
	return m.sessionFn(ctx, token)
}
func (m *mockAuthService) Refresh(ctx context.Context, token string) (*session.Session, error) {
	return m.refreshFn(ctx, token)
}

// --- Mock ProfileService ---

type mockProfileService struct {
	getFn    func(ctx context.Context, userID string) (*models.UserProfile, error)
	upsertFn func(ctx context.Context, userID, name, city string) (*models.UserProfile, error)
}

func (m *mockProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return m.getFn(ctx, userID)
}
func (m *mockProfileService) Upsert(ctx context.Context, userID, name, city string) (*models.UserProfile, error) {
	return m.upsertFn(ctx, userID, name, city)
}
func (m *mockProfileService) IsAdmin(ctx context.Context, userID string) bool { return false }

// --- Mock TicketService ---

type mockTicketService struct {
	listFn func(ctx context.Context, userID string, upcoming bool) ([]models.Ticket, error)
}

func (m *mockTicketService) List(ctx context.Context, userID string, upcoming bool) ([]models.Ticket, error) {
	return m.listFn(ctx, userID, upcoming)
}

// --- Helpers ---

const testEventID = "7b0f8a52-3c1e-4c55-9d7e-2f7a1e0b9c11"

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func signedIn(c echo.Context, userID string) {
	middleware.SetSession(c, &session.Session{ID: "sess-1", UserID: userID, Role: "user"})
}
