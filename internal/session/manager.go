// Package session holds the authenticated-user context of the service. One
// Manager is built in main and handed to everything that needs to know who
// is signed in; interested parties subscribe to session changes instead of
// polling.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type ChangeKind string

const (
	SignedIn       ChangeKind = "signed_in"
	SignedOut      ChangeKind = "signed_out"
	TokenRefreshed ChangeKind = "token_refreshed"
)

type Identity struct {
	UserID string
	Email  string
	Role   string
}

type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessToken string    `json:"-"`
}

func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

type Change struct {
	Kind    ChangeKind
	Session Session
}

type Listener func(Change)

type Manager struct {
	store  Keystore
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func NewManager(store Keystore, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:     store,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for every session change and returns the function
// that removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) Create(ctx context.Context, id Identity) (*Session, error) {
	now := m.now().UTC().Truncate(time.Second)
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	m.notify(SignedIn, s)
	return s, nil
}

// Current resolves a bearer token to its live session.
func (m *Manager) Current(ctx context.Context, token string) (*Session, error) {
	claims, err := parseToken(m.secret, token, m.now())
	if err != nil {
		return nil, err
	}

	raw, err := m.store.Get(ctx, key(claims.ID))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.AccessToken = token
	return &s, nil
}

// Refresh replaces the session behind token with a new one for the same
// user. The old token stops resolving once the new session is stored.
func (m *Manager) Refresh(ctx context.Context, token string) (*Session, error) {
	s, err := m.Current(ctx, token)
	if err != nil {
		return nil, err
	}
	oldID := s.ID

	now := m.now().UTC().Truncate(time.Second)
	s.ID = uuid.NewString()
	s.IssuedAt = now
	s.ExpiresAt = now.Add(m.ttl)
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, key(oldID)); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	m.notify(TokenRefreshed, s)
	return s, nil
}

// Revoke ends the session behind token. Revoking an unknown session is not
// an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	s, err := m.Current(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := m.store.Delete(ctx, key(s.ID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.notify(SignedOut, s)
	return nil
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	token, err := signToken(m.secret, s)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	s.AccessToken = token

	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, key(s.ID), string(body), m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (m *Manager) notify(kind ChangeKind, s *Session) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()

	change := Change{Kind: kind, Session: *s}
	change.Session.AccessToken = ""
	for _, fn := range listeners {
		fn(change)
	}
	log.Printf("[Session] %s user=%s session=%s", kind, s.UserID, s.ID)
}

func key(sessionID string) string {
	return "session:" + sessionID
}
