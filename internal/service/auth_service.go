package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"github.com/Eursukkul/bitboletos/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Reasons carried by AuthError.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonEmailNotConfirmed  = "email_not_confirmed"
	ReasonUserExists         = "user_already_exists"
	ReasonWeakPassword       = "weak_password"
	ReasonInvalidEmail       = "invalid_email"
	ReasonInvalidToken       = "invalid_token"
	ReasonNoSession          = "session_not_found"
)

type VerificationMailer interface {
	SendVerification(to, token string) error
}

// AuthResult is the outcome of sign-up or sign-in. Session is nil when the
// account still has to confirm its email.
type AuthResult struct {
	User             *models.User
	Session          *session.Session
	VerificationSent bool
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	VerifyEmail(ctx context.Context, token string) error
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*session.Session, error)
	Refresh(ctx context.Context, token string) (*session.Session, error)
}

type authService struct {
	users               repository.UserRepository
	profiles            ProfileService
	sessions            *session.Manager
	mailer              VerificationMailer
	requireVerification bool
	bcryptCost          int
	now                 func() time.Time
}

func NewAuthService(users repository.UserRepository, profiles ProfileService, sessions *session.Manager, mailer VerificationMailer, requireVerification bool) AuthService {
	return &authService{
		users:               users,
		profiles:            profiles,
		sessions:            sessions,
		mailer:              mailer,
		requireVerification: requireVerification,
		bcryptCost:          bcrypt.DefaultCost,
		now:                 time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, authErr(ReasonWeakPassword, ErrWeakPassword)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, authErr(ReasonUserExists, ErrEmailTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fetchErr("user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	if s.requireVerification {
		token := uuid.NewString()
		user.VerificationToken = &token
	} else {
		now := s.now().UTC()
		user.EmailConfirmedAt = &now
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authErr(ReasonUserExists, ErrEmailTaken)
		}
		return nil, writeErr("user", err)
	}

	if s.requireVerification {
		sent := true
		if s.mailer == nil {
			sent = false
		} else if err := s.mailer.SendVerification(email, *user.VerificationToken); err != nil {
			log.Printf("[Auth] verification mail to %s failed: %v", email, err)
			sent = false
		}
		return &AuthResult{User: user, VerificationSent: sent}, nil
	}

	return s.openSession(ctx, user)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return authErr(ReasonInvalidToken, ErrInvalidToken)
	}
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authErr(ReasonInvalidToken, ErrInvalidToken)
		}
		return fetchErr("user", err)
	}
	if err := s.users.Confirm(ctx, user.ID, s.now().UTC()); err != nil {
		return writeErr("user", err)
	}
	return nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authErr(ReasonInvalidCredentials, ErrInvalidCredentials)
		}
		return nil, fetchErr("user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, authErr(ReasonInvalidCredentials, ErrInvalidCredentials)
	}
	if !user.Confirmed() {
		return nil, authErr(ReasonEmailNotConfirmed, ErrEmailNotConfirmed)
	}

	return s.openSession(ctx, user)
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return sessionErr(err)
	}
	return nil
}

func (s *authService) Session(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Current(ctx, token)
	if err != nil {
		return nil, sessionErr(err)
	}
	return sess, nil
}

func (s *authService) Refresh(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Refresh(ctx, token)
	if err != nil {
		return nil, sessionErr(err)
	}
	return sess, nil
}

func (s *authService) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	role := string(models.RoleUser)
	if s.profiles != nil && s.profiles.IsAdmin(ctx, user.ID) {
		role = string(models.RoleAdmin)
	}

	sess, err := s.sessions.Create(ctx, session.Identity{UserID: user.ID, Email: user.Email, Role: role})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Session: sess}, nil
}

func sessionErr(err error) error {
	if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrSessionNotFound) {
		return authErr(ReasonNoSession, err)
	}
	return err
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", authErr(ReasonInvalidEmail, ErrInvalidEmail)
	}
	return email, nil
}
