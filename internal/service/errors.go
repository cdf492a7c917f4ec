package service

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("user already registered")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// RemoteFetchError is a failed read against the store.
type RemoteFetchError struct {
	Op  string
	Err error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// RemoteWriteError is a failed insert, update, delete or upsert.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// AuthError is a sign-in or sign-up rejected by the auth provider.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

func fetchErr(op string, err error) error {
	return &RemoteFetchError{Op: op, Err: err}
}

func writeErr(op string, err error) error {
	return &RemoteWriteError{Op: op, Err: err}
}

func authErr(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}
