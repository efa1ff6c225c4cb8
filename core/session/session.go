package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is the signed-in state of a learner.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`

	MemberSince time.Time `json:"member_since"` // identity creation date
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions server-side so that signing out revokes the token.
type Store interface {
	Create(ctx context.Context, sess Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type EventType string

const (
	SignedUp  EventType = "signed_up"
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event notifies subscribers of a session change.
type Event struct {
	Type    EventType
	Session Session
}
