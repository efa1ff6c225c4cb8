// Package entitlement keeps track of which learners hold premium access.
//
// A grant is a server-side record: it is only written by a simulated upgrade,
// a verified checkout session, or an operator. The unsigned browser flag
// (ClientFlagKey) is only honoured when the application runs in client mode.
package entitlement

import (
	"context"
	"errors"
	"time"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

// Grant sources
const (
	SourceSimulated = "simulated"
	SourceCheckout  = "checkout"
	SourceAdmin     = "admin"
)

// ClientFlagKey is the name of the browser-held premium flag.
const ClientFlagKey = "isPremium"

var ErrNotFound = errors.New("entitlement not found")

type Entitlement struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Source    string    `json:"source" db:"source"`
	Reference string    `json:"reference,omitempty" db:"reference"` // e.g. checkout session id
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`         // UTC
}

type (
	Repository interface {
		GetEntitlement(ctx context.Context, userID string) (Entitlement, error)
		// CreateEntitlement stores ent unless userID already holds a grant, in which case
		// the stored grant is returned and created is false.
		CreateEntitlement(ctx context.Context, ent Entitlement) (stored Entitlement, created bool, err error)
		DeleteEntitlement(ctx context.Context, userID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if _, err := svc.repo.GetEntitlement(ctx, userID); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Get(ctx context.Context, userID string) (Entitlement, error) {
	return svc.repo.GetEntitlement(ctx, userID)
}

// Grant gives premium access to userID. An existing grant is kept as is.
// Of several concurrent grants for the same user, exactly one reports created.
func (svc *Service) Grant(ctx context.Context, userID, source string, reference ...string) (Entitlement, bool, error) {
	ent := Entitlement{UserID: userID, Source: source, GrantedAt: core.NowFunc()}
	if len(reference) > 0 {
		ent.Reference = reference[0]
	}
	return svc.repo.CreateEntitlement(ctx, ent)
}

func (svc *Service) Revoke(ctx context.Context, userID string) error {
	return svc.repo.DeleteEntitlement(ctx, userID)
}

// ParseClientFlag reads the browser-held flag. Only the exact value "true" unlocks premium.
func ParseClientFlag(value string) bool {
	return value == "true"
}
