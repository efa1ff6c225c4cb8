package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
)

type subscriber struct {
	id int
	fn func(Event)
}

// Service holds learner sessions: it signs learners in and out through the
// identity provider and tells subscribers about every change.
type Service struct {
	provider identity.Provider
	store    Store
	validate *validator.Validate
	signer   tokenSigner
	lifetime time.Duration

	mu     sync.RWMutex
	subs   []subscriber
	nextID int
}

func NewService(conf *core.Config, provider identity.Provider, store Store, validate *validator.Validate) *Service {
	return &Service{
		provider: provider,
		store:    store,
		validate: validate,
		signer:   tokenSigner{issuer: conf.AppName, key: []byte(conf.SecretKey)},
		lifetime: conf.Session.Lifetime,
	}
}

func (svc *Service) Provider() identity.Provider { return svc.provider }

// Current returns the live session referenced by token.
func (svc *Service) Current(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}
	claims, err := svc.signer.parse(token)
	if err != nil {
		return Session{}, err
	}
	sess, err := svc.store.Get(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != claims.Subject {
		return Session{}, ErrInvalidToken
	}
	if sess.Expired(core.NowFunc()) {
		_ = svc.store.Delete(ctx, sess.ID)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// SignIn validates req locally, then authenticates against the provider.
func (svc *Service) SignIn(ctx context.Context, req identity.SignInRequest) (Session, string, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Session{}, "", err
	}
	id, err := svc.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return Session{}, "", err
	}
	return svc.open(ctx, id, SignedIn)
}

// SignUp validates req locally, then registers the learner with the provider.
// The new learner is signed in right away.
func (svc *Service) SignUp(ctx context.Context, req identity.SignUpRequest) (Session, string, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Session{}, "", err
	}
	id, err := svc.provider.SignUp(ctx, req)
	if err != nil {
		return Session{}, "", err
	}
	return svc.open(ctx, id, SignedUp)
}

// SignOut revokes the session referenced by token.
func (svc *Service) SignOut(ctx context.Context, token string) error {
	sess, err := svc.Current(ctx, token)
	if err != nil {
		return err
	}
	if err = svc.provider.SignOut(ctx, identity.Identity{ID: sess.UserID, Email: sess.Email}); err != nil {
		return errors.Wrap(err, "signing out from provider")
	}
	if err = svc.store.Delete(ctx, sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	svc.publish(Event{Type: SignedOut, Session: sess})
	return nil
}

// Subscribe registers fn for session changes. Subscribers are called synchronously,
// in subscription order. The returned func cancels the subscription.
func (svc *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.nextID++
	id := svc.nextID
	svc.subs = append(svc.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			for i, sub := range svc.subs {
				if sub.id == id {
					svc.subs = append(svc.subs[:i:i], svc.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (svc *Service) open(ctx context.Context, id identity.Identity, evt EventType) (Session, string, error) {
	now := core.NowFunc()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    id.ID,
		Email:     id.Email,
		Provider:  svc.provider.Name(),
		IssuedAt:  now,
		ExpiresAt: now.Add(svc.lifetime),

		MemberSince: id.CreatedAt,
	}
	token, err := svc.signer.sign(sess)
	if err != nil {
		return Session{}, "", err
	}
	if err = svc.store.Create(ctx, sess); err != nil {
		return Session{}, "", errors.Wrap(err, "storing session")
	}
	svc.publish(Event{Type: evt, Session: sess})
	return sess, token, nil
}

func (svc *Service) publish(evt Event) {
	svc.mu.RLock()
	subs := make([]subscriber, len(svc.subs))
	copy(subs, svc.subs)
	svc.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(evt)
	}
}
