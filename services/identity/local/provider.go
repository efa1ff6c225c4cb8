// Package localidp is the in-process identity provider backed by the users table.
package localidp

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

const Name = "local"

type Provider struct {
	usrSvc  *user.Service
	mailSvc core.EmailService
}

var _ identity.Provider = (*Provider)(nil)

func NewProvider(usrSvc *user.Service, mailSvc core.EmailService) *Provider {
	return &Provider{usrSvc: usrSvc, mailSvc: mailSvc}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) SignUp(ctx context.Context, req identity.SignUpRequest) (identity.Identity, error) {
	usr, err := p.usrSvc.Create(ctx, user.NewUser{Email: req.Email, Phone: req.Phone, Password: req.Password})
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) && errors.Is(vErr.Err, user.ErrEmailExists) {
			return identity.Identity{}, identity.ErrUserExists
		}
		return identity.Identity{}, errors.Wrap(err, "creating user")
	}

	p.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Welcome aboard!",
		TemplateName: "welcome",
		TemplateData: map[string]string{"Name": usr.DisplayName()},
	})
	return toIdentity(usr), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (identity.Identity, error) {
	usr, err := p.usrSvc.Authenticate(ctx, email, password)
	switch errors.Cause(err) {
	case nil:
		return toIdentity(usr), nil
	case user.ErrNotFound, user.ErrInvalidPassword:
		return identity.Identity{}, identity.ErrInvalidCredentials
	case user.ErrInactive:
		return identity.Identity{}, identity.ErrAccountDisabled
	default:
		return identity.Identity{}, errors.Wrap(err, "authenticating user")
	}
}

// SignOut has nothing to revoke: sessions are held by the application.
func (p *Provider) SignOut(context.Context, identity.Identity) error { return nil }

func toIdentity(usr user.User) identity.Identity {
	return identity.Identity{
		ID:        usr.ID,
		Email:     usr.Email,
		Phone:     usr.Phone,
		CreatedAt: usr.CreatedAt,
	}
}
