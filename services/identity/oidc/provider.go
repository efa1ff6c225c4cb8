// Package oidcidp signs learners in against a remote OpenID Connect provider
// (e.g. a Keycloak realm) with the resource-owner password grant.
package oidcidp

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
)

const Name = "oidc"

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	logger      core.Logger
}

var _ identity.Provider = (*Provider)(nil)

// New initializes the provider using OIDC discovery on the configured issuer.
func New(ctx context.Context, conf *core.Config, logger core.Logger) (*Provider, error) {
	if conf.Identity.Issuer == "" || conf.Identity.ClientID == "" {
		return nil, errors.New("oidc identity provider: issuer and client id are required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, conf.Identity.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "initializing oidc provider")
	}
	oauthCfg := &oauth2.Config{
		ClientID:     conf.Identity.ClientID,
		ClientSecret: conf.Identity.ClientSecret,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}
	verifier := oidcProvider.Verifier(&oidc.Config{ClientID: conf.Identity.ClientID})
	return NewWithVerifier(oauthCfg, verifier, logger), nil
}

func NewWithVerifier(oauthCfg *oauth2.Config, verifier *oidc.IDTokenVerifier, logger core.Logger) *Provider {
	return &Provider{oauthConfig: oauthCfg, verifier: verifier, logger: logger}
}

func (p *Provider) Name() string { return Name }

// SignUp is handled by the provider's own registration pages.
func (p *Provider) SignUp(context.Context, identity.SignUpRequest) (identity.Identity, error) {
	return identity.Identity{}, identity.ErrSignUpDisabled
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (identity.Identity, error) {
	token, err := p.oauthConfig.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			msg := identity.ErrInvalidCredentials.Message
			if rErr.ErrorDescription != "" {
				msg = rErr.ErrorDescription
			}
			return identity.Identity{}, &identity.Error{Message: msg, Err: err}
		}
		return identity.Identity{}, errors.Wrap(err, "oidc token request")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return identity.Identity{}, errors.New("oidc provider did not return an id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "verifying id_token")
	}

	var claims struct {
		Subject     string `json:"sub"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	if err = idToken.Claims(&claims); err != nil {
		return identity.Identity{}, errors.Wrap(err, "parsing id_token claims")
	}
	if claims.Subject == "" || claims.Email == "" {
		return identity.Identity{}, errors.New("id_token missing required claims")
	}

	p.logger.Debug(fmt.Sprintf("oidc sign in verified for %s", claims.Subject))
	return identity.Identity{
		ID:        claims.Subject,
		Email:     core.CleanString(claims.Email, true /* lower */),
		Phone:     claims.PhoneNumber,
		CreatedAt: idToken.IssuedAt,
	}, nil
}

// SignOut keeps the provider session: the application session is revoked by the caller.
func (p *Provider) SignOut(context.Context, identity.Identity) error { return nil }
