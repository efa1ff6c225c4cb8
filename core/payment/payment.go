// Package payment starts hosted checkouts for the premium plan and turns paid
// checkout sessions into entitlements.
package payment

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

// SessionIDPlaceholder is replaced by the provider with the checkout session id
// when redirecting to the success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

var (
	ErrCheckoutFailed = errors.New("failed to create checkout session")
	ErrNotFound       = errors.New("checkout session not found")
	ErrNotPaid        = errors.New("checkout session is not paid")
	ErrNotOwner       = errors.New("checkout session belongs to another user")
	ErrUnknownPrice   = errors.New("unknown price")
	ErrBadSignature   = errors.New("invalid webhook signature")
)

type (
	CheckoutRequest struct {
		PriceID         string
		SuccessURL      string
		CancelURL       string
		CustomerEmail   string
		ClientReference string // user id
	}

	CheckoutSession struct {
		ID              string
		URL             string
		Paid            bool
		ClientReference string
		CustomerEmail   string
	}

	Provider interface {
		Name() string
		CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
		GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
		// ParseWebhook verifies a provider notification. It returns nil, nil for
		// events that do not complete a checkout.
		ParseWebhook(payload []byte, signature string) (*CheckoutSession, error)
	}

	Service struct {
		conf     *core.Config
		provider Provider
		entSvc   *entitlement.Service
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	conf *core.Config,
	provider Provider,
	entSvc *entitlement.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{conf: conf, provider: provider, entSvc: entSvc, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Provider() Provider { return svc.provider }

func (svc *Service) SuccessURL() string {
	return svc.conf.BaseURL + "/dashboard?success=true&session_id=" + SessionIDPlaceholder
}

func (svc *Service) CancelURL() string {
	return svc.conf.BaseURL + "/dashboard?canceled=true"
}

// StartCheckout creates a hosted checkout for the premium price. priceID may be
// empty; any other value than the configured price is rejected.
func (svc *Service) StartCheckout(ctx context.Context, sess session.Session, priceID ...string) (CheckoutSession, error) {
	price := svc.conf.Payment.PremiumPriceID
	if len(priceID) > 0 && priceID[0] != "" && priceID[0] != price {
		return CheckoutSession{}, core.NewValidationError(ErrUnknownPrice, core.FieldError{Field: "priceId", Error: ErrUnknownPrice.Error()})
	}

	cs, err := svc.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:         price,
		SuccessURL:      svc.SuccessURL(),
		CancelURL:       svc.CancelURL(),
		CustomerEmail:   sess.Email,
		ClientReference: sess.UserID,
	})
	if err != nil {
		svc.logger.Error(err.Error(), err, sess)
		return CheckoutSession{}, ErrCheckoutFailed
	}
	return cs, nil
}

// Confirm grants premium to userID once the checkout session it returned from is paid.
func (svc *Service) Confirm(ctx context.Context, userID, checkoutID string) (entitlement.Entitlement, error) {
	if checkoutID == "" {
		return entitlement.Entitlement{}, ErrNotFound
	}
	cs, err := svc.provider.GetCheckoutSession(ctx, checkoutID)
	if err != nil {
		return entitlement.Entitlement{}, err
	}
	if cs.ClientReference != userID {
		return entitlement.Entitlement{}, ErrNotOwner
	}
	return svc.Complete(ctx, cs)
}

// Complete records a paid checkout session. Completing the same session twice is a no-op.
func (svc *Service) Complete(ctx context.Context, cs CheckoutSession) (entitlement.Entitlement, error) {
	if !cs.Paid {
		return entitlement.Entitlement{}, ErrNotPaid
	}
	if cs.ClientReference == "" {
		return entitlement.Entitlement{}, ErrNotOwner
	}

	ent, created, err := svc.entSvc.Grant(ctx, cs.ClientReference, entitlement.SourceCheckout, cs.ID)
	if err != nil {
		return entitlement.Entitlement{}, errors.Wrap(err, "granting entitlement")
	}
	if created {
		svc.logger.Info("premium granted", map[string]interface{}{"user_id": cs.ClientReference, "checkout": cs.ID})
		if cs.CustomerEmail != "" {
			svc.mailSvc.SendMessages(&core.EmailMessage{
				To:           []mail.Address{{Address: cs.CustomerEmail}},
				Subject:      "Premium activated",
				TemplateName: "premium_activated",
				TemplateData: map[string]string{"Name": core.EmailLocalPart(cs.CustomerEmail)},
			})
		}
	}
	return ent, nil
}

// HandleWebhook verifies a provider notification and completes the checkout it reports.
// It reports false for events that are ignored.
func (svc *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (bool, error) {
	cs, err := svc.provider.ParseWebhook(payload, signature)
	if err != nil {
		return false, err
	}
	if cs == nil {
		return false, nil
	}
	if _, err := svc.Complete(ctx, *cs); err != nil {
		return false, err
	}
	return true, nil
}
