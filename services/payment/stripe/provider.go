// Package stripepay creates Stripe Checkout sessions and verifies Stripe webhooks.
package stripepay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
)

const Name = "stripe"

const eventCheckoutCompleted = "checkout.session.completed"

type Provider struct {
	client        *session.Client
	webhookSecret string
}

var _ payment.Provider = (*Provider)(nil)

// New returns a provider talking to the given backend. A nil backend means the live Stripe API.
func New(secretKey, webhookSecret string, backend stripe.Backend) *Provider {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &Provider{
		client:        &session.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientReference),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx

	s, err := p.client.New(params)
	if err != nil {
		return payment.CheckoutSession{}, errors.Wrap(err, "stripe: creating checkout session")
	}
	return toCheckoutSession(s), nil
}

func (p *Provider) GetCheckoutSession(ctx context.Context, id string) (payment.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.client.Get(id, params)
	if err != nil {
		var sErr *stripe.Error
		if errors.As(err, &sErr) && sErr.HTTPStatusCode == http.StatusNotFound {
			return payment.CheckoutSession{}, payment.ErrNotFound
		}
		return payment.CheckoutSession{}, errors.Wrap(err, "stripe: retrieving checkout session")
	}
	return toCheckoutSession(s), nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts completed checkouts.
func (p *Provider) ParseWebhook(payload []byte, signature string) (*payment.CheckoutSession, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Wrap(payment.ErrBadSignature, err.Error())
	}
	if string(event.Type) != eventCheckoutCompleted {
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, errors.Wrap(err, "stripe: decoding checkout session")
	}
	cs := toCheckoutSession(&s)
	return &cs, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) payment.CheckoutSession {
	cs := payment.CheckoutSession{
		ID:              s.ID,
		URL:             s.URL,
		ClientReference: s.ClientReferenceID,
		CustomerEmail:   s.CustomerEmail,
	}
	switch s.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		cs.Paid = true
	}
	if cs.CustomerEmail == "" && s.CustomerDetails != nil {
		cs.CustomerEmail = s.CustomerDetails.Email
	}
	return cs
}
