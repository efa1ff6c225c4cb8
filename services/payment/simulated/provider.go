// Package simulatedpay is a payment provider that settles every checkout at once.
// It keeps no state across restarts and is meant for local development.
package simulatedpay

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
)

const Name = "simulated"

// WebhookPayload is the notification body accepted by ParseWebhook.
type WebhookPayload struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type Provider struct {
	mutex    sync.RWMutex
	sessions map[string]payment.CheckoutSession
}

var _ payment.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{sessions: make(map[string]payment.CheckoutSession)}
}

func (p *Provider) Name() string { return Name }

// CreateCheckoutSession returns a paid session whose URL is the success URL,
// so following it lands the learner directly on the confirmation step.
func (p *Provider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	if req.SuccessURL == "" || req.ClientReference == "" {
		return payment.CheckoutSession{}, errors.New("simulated checkout: missing success url or client reference")
	}

	id := "cs_sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	cs := payment.CheckoutSession{
		ID:              id,
		URL:             strings.ReplaceAll(req.SuccessURL, payment.SessionIDPlaceholder, id),
		Paid:            true,
		ClientReference: req.ClientReference,
		CustomerEmail:   req.CustomerEmail,
	}

	p.mutex.Lock()
	p.sessions[id] = cs
	p.mutex.Unlock()
	return cs, nil
}

func (p *Provider) GetCheckoutSession(_ context.Context, id string) (payment.CheckoutSession, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if cs, ok := p.sessions[id]; ok {
		return cs, nil
	}
	return payment.CheckoutSession{}, payment.ErrNotFound
}

// ParseWebhook accepts an unsigned WebhookPayload referencing a known session.
// A body that does not decode is rejected like a bad signature.
func (p *Provider) ParseWebhook(payload []byte, _ string) (*payment.CheckoutSession, error) {
	var wh WebhookPayload
	if err := json.Unmarshal(payload, &wh); err != nil {
		return nil, errors.Wrap(payment.ErrBadSignature, err.Error())
	}
	if wh.Type != "checkout.session.completed" {
		return nil, nil
	}
	cs, err := p.GetCheckoutSession(context.Background(), wh.ID)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}
