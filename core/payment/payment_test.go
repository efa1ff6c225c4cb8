package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
	emailsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/email"
	logsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/logger"
	simulatedpay "github.com/Bhaskar-J-Pathak/Acad-AI/services/payment/simulated"
	inmemdb "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/inmem"
)

type failingProvider struct {
	*simulatedpay.Provider
}

func (failingProvider) CreateCheckoutSession(context.Context, payment.CheckoutRequest) (payment.CheckoutSession, error) {
	return payment.CheckoutSession{}, errors.New("provider unavailable")
}

// slowRepo widens the window between concurrent grants.
type slowRepo struct {
	entitlement.Repository
}

func (repo slowRepo) GetEntitlement(ctx context.Context, userID string) (entitlement.Entitlement, error) {
	time.Sleep(20 * time.Millisecond)
	return repo.Repository.GetEntitlement(ctx, userID)
}

func (repo slowRepo) CreateEntitlement(ctx context.Context, ent entitlement.Entitlement) (entitlement.Entitlement, bool, error) {
	time.Sleep(20 * time.Millisecond)
	return repo.Repository.CreateEntitlement(ctx, ent)
}

type fixture struct {
	svc      *payment.Service
	provider *simulatedpay.Provider
	entSvc   *entitlement.Service
	mailSvc  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T, provider ...payment.Provider) fixture {
	conf := core.NewTestConfig()
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(logger)

	f := fixture{
		provider: simulatedpay.NewProvider(),
		entSvc:   entitlement.NewService(inmemdb.NewEntitlementRepository(inmemdb.NewDB())),
		mailSvc:  emailsvc.NewConsoleServiceMock(conf, logger),
	}
	var p payment.Provider = f.provider
	if len(provider) > 0 {
		p = provider[0]
	}
	f.svc = payment.NewService(conf, p, f.entSvc, f.mailSvc, logger)
	return f
}

var ada = session.Session{ID: "s1", UserID: "u1", Email: "ada@example.com"}

func TestService_StartCheckout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, "http://example.com/dashboard?success=true&session_id={CHECKOUT_SESSION_ID}", f.svc.SuccessURL())
	assert.Equal(t, "http://example.com/dashboard?canceled=true", f.svc.CancelURL())

	cs, err := f.svc.StartCheckout(ctx, ada)
	require.NoError(t, err)
	assert.NotEmpty(t, cs.ID)
	assert.Equal(t, "http://example.com/dashboard?success=true&session_id="+cs.ID, cs.URL)
	assert.Equal(t, "u1", cs.ClientReference)

	// starting a checkout grants nothing
	ok, err := f.entSvc.IsPremium(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.StartCheckout(ctx, ada, "price_premium_monthly")
	assert.NoError(t, err)

	_, err = f.svc.StartCheckout(ctx, ada, "price_other")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, payment.ErrUnknownPrice, vErr.Err)
}

func TestService_StartCheckout_failure(t *testing.T) {
	f := setup(t, failingProvider{simulatedpay.NewProvider()})
	_, err := f.svc.StartCheckout(context.Background(), ada)
	assert.Equal(t, payment.ErrCheckoutFailed, err)
	assert.Equal(t, "failed to create checkout session", err.Error())
}

func TestService_Confirm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cs, err := f.svc.StartCheckout(ctx, ada)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, "u2", cs.ID)
	assert.Equal(t, payment.ErrNotOwner, err)
	_, err = f.svc.Confirm(ctx, "u1", "cs_unknown")
	assert.Equal(t, payment.ErrNotFound, err)
	_, err = f.svc.Confirm(ctx, "u1", "")
	assert.Equal(t, payment.ErrNotFound, err)

	ent, err := f.svc.Confirm(ctx, "u1", cs.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.SourceCheckout, ent.Source)
	assert.Equal(t, cs.ID, ent.Reference)

	// confirming twice sends a single receipt
	_, err = f.svc.Confirm(ctx, "u1", cs.ID)
	require.NoError(t, err)
	sent := f.mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Hi ada,")
}

func TestService_Complete_unpaid(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Complete(context.Background(), payment.CheckoutSession{ID: "cs_1", ClientReference: "u1"})
	assert.Equal(t, payment.ErrNotPaid, err)
	_, err = f.svc.Complete(context.Background(), payment.CheckoutSession{ID: "cs_1", Paid: true})
	assert.Equal(t, payment.ErrNotOwner, err)
}

func TestService_HandleWebhook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cs, err := f.svc.StartCheckout(ctx, ada)
	require.NoError(t, err)

	handled, err := f.svc.HandleWebhook(ctx, []byte(`{"type":"customer.created","id":"cus_1"}`), "")
	require.NoError(t, err)
	assert.False(t, handled)

	_, err = f.svc.HandleWebhook(ctx, []byte(`{"type":"checkout.session.completed","id":"cs_nope"}`), "")
	assert.Equal(t, payment.ErrNotFound, err)

	handled, err = f.svc.HandleWebhook(ctx, []byte(`{"type":"checkout.session.completed","id":"`+cs.ID+`"}`), "")
	require.NoError(t, err)
	assert.True(t, handled)

	ok, err := f.entSvc.IsPremium(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_Complete_concurrent(t *testing.T) {
	conf := core.NewTestConfig()
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(logger)
	provider := simulatedpay.NewProvider()
	entSvc := entitlement.NewService(slowRepo{inmemdb.NewEntitlementRepository(inmemdb.NewDB())})
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	svc := payment.NewService(conf, provider, entSvc, mailSvc, logger)

	ctx := context.Background()
	started, err := svc.StartCheckout(ctx, ada)
	require.NoError(t, err)
	cs, err := provider.GetCheckoutSession(ctx, started.ID)
	require.NoError(t, err)
	require.True(t, cs.Paid)

	// webhook and checkout return landing together
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Complete(ctx, cs)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, mailSvc.Sent(), 1)
	ent, err := entSvc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, cs.ID, ent.Reference)
}
