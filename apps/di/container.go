// Package di wires the application dependencies in a dig container.
package di

import (
	"context"
	"fmt"
	"log"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoweb "github.com/Bhaskar-J-Pathak/Acad-AI/apps/web/echo"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	emailsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/email"
	localidp "github.com/Bhaskar-J-Pathak/Acad-AI/services/identity/local"
	oidcidp "github.com/Bhaskar-J-Pathak/Acad-AI/services/identity/oidc"
	logsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/logger"
	simulatedpay "github.com/Bhaskar-J-Pathak/Acad-AI/services/payment/simulated"
	stripepay "github.com/Bhaskar-J-Pathak/Acad-AI/services/payment/stripe"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/database"
	inmemdb "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/inmem"
	sqlxrepos "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/sqlx"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/sessionstore"
)

const setupTimeout = 30 * time.Second

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage is provided as a whole: DB is nil with the memory engine.
	Storage struct {
		dig.Out
		DB           *sqlx.DB
		Users        user.Repository
		Entitlements entitlement.Repository
	}

	ServerParams struct {
		dig.In
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		SessionSvc     *session.Service
		EntitlementSvc *entitlement.Service
		PaymentSvc     *payment.Service
		Catalog        *catalog.Catalog
	}
)

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZapLogger("web", conf.Debug), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZapLogger("db", conf.Debug), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)
	return validate
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Engine == database.Memory {
		db := inmemdb.NewDB()
		return Storage{Users: inmemdb.NewUserRepository(db), Entitlements: inmemdb.NewEntitlementRepository(db)}
	}

	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()

		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{DB: db, Users: sqlxrepos.NewUserRepository(db), Entitlements: sqlxrepos.NewEntitlementRepository(db)}
}

func newSessionStore(conf *core.Config, logger core.Logger) session.Store {
	if conf.Session.Store != "redis" {
		return sessionstore.NewMemory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	client, err := sessionstore.NewRedisClient(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}
	return sessionstore.NewRedis(client)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newIdentityProvider(conf *core.Config, usrSvc *user.Service, mailSvc core.EmailService, logger core.Logger) (identity.Provider, error) {
	switch conf.Identity.Provider {
	case localidp.Name:
		return localidp.NewProvider(usrSvc, mailSvc), nil
	case oidcidp.Name:
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		return oidcidp.New(ctx, conf, logger)
	}
	return nil, errors.Errorf("unknown identity provider %q", conf.Identity.Provider)
}

func newPaymentProvider(conf *core.Config) (payment.Provider, error) {
	switch conf.Payment.Provider {
	case simulatedpay.Name:
		return simulatedpay.NewProvider(), nil
	case stripepay.Name:
		return stripepay.New(conf.Payment.StripeSecretKey, conf.Payment.StripeWebhookSecret, nil), nil
	}
	return nil, errors.Errorf("unknown payment provider %q", conf.Payment.Provider)
}

func newServer(p ServerParams) (*echoweb.Server, error) {
	return echoweb.NewServer(&echoweb.Deps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		SessionSvc:     p.SessionSvc,
		EntitlementSvc: p.EntitlementSvc,
		PaymentSvc:     p.PaymentSvc,
		Catalog:        p.Catalog,
	})
}

// New returns a new dependency injection dig.Container.
// newConfig defaults to core.NewConfig.
func New(newConfig ...func() *core.Config) *dig.Container {
	c := dig.New()

	confFunc := core.NewConfig
	if len(newConfig) > 0 {
		confFunc = newConfig[0]
	}

	must(c.Provide(confFunc))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newStorage))
	must(c.Provide(newSessionStore))
	must(c.Provide(newEmailService))
	must(c.Provide(user.NewService))
	must(c.Provide(entitlement.NewService))
	must(c.Provide(newIdentityProvider))
	must(c.Provide(session.NewService))
	must(c.Provide(newPaymentProvider))
	must(c.Provide(payment.NewService))
	must(c.Provide(catalog.Default))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
