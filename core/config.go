package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Address         string
		DebugAddress    string
		Host            string
		ShutdownTimeout time.Duration
	}

	sessionConfig struct {
		Lifetime   time.Duration
		CookieName string
		Secure     bool
		Store      string // memory | redis
	}

	redisConfig struct {
		Address  string
		Password string
		DB       int
	}

	databaseConfig struct {
		Engine     string // memory | sqlite | postgres
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
		Path       string // sqlite file
	}

	identityConfig struct {
		Provider     string // local | oidc
		Issuer       string
		ClientID     string
		ClientSecret string
	}

	paymentConfig struct {
		Provider            string // simulated | stripe
		StripeSecretKey     string
		StripeWebhookSecret string
		PremiumPriceID      string
	}

	premiumConfig struct {
		Source          string // server | client
		SimulateUpgrade bool
	}

	roadmapConfig struct {
		StepInterval        time.Duration
		PremiumStepInterval time.Duration
		RevealDelay         time.Duration
	}

	Config struct {
		AppName          string
		Build            string
		Env              string
		Debug            bool
		TestMode         bool
		SecretKey        string
		BaseURL          string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Server   serverConfig
		Session  sessionConfig
		Redis    redisConfig
		Database databaseConfig
		Identity identityConfig
		Payment  paymentConfig
		Premium  premiumConfig
		Roadmap  roadmapConfig
	}
)

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
}

// ClientPremium reports whether premium is read from the unsigned browser flag.
func (conf *Config) ClientPremium() bool {
	return conf.Premium.Source == "client"
}

func (db databaseConfig) Address() string {
	return db.Host + ":" + db.Port
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Instructly")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "k2#v!9aq%d7w+0z$relmx8)fu=4b(nj&c1y^s6tgo5hpi@e3")
	v.SetDefault("baseURL", "http://localhost:8000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("server.address", "0.0.0.0:8000")
	v.SetDefault("server.debugAddress", "0.0.0.0:4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("session.lifetime", 7*24*time.Hour)
	v.SetDefault("session.cookieName", "instructly_session")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.store", "memory")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "instructly")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "instructly.db")

	v.SetDefault("identity.provider", "local")
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.clientID", "")
	v.SetDefault("identity.clientSecret", "")

	v.SetDefault("payment.provider", "simulated")
	v.SetDefault("payment.stripeSecretKey", "")
	v.SetDefault("payment.stripeWebhookSecret", "")
	v.SetDefault("payment.premiumPriceID", "price_premium_monthly")

	v.SetDefault("premium.source", "server")
	v.SetDefault("premium.simulateUpgrade", true)

	v.SetDefault("roadmap.stepInterval", 1500*time.Millisecond)
	v.SetDefault("roadmap.premiumStepInterval", 2000*time.Millisecond)
	v.SetDefault("roadmap.revealDelay", 1000*time.Millisecond)
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed by the upper-cased env name, e.g. DEV_DATABASE_ENGINE.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(cwd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		BaseURL:          strings.TrimRight(v.GetString("baseURL"), "/"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: serverConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Session: sessionConfig{
			Lifetime:   v.GetDuration("session.lifetime"),
			CookieName: v.GetString("session.cookieName"),
			Secure:     v.GetBool("session.secure"),
			Store:      v.GetString("session.store"),
		},
		Redis: redisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: databaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
			Path:       v.GetString("database.path"),
		},
		Identity: identityConfig{
			Provider:     v.GetString("identity.provider"),
			Issuer:       v.GetString("identity.issuer"),
			ClientID:     v.GetString("identity.clientID"),
			ClientSecret: v.GetString("identity.clientSecret"),
		},
		Payment: paymentConfig{
			Provider:            v.GetString("payment.provider"),
			StripeSecretKey:     v.GetString("payment.stripeSecretKey"),
			StripeWebhookSecret: v.GetString("payment.stripeWebhookSecret"),
			PremiumPriceID:      v.GetString("payment.premiumPriceID"),
		},
		Premium: premiumConfig{
			Source:          v.GetString("premium.source"),
			SimulateUpgrade: v.GetBool("premium.simulateUpgrade"),
		},
		Roadmap: roadmapConfig{
			StepInterval:        v.GetDuration("roadmap.stepInterval"),
			PremiumStepInterval: v.GetDuration("roadmap.premiumStepInterval"),
			RevealDelay:         v.GetDuration("roadmap.revealDelay"),
		},
	}
}

// NewTestConfig returns a configuration suited for tests: in-memory storage and instant roadmap steps.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.BaseURL = "http://example.com"
	conf.Session.Store = "memory"
	conf.Database.Engine = "memory"
	conf.Identity.Provider = "local"
	conf.Payment.Provider = "simulated"
	conf.Roadmap.StepInterval = time.Millisecond
	conf.Roadmap.PremiumStepInterval = time.Millisecond
	conf.Roadmap.RevealDelay = time.Millisecond
	return conf
}
