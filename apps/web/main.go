package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/Bhaskar-J-Pathak/Acad-AI/apps/di"
	echoweb "github.com/Bhaskar-J-Pathak/Acad-AI/apps/web/echo"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
)

func main() {
	c := di.New()

	must(c.Invoke(func(
		conf *core.Config,
		webLogger core.Logger,
		dbLoggerParam di.DBLoggerParam,
		db *sqlx.DB,
		mailSvc core.EmailService,
		cat *catalog.Catalog,
		server *echoweb.Server,
	) {
		// =========================================================================
		// Initialize App

		webLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		webLogger.Info("Providers", map[string]interface{}{
			"database":       conf.Database.Engine,
			"sessions":       conf.Session.Store,
			"identity":       conf.Identity.Provider,
			"payment":        conf.Payment.Provider,
			"premium_source": conf.Premium.Source,
			"domains":        len(cat.Domains()),
		})

		core.ParseEmailTemplates(webLogger)

		if db != nil {
			dbLogger := dbLoggerParam.Logger
			defer func() {
				if err := db.Close(); err != nil {
					dbLogger.Fatal("Failed to close", err)
				}
			}()
		}
		defer webLogger.Info("Application stopped")

		// let queued receipts and welcome emails go out before exiting
		if waiter, ok := mailSvc.(interface{ Wait() }); ok {
			defer waiter.Wait()
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("payment_provider").Set(conf.Payment.Provider)
		expvar.NewInt("domains").Set(int64(len(cat.Domains())))

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				webLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start Web Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			webLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			webLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				webLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					webLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
