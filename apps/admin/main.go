package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	logsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/logger"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/database"
	sqlxrepos "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/sqlx"
)

const openTimeout = 30 * time.Second

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewZapLogger("admin", conf.Debug)
	defer func() { _ = logger.Sync() }()

	if conf.Database.Engine == database.Memory {
		logger.Fatal("admin needs a persistent database: set DATABASE_ENGINE to sqlite or postgres")
	}

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	db, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db)),
		entSvc:   entitlement.NewService(sqlxrepos.NewEntitlementRepository(db)),
		validate: validate,
	}
	if err := cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
