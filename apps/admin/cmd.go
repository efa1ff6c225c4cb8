package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword       // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	usrSvc   *user.Service
	entSvc   *entitlement.Service
	validate *validator.Validate
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Instructly administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.premiumCmd(),
	)
	return root
}

// run executes the command line; args exclude the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

// requireEmail returns the --email flag, showing usage when it is missing.
func requireEmail(cmd *cobra.Command, email string) error {
	if email == "" {
		_ = cmd.Usage()
		return errHelp
	}
	return nil
}
