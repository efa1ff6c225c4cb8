package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/database"
	sqlxrepos "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/sqlx"
	"github.com/Bhaskar-J-Pathak/Acad-AI/testutil"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)
	validate, _ := testutil.NewValidator()

	// start CLI
	return &commandLine{
		db:       db,
		usrSvc:   user.NewService(usrRepo),
		entSvc:   entitlement.NewService(sqlxrepos.NewEntitlementRepository(db)),
		validate: validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantFields []string // validation errors
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) {
		if pwd == "" {
			return nil, nil
		}
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantFields != nil:
		var vErrs validator.ValidationErrors
		require.True(t, errors.As(err, &vErrs), "not a validation error: %v", err)
		flds := make([]string, 0, len(vErrs))
		for _, fErr := range vErrs {
			flds = append(flds, fErr.StructField())
		}
		assert.Equal(t, tt.wantFields, flds)
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantErrStr), "error %q, want prefix %q", err, tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_root(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(tt.args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	runMigrationsFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "certificates", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(tt.args))
		})
	}
}

func Test_commandLine_migrate_embedded(t *testing.T) {
	cli := setup(t)
	runMigrationsFunc = database.RunMigrations

	for _, args := range [][]string{{"migrate", "status"}, {"migrate", "down"}, {"migrate", "up"}} {
		require.NoError(t, cli.run(args), args)
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()
	existing := testutil.CreateUser(t, usrRepo, "ada@example.com", "secret123", false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "--email", "bob@example.com"}, wantErr: errHelp},
		{name: "invalid email", args: []string{"adduser", "--email", "bob"}, extra: extra{pwd: "secret123"}, wantFields: []string{"Email"}},
		{name: "short password", args: []string{"adduser", "--email", "bob@example.com"}, extra: extra{pwd: "abc"}, wantFields: []string{"Password"}},
		{name: "new user", args: []string{"adduser", "--email", " Bob@Example.com", "--phone", "+919876543210"}, extra: extra{pwd: "secret123"}},
		{name: "existing user", args: []string{"adduser", "--email", existing.Email}, extra: extra{pwd: "another123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)
			checkErr(t, tt, cli.run(tt.args))
		})
	}

	bob, err := usrRepo.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, bob.IsActive)
	assert.Equal(t, "+919876543210", bob.Phone)
	assert.NoError(t, bob.CheckPassword("secret123"))

	ada, err := usrRepo.GetUserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.True(t, ada.IsActive)
	assert.NoError(t, ada.CheckPassword("another123"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "awe@test.cd", "mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "--email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "--email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "--email", usr.Email}, extra: extra{pwd: "lmao"}},
		{name: "reset with mixed case email", args: []string{"resetpassword", "--email", "AWE@test.cd"}, extra: extra{pwd: "lmfao"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)

			err := cli.run(tt.args)
			checkErr(t, tt, err)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				require.NoError(t, err)
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_premium(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "ada@example.com", "secret123", true)

	run := func(t *testing.T, args ...string) string {
		var out bytes.Buffer
		root := cli.rootCmd()
		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	tests := []cliTest{
		{name: "no action", args: []string{"premium", "--email", usr.Email}, wantErrStr: "accepts 1 arg(s), received 0"},
		{name: "unknown action", args: []string{"premium", "upgrade", "--email", usr.Email}, wantErrStr: `invalid argument "upgrade"`},
		{name: "no email", args: []string{"premium", "grant"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"premium", "grant", "--email", "bob@example.com"}, wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(tt.args))
		})
	}

	assert.Equal(t, "ada@example.com: free\n", run(t, "premium", "status", "--email", usr.Email))
	assert.Equal(t, "ada@example.com is now premium\n", run(t, "premium", "grant", "--email", usr.Email))
	assert.Contains(t, run(t, "premium", "grant", "--email", usr.Email), "is already premium (admin since ")
	assert.Contains(t, run(t, "premium", "status", "--email", "ADA@example.com"), "ada@example.com: premium (admin since ")

	ok, err := cli.entSvc.IsPremium(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "ada@example.com is no longer premium\n", run(t, "premium", "revoke", "--email", usr.Email))
	assert.Equal(t, "ada@example.com: free\n", run(t, "premium", "status", "--email", usr.Email))
}
