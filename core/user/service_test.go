package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	inmemdb "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/inmem"
	"github.com/Bhaskar-J-Pathak/Acad-AI/testutil"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	return user.NewService(repo), repo
}

func TestService_Create(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "taken@example.com", "secret123", true)

	usr, err := svc.Create(ctx, user.NewUser{Email: " Ada@Example.com ", Phone: "+1 555 0100 200", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "ada@example.com", usr.Email)
	assert.Equal(t, "+1 555 0100 200", usr.Phone)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("secret123"))

	_, err = svc.Create(ctx, user.NewUser{Email: "taken@example.com", Password: "secret123"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []core.FieldError{{Field: "email", Error: user.ErrEmailExists.Error()}}, vErr.Fields)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	active := testutil.CreateUser(t, repo, "ada@example.com", "secret123", true)
	testutil.CreateUser(t, repo, "gone@example.com", "secret123", false)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "lol@example.com", pwd: "secret123", wantErr: user.ErrNotFound},
		{name: "wrong password", email: "ada@example.com", pwd: "lolilol", wantErr: user.ErrInvalidPassword},
		{name: "inactive", email: "gone@example.com", pwd: "secret123", wantErr: user.ErrInactive},
		{name: "case insensitive email", email: " ADA@example.com", pwd: "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, usr.ID)
			assert.False(t, usr.LastLogin.IsZero())
		})
	}
}

func TestService_SetPasswordAndActive(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "ada@example.com", "secret123", true)

	usr, err := svc.SetPassword(ctx, usr, "n3w-secret")
	require.NoError(t, err)
	refreshed, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("n3w-secret"))

	_, err = svc.SetActive(ctx, refreshed, false)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ada@example.com", "n3w-secret")
	assert.Equal(t, user.ErrInactive, err)

	require.NoError(t, svc.Delete(ctx, usr.ID))
	_, err = svc.GetByEmail(ctx, "ada@example.com")
	assert.Equal(t, user.ErrNotFound, err)
}
