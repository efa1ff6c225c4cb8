package localidp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	emailsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/email"
	logsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/logger"
	inmemdb "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/inmem"
	"github.com/Bhaskar-J-Pathak/Acad-AI/testutil"
)

func setup(t *testing.T) (*Provider, user.Repository, *emailsvc.ConsoleServiceMock) {
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(logger)

	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	mailSvc := emailsvc.NewConsoleServiceMock(core.NewTestConfig(), logger)
	return NewProvider(user.NewService(repo), mailSvc), repo, mailSvc
}

func TestProvider_SignUp(t *testing.T) {
	p, repo, mailSvc := setup(t)
	ctx := context.Background()

	id, err := p.SignUp(ctx, identity.SignUpRequest{Email: "ada@example.com", Phone: "+243810000000", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "+243810000000", id.Phone)

	usr, err := repo.GetUserByID(ctx, id.ID)
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("secret123"))

	sent := mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Hi ada,")

	_, err = p.SignUp(ctx, identity.SignUpRequest{Email: "ada@example.com", Password: "secret123"})
	assert.Equal(t, identity.ErrUserExists, err)
}

func TestProvider_SignIn(t *testing.T) {
	p, repo, _ := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "ada@example.com", "secret123", true)
	testutil.CreateUser(t, repo, "gone@example.com", "secret123", false)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown", email: "lol@example.com", pwd: "secret123", wantErr: identity.ErrInvalidCredentials},
		{name: "wrong password", email: "ada@example.com", pwd: "secret124", wantErr: identity.ErrInvalidCredentials},
		{name: "deactivated", email: "gone@example.com", pwd: "secret123", wantErr: identity.ErrAccountDisabled},
		{name: "ok", email: "ada@example.com", pwd: "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := p.SignIn(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, id.ID)
		})
	}
	assert.NoError(t, p.SignOut(ctx, identity.Identity{ID: usr.ID}))
}
