package di

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoweb "github.com/Bhaskar-J-Pathak/Acad-AI/apps/web/echo"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/database"
)

func TestNew(t *testing.T) {
	sqlite := func() *core.Config {
		conf := core.NewTestConfig()
		conf.Database.Engine = database.SQLite
		conf.Database.Path = filepath.Join(t.TempDir(), "di.db")
		return conf
	}

	tests := []struct {
		name   string
		conf   func() *core.Config
		wantDB bool
	}{
		{name: "memory", conf: core.NewTestConfig},
		{name: "sqlite", conf: sqlite, wantDB: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.conf)

			err := c.Invoke(func(db *sqlx.DB, usrRepo user.Repository, server *echoweb.Server) {
				if db != nil {
					t.Cleanup(func() { _ = db.Close() })
				}
				assert.Equal(t, tt.wantDB, db != nil)
				assert.NotNil(t, usrRepo)

				rec := httptest.NewRecorder()
				server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			})
			require.NoError(t, err)
		})
	}
}

func TestNewPaymentProvider(t *testing.T) {
	conf := core.NewTestConfig()

	for _, name := range []string{"simulated", "stripe"} {
		conf.Payment.Provider = name
		p, err := newPaymentProvider(conf)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	conf.Payment.Provider = "paypal"
	_, err := newPaymentProvider(conf)
	assert.EqualError(t, err, `unknown payment provider "paypal"`)
}
