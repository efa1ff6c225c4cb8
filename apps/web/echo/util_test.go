package echoweb_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	logsvc "github.com/Bhaskar-J-Pathak/Acad-AI/services/logger"
	simulatedpay "github.com/Bhaskar-J-Pathak/Acad-AI/services/payment/simulated"
	inmemdb "github.com/Bhaskar-J-Pathak/Acad-AI/storage/database/inmem"
	"github.com/Bhaskar-J-Pathak/Acad-AI/storage/sessionstore"
	"github.com/Bhaskar-J-Pathak/Acad-AI/testutil"
)

type fixture struct {
	app      *echoweb.Server
	conf     *core.Config
	usrRepo  user.Repository
	sessSvc  *session.Service
	entSvc   *entitlement.Service
	mailSvc  *emailsvc.ConsoleServiceMock
	payments *simulatedpay.Provider
}

func setup(t *testing.T, configure ...func(*core.Config)) fixture {
	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(logger)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.NewDB()
	f := fixture{
		conf:     conf,
		usrRepo:  inmemdb.NewUserRepository(db),
		entSvc:   entitlement.NewService(inmemdb.NewEntitlementRepository(db)),
		mailSvc:  emailsvc.NewConsoleServiceMock(conf, logger),
		payments: simulatedpay.NewProvider(),
	}

	// set up services
	provider := localidp.NewProvider(user.NewService(f.usrRepo), f.mailSvc)
	f.sessSvc = session.NewService(conf, provider, sessionstore.NewMemory(), validate)
	cat, err := catalog.Default()
	require.NoError(t, err)

	// set up server
	f.app, err = echoweb.NewServer(&echoweb.Deps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		SessionSvc:     f.sessSvc,
		EntitlementSvc: f.entSvc,
		PaymentSvc:     payment.NewService(conf, f.payments, f.entSvc, f.mailSvc, logger),
		Catalog:        cat,
		DisableReqLogs: true,
	})
	require.NoError(t, err)
	return f
}

// signIn creates a learner and returns a session token for them.
func (f fixture) signIn(t *testing.T, email string) (session.Session, string) {
	testutil.CreateUser(t, f.usrRepo, email, "secret123", true)
	sess, token, err := f.sessSvc.SignIn(context.Background(), identity.SignInRequest{Email: email, Password: "secret123"})
	require.NoError(t, err)
	return sess, token
}

func (f fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

// newPageRequest is a browser request: a form post when form is given, cookies attached.
func newPageRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func sessionCookie(f fixture, token string) *http.Cookie {
	return &http.Cookie{Name: f.conf.Session.CookieName, Value: token}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, location, rec.Header().Get("Location"))
}
