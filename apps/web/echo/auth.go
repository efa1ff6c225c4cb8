package echoweb

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

const (
	contextSessionKey = "session"
	contextTokenKey   = "sessionToken"
	flashCookieName   = "instructly_flash"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

func isAPIRequest(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api/")
}

func requestToken(ctx echo.Context, cookieName string) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := ctx.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// loadSession puts the live session referenced by the request, if any, in the context.
// An unusable session cookie is cleared.
func loadSession(svc *session.Service, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := requestToken(ctx, cookieName)
			if token == "" {
				return next(ctx)
			}

			sess, err := svc.Current(ctx.Request().Context(), token)
			switch errors.Cause(err) {
			case nil:
				ctx.Set(contextSessionKey, sess)
				ctx.Set(contextTokenKey, token)
			case session.ErrNotFound, session.ErrInvalidToken:
				if _, cErr := ctx.Cookie(cookieName); cErr == nil {
					clearCookie(ctx, cookieName)
				}
			default:
				return errors.Wrap(err, "loading session")
			}
			return next(ctx)
		}
	}
}

// requireSession redirects anonymous page visits to the sign-in form.
// API calls get a 401.
func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := contextSession(ctx); ok {
			return next(ctx)
		}
		if isAPIRequest(ctx) {
			return errUnauthorized
		}
		return ctx.Redirect(http.StatusSeeOther, "/auth")
	}
}

// redirectIfAuthed sends signed-in learners to their dashboard.
func redirectIfAuthed(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := contextSession(ctx); ok {
			return ctx.Redirect(http.StatusSeeOther, "/dashboard")
		}
		return next(ctx)
	}
}

func contextSession(ctx echo.Context) (session.Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(session.Session)
	return sess, ok
}

func contextToken(ctx echo.Context) string {
	token, _ := ctx.Get(contextTokenKey).(string)
	return token
}

func setCookie(ctx echo.Context, conf *core.Config, name, value string, expires time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   conf.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func setSessionCookie(ctx echo.Context, conf *core.Config, sess session.Session, token string) {
	setCookie(ctx, conf, conf.Session.CookieName, token, sess.ExpiresAt)
}

// Flash messages, stored by key in a short-lived cookie.
const (
	flashSignedIn  = "signed_in"
	flashSignedUp  = "signed_up"
	flashSignedOut = "signed_out"
	flashPremium   = "premium"
	flashCanceled  = "canceled"
)

var flashMessages = map[string]string{
	flashSignedIn:  "Successfully signed in!",
	flashSignedUp:  "Account created successfully!",
	flashSignedOut: "You have been signed out.",
	flashPremium:   "Welcome to Premium! Every roadmap is now fully unlocked.",
	flashCanceled:  "Checkout canceled. You can upgrade anytime.",
}

func setFlash(ctx echo.Context, conf *core.Config, key string) {
	setCookie(ctx, conf, flashCookieName, key, core.NowFunc().Add(time.Minute))
}

// popFlash returns the pending flash message and clears it.
func popFlash(ctx echo.Context) string {
	cookie, err := ctx.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	clearCookie(ctx, flashCookieName)
	return flashMessages[cookie.Value]
}
