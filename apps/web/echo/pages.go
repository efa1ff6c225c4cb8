package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/roadmap"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

var dashboardTabs = map[string]bool{"home": true, "domains": true, "certificates": true, "profile": true}

type pages struct {
	deps *Deps
}

func registerPages(e *echo.Echo, deps *Deps) {
	h := pages{deps: deps}

	e.GET("/", h.landing)

	ag := e.Group("/auth")
	ag.GET("", h.authForm, redirectIfAuthed)
	ag.POST("/signin", h.signIn, redirectIfAuthed)
	ag.POST("/signup", h.signUp, redirectIfAuthed)
	ag.POST("/signout", h.signOut)

	dg := e.Group("/dashboard", requireSession)
	dg.GET("", h.dashboard)
	dg.GET("/domains/:id", h.domain)
}

func timing(conf *core.Config) roadmap.Timing {
	return roadmap.Timing{
		StepInterval:        conf.Roadmap.StepInterval,
		PremiumStepInterval: conf.Roadmap.PremiumStepInterval,
		RevealDelay:         conf.Roadmap.RevealDelay,
	}
}

// formErrors returns the messages to show inline on a form, if err is one the learner can fix.
func formErrors(err error, deps *Deps) ([]string, bool) {
	if idErr, ok := errors.Cause(err).(*identity.Error); ok {
		return []string{idErr.Message}, true
	}
	flds, ok := core.FieldMessages(err, deps.Translator)
	if !ok {
		return nil, false
	}
	msgs := make([]string, 0, len(flds))
	for _, fld := range flds {
		msgs = append(msgs, fld.Error)
	}
	return msgs, true
}

// Handlers

func (h pages) landing(ctx echo.Context) error {
	p := newPage(ctx, "Your career, mapped", h.deps.Catalog.Domains())
	p.Flash = popFlash(ctx)
	return ctx.Render(http.StatusOK, "landing", p)
}

type authPage struct {
	Mode   string // signin | signup
	Email  string
	Phone  string
	Errors []string
}

func authMode(mode string) string {
	if mode == "signup" {
		return mode
	}
	return "signin"
}

func (h pages) renderAuth(ctx echo.Context, code int, form authPage) error {
	title := "Sign in"
	if form.Mode == "signup" {
		title = "Create your account"
	}
	p := newPage(ctx, title, form)
	p.Flash = popFlash(ctx)
	return ctx.Render(code, "auth", p)
}

func (h pages) authForm(ctx echo.Context) error {
	return h.renderAuth(ctx, http.StatusOK, authPage{Mode: authMode(ctx.QueryParam("mode"))})
}

func (h pages) signIn(ctx echo.Context) error {
	var data identity.SignInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignInRequest")
	}

	sess, token, err := h.deps.SessionSvc.SignIn(ctx.Request().Context(), data)
	if err != nil {
		if msgs, ok := formErrors(err, h.deps); ok {
			return h.renderAuth(ctx, http.StatusBadRequest, authPage{Mode: "signin", Email: data.Email, Phone: data.Phone, Errors: msgs})
		}
		return errors.Wrap(err, "signing in")
	}
	return h.signedIn(ctx, sess, token, flashSignedIn)
}

func (h pages) signUp(ctx echo.Context) error {
	var data identity.SignUpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignUpRequest")
	}

	sess, token, err := h.deps.SessionSvc.SignUp(ctx.Request().Context(), data)
	if err != nil {
		if msgs, ok := formErrors(err, h.deps); ok {
			return h.renderAuth(ctx, http.StatusBadRequest, authPage{Mode: "signup", Email: data.Email, Phone: data.Phone, Errors: msgs})
		}
		return errors.Wrap(err, "signing up")
	}
	return h.signedIn(ctx, sess, token, flashSignedUp)
}

func (h pages) signedIn(ctx echo.Context, sess session.Session, token, flash string) error {
	setSessionCookie(ctx, h.deps.Conf, sess, token)
	setFlash(ctx, h.deps.Conf, flash)
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h pages) signOut(ctx echo.Context) error {
	if token := contextToken(ctx); token != "" {
		if err := h.deps.SessionSvc.SignOut(ctx.Request().Context(), token); err != nil {
			return errors.Wrap(err, "signing out")
		}
		setFlash(ctx, h.deps.Conf, flashSignedOut)
	}
	clearCookie(ctx, h.deps.Conf.Session.CookieName)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

type dashboardPage struct {
	Tab     string
	Domains []catalog.Domain
	Plan    string
}

func (h pages) dashboard(ctx echo.Context) error {
	if handled, err := checkoutReturn(ctx, h.deps); handled || err != nil {
		return err
	}

	premium, err := isPremium(ctx, h.deps)
	if err != nil {
		return err
	}

	tab := ctx.QueryParam("tab")
	if !dashboardTabs[tab] {
		tab = "home"
	}
	data := dashboardPage{Tab: tab, Domains: h.deps.Catalog.Domains(), Plan: "Free"}
	if premium {
		data.Plan = "Premium"
	}

	p := newPage(ctx, "Dashboard", data)
	p.Premium = premium
	p.Flash = popFlash(ctx)
	return ctx.Render(http.StatusOK, "dashboard", p)
}

type domainPage struct {
	View     catalog.View
	Steps    []string
	NotFound string
}

func (h pages) domain(ctx echo.Context) error {
	premium, err := isPremium(ctx, h.deps)
	if err != nil {
		return err
	}

	var data domainPage
	view, err := h.deps.Catalog.View(ctx.Param("id"), premium)
	if err != nil {
		nfErr, ok := err.(*catalog.DomainNotFoundError)
		if !ok {
			return err
		}
		data.NotFound = nfErr.Error()
	} else {
		data.View = view
		data.Steps = roadmap.NewPlan(premium, timing(h.deps.Conf)).Steps
	}

	title := "Roadmap"
	if data.NotFound == "" {
		title = view.Domain.Title
	}
	p := newPage(ctx, title, data)
	p.Premium = premium
	return ctx.Render(http.StatusOK, "domain", p)
}
