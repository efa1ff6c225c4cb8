package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
)

const clientFlagLifetime = 365 * 24 * time.Hour

type premiumPages struct {
	deps *Deps
}

func registerPremium(e *echo.Echo, deps *Deps) {
	h := premiumPages{deps: deps}

	g := e.Group("/premium", requireSession)
	g.GET("", h.compare)
	g.POST("/upgrade", h.upgrade)
}

// isPremium reports the premium flag of the current request. In client mode
// the unsigned browser flag is trusted; otherwise only server grants count.
func isPremium(ctx echo.Context, deps *Deps) (bool, error) {
	if deps.Conf.ClientPremium() {
		cookie, err := ctx.Cookie(entitlement.ClientFlagKey)
		return err == nil && entitlement.ParseClientFlag(cookie.Value), nil
	}

	sess, ok := contextSession(ctx)
	if !ok {
		return false, nil
	}
	premium, err := deps.EntitlementSvc.IsPremium(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return false, errors.Wrap(err, "checking entitlement")
	}
	return premium, nil
}

func setClientFlag(ctx echo.Context, deps *Deps) {
	ctx.SetCookie(&http.Cookie{
		Name:     entitlement.ClientFlagKey,
		Value:    "true",
		Path:     "/",
		Expires:  core.NowFunc().Add(clientFlagLifetime),
		Secure:   deps.Conf.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type comparePage struct {
	SimulateUpgrade bool
	PaymentProvider string
}

func (h premiumPages) compare(ctx echo.Context) error {
	premium, err := isPremium(ctx, h.deps)
	if err != nil {
		return err
	}
	p := newPage(ctx, "Upgrade to Premium", comparePage{
		SimulateUpgrade: h.deps.Conf.Premium.SimulateUpgrade,
		PaymentProvider: h.deps.PaymentSvc.Provider().Name(),
	})
	p.Premium = premium
	return ctx.Render(http.StatusOK, "premium", p)
}

// upgrade either writes the premium flag right away (simulated upgrade) or
// sends the learner to the hosted checkout.
func (h premiumPages) upgrade(ctx echo.Context) error {
	sess, _ := contextSession(ctx)
	conf := h.deps.Conf

	if conf.Premium.SimulateUpgrade {
		if conf.ClientPremium() {
			setClientFlag(ctx, h.deps)
		} else {
			_, _, err := h.deps.EntitlementSvc.Grant(ctx.Request().Context(), sess.UserID, entitlement.SourceSimulated)
			if err != nil {
				return errors.Wrap(err, "granting simulated upgrade")
			}
		}
		setFlash(ctx, conf, flashPremium)
		return ctx.Redirect(http.StatusSeeOther, "/dashboard")
	}

	cs, err := h.deps.PaymentSvc.StartCheckout(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, cs.URL)
}

// checkoutReturn handles the dashboard visit that follows a hosted checkout.
// It reports false when the request is a plain dashboard visit.
func checkoutReturn(ctx echo.Context, deps *Deps) (bool, error) {
	switch {
	case ctx.QueryParam("canceled") == "true":
		setFlash(ctx, deps.Conf, flashCanceled)
	case ctx.QueryParam("success") == "true":
		if deps.Conf.ClientPremium() {
			setClientFlag(ctx, deps)
			setFlash(ctx, deps.Conf, flashPremium)
			break
		}
		// only a verified checkout session unlocks premium
		sess, _ := contextSession(ctx)
		if _, err := deps.PaymentSvc.Confirm(ctx.Request().Context(), sess.UserID, ctx.QueryParam("session_id")); err != nil {
			if errors.Cause(err) == payment.ErrNotFound {
				return true, ctx.Redirect(http.StatusSeeOther, "/dashboard")
			}
			return true, err
		}
		setFlash(ctx, deps.Conf, flashPremium)
	default:
		return false, nil
	}
	return true, ctx.Redirect(http.StatusSeeOther, "/dashboard")
}
