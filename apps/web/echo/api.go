package echoweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/roadmap"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

const maxWebhookBytes = 64 << 10

type (
	AuthResponse struct {
		Token   string          `json:"token"`
		Session session.Session `json:"session"`
	}

	MeResponse struct {
		Session session.Session `json:"session"`
		Premium bool            `json:"premium"`
	}

	CheckoutRequest struct {
		PriceID string `json:"priceId"`
	}

	CheckoutResponse struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}

	// RevealEvent is the last event of a progress stream.
	RevealEvent struct {
		roadmap.Progress
		View catalog.View `json:"view"`
	}
)

type api struct {
	deps *Deps
}

func registerAPI(g *echo.Group, deps *Deps) {
	h := api{deps: deps}

	v1 := g.Group("/v1")

	v1.POST("/auth/signup", h.signUp)
	v1.POST("/auth/signin", h.signIn)
	v1.POST("/auth/signout", h.signOut, requireSession)
	v1.GET("/me", h.me, requireSession)

	v1.GET("/domains", h.domains)
	dg := v1.Group("/domains/:id", requireSession)
	dg.GET("/roadmap", h.roadmap)
	dg.GET("/roadmap/progress", h.progress)

	v1.POST("/checkout-sessions", h.createCheckoutSession, requireSession)
	g.POST("/create-checkout-session", h.createCheckoutSession, requireSession)
	v1.POST("/payments/webhook", h.webhook)

	g.Any("/*", func(echo.Context) error { return errHttpNotFound })
}

// Handlers

func (h api) signUp(ctx echo.Context) error {
	var data identity.SignUpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignUpRequest")
	}
	sess, token, err := h.deps.SessionSvc.SignUp(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, AuthResponse{Token: token, Session: sess})
}

func (h api) signIn(ctx echo.Context) error {
	var data identity.SignInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignInRequest")
	}
	sess, token, err := h.deps.SessionSvc.SignIn(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	return ctx.JSON(http.StatusOK, AuthResponse{Token: token, Session: sess})
}

func (h api) signOut(ctx echo.Context) error {
	if err := h.deps.SessionSvc.SignOut(ctx.Request().Context(), contextToken(ctx)); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (h api) me(ctx echo.Context) error {
	sess, _ := contextSession(ctx)
	premium, err := isPremium(ctx, h.deps)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MeResponse{Session: sess, Premium: premium})
}

func (h api) domains(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, h.deps.Catalog.Domains())
}

func (h api) view(ctx echo.Context) (catalog.View, error) {
	premium, err := isPremium(ctx, h.deps)
	if err != nil {
		return catalog.View{}, err
	}
	return h.deps.Catalog.View(ctx.Param("id"), premium)
}

func (h api) roadmap(ctx echo.Context) error {
	view, err := h.view(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

// progress streams the generation sequence as server-sent events, then reveals
// the gated roadmap. The stream stops when the client goes away.
func (h api) progress(ctx echo.Context) error {
	view, err := h.view(ctx)
	if err != nil {
		return err
	}

	w := ctx.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	plan := roadmap.NewPlan(view.Premium, timing(h.deps.Conf))
	err = plan.Run(ctx.Request().Context(), func(p roadmap.Progress) error {
		if p.Done {
			return writeEvent(w, "done", RevealEvent{Progress: p, View: view})
		}
		return writeEvent(w, "step", p)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		// headers are sent: nothing more can be told to the client
		h.deps.Logger.Warn(fmt.Sprintf("roadmap progress stream: %v", err), err)
	}
	return nil
}

func writeEvent(w *echo.Response, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func (h api) createCheckoutSession(ctx echo.Context) error {
	var data CheckoutRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckoutRequest")
	}
	sess, _ := contextSession(ctx)
	cs, err := h.deps.PaymentSvc.StartCheckout(ctx.Request().Context(), sess, data.PriceID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CheckoutResponse{SessionID: cs.ID, URL: cs.URL})
}

func (h api) webhook(ctx echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBytes))
	if err != nil {
		return errors.Wrap(err, "reading webhook payload")
	}
	handled, err := h.deps.PaymentSvc.HandleWebhook(ctx.Request().Context(), payload, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"received": true, "handled": handled})
}
