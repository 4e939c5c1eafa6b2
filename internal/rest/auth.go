package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/httpx"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/middleware"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/oauth"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/router"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/service"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/token"
)

const stateCookieScope = "oauth"

type authService interface {
	LoginURL(env oauth.Env, provider string) (string, error)
	AuthCallback(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error)
	Profile(ctx context.Context, userID string) (store.User, error)
	Logout(ctx context.Context, userID string)
}

type tokenVerifier interface {
	Validate(raw string) (token.Claims, error)
}

// AuthAPIConfig wires the auth HTTP surface.
type AuthAPIConfig struct {
	Service  authService
	Verifier tokenVerifier
	Guard    router.Middleware
	// FrontendURL receives the browser after a successful login, with the
	// session token as ?token=...
	FrontendURL string
	// LoginURL receives the browser after a failed handshake, with
	// ?error=authentication_failed.
	LoginURL string
}

type AuthAPI struct {
	srv         authService
	verifier    tokenVerifier
	frontendURL string
	loginURL    string
	mux         *http.ServeMux
}

func NewAuthAPI(cfg AuthAPIConfig) *AuthAPI {
	api := &AuthAPI{
		srv:         cfg.Service,
		verifier:    cfg.Verifier,
		frontendURL: cfg.FrontendURL,
		loginURL:    cfg.LoginURL,
		mux:         http.NewServeMux(),
	}
	api.mount(cfg.Guard)
	return api
}

func (a *AuthAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *AuthAPI) mount(guard router.Middleware) {
	a.mux.HandleFunc("GET /{provider}", a.handleLogin)
	a.mux.HandleFunc("GET /{provider}/callback", a.handleCallback)
	a.mux.Handle("GET /profile", guard(http.HandlerFunc(a.handleProfile)))
	a.mux.HandleFunc("POST /logout", a.handleLogout)
}

func (a *AuthAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := r.PathValue("provider")
	url, err := a.srv.LoginURL(oauth.NewHTTPEnv(stateCookieScope, w, r), p)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// handleCallback finishes the handshake and sends the browser back to the
// frontend. Every failure ends up at the login page with a generic error
// marker; details stay in the logs.
func (a *AuthAPI) handleCallback(w http.ResponseWriter, r *http.Request) {
	p := r.PathValue("provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	resp, err := a.srv.AuthCallback(r.Context(), oauth.NewHTTPEnv(stateCookieScope, w, r), service.AuthCallbackRequest{
		Provider: p,
		Code:     code,
		State:    state,
	})
	if err != nil {
		slog.Error("auth callback failed",
			"error", err,
			"provider", p,
			"remote_addr", r.RemoteAddr,
		)
		http.Redirect(w, r, a.loginURL+"?error=authentication_failed", http.StatusFound)
		return
	}

	dest := fmt.Sprintf("%s/auth/callback?token=%s", a.frontendURL, url.QueryEscape(resp.Token))
	http.Redirect(w, r, dest, http.StatusFound)
}

func (a *AuthAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFromContext(r.Context())

	usr, err := a.srv.Profile(r.Context(), uid)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, newUserResponse(usr)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type logoutResponse struct {
	Message string `json:"message"`
}

// handleLogout is deliberately unguarded and always succeeds: discarding the
// token client-side is the real logout. A valid bearer token lets us drop
// the server-side session record as well.
func (a *AuthAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw, ok := middleware.BearerToken(r); ok {
		if claims, err := a.verifier.Validate(raw); err == nil {
			a.srv.Logout(r.Context(), claims.UserID)
		}
	}

	if err := httpx.WriteJSON(w, http.StatusOK, logoutResponse{Message: "Logged out successfully"}); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}
