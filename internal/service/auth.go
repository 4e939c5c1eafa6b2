package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/oauth"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

// defaultFirstName is used when the provider supplies no given name for a
// brand new account; first_name is NOT NULL and drives contact-list ordering.
const defaultFirstName = "User"

// authenticator drives the OAuth authorization-code handshake.
type authenticator interface {
	LoginURL(env oauth.Env, provider string) (string, error)
	Exchange(ctx context.Context, env oauth.Env, provider, code, state string) (oauth.Profile, error)
}

// tokenIssuer mints signed session tokens for a user id.
type tokenIssuer interface {
	Issue(userID string) (string, error)
}

// sessionRegistry tracks server-side session artifacts. It is best-effort:
// the Access Gate never reads it.
type sessionRegistry interface {
	Create(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// Auth implements login: the provider handshake, the identity upsert and
// session token issuance.
type Auth struct {
	auth     authenticator
	store    store.Store
	issuer   tokenIssuer
	sessions sessionRegistry
}

type AuthOption func(*Auth) *Auth

func WithAuthenticator(a authenticator) AuthOption {
	return func(s *Auth) *Auth {
		s.auth = a
		return s
	}
}

func WithStore(st store.Store) AuthOption {
	return func(s *Auth) *Auth {
		s.store = st
		return s
	}
}

func WithTokenIssuer(iss tokenIssuer) AuthOption {
	return func(s *Auth) *Auth {
		s.issuer = iss
		return s
	}
}

func WithSessions(sr sessionRegistry) AuthOption {
	return func(s *Auth) *Auth {
		s.sessions = sr
		return s
	}
}

func NewAuth(opts ...AuthOption) *Auth {
	s := &Auth{}
	for _, opt := range opts {
		s = opt(s)
	}

	if s.auth == nil {
		panic("oauth authenticator is required")
	}

	if s.store == nil {
		panic("store is required")
	}

	if s.issuer == nil {
		panic("token issuer is required")
	}

	if s.sessions == nil {
		panic("session registry is required")
	}

	return s
}

// LoginURL starts the redirect dance for the given provider.
func (s *Auth) LoginURL(env oauth.Env, provider string) (string, error) {
	url, err := s.auth.LoginURL(env, provider)
	if err != nil {
		if errors.Is(err, oauth.ErrProviderNotFound) {
			sErr := serr.NewServiceError(err, http.StatusNotFound, "oauth provider not found")
			sErr.Env["provider"] = provider
			return "", sErr
		}

		return "", fmt.Errorf("login url: %w", err)
	}

	return url, nil
}

type AuthCallbackRequest struct {
	Provider string
	Code     string
	State    string
}

type AuthCallbackResponse struct {
	User  store.User
	Token string
}

// AuthCallback completes the handshake, upserts the local identity from the
// returned profile and issues a session token. A rejected handshake or a
// profile without an email claim fails with a 401 ServiceError and persists
// nothing.
func (s *Auth) AuthCallback(ctx context.Context, env oauth.Env, r AuthCallbackRequest) (AuthCallbackResponse, error) {
	prof, err := s.auth.Exchange(ctx, env, r.Provider, r.Code, r.State)
	if err != nil {
		if errors.Is(err, oauth.ErrProviderNotFound) {
			sErr := serr.NewServiceError(err, http.StatusNotFound, "oauth provider not found")
			sErr.Env["provider"] = r.Provider
			return AuthCallbackResponse{}, sErr
		}

		if errors.Is(err, oauth.ErrAuthFailed) || errors.Is(err, oauth.ErrMissingEmail) {
			sErr := serr.NewServiceError(err, http.StatusUnauthorized, "authentication failed")
			sErr.Env["provider"] = r.Provider
			return AuthCallbackResponse{}, sErr
		}

		return AuthCallbackResponse{}, fmt.Errorf("exchange: %w", err)
	}

	usr, err := s.upsertUser(ctx, prof)
	if err != nil {
		return AuthCallbackResponse{}, fmt.Errorf("upsert user: %w", err)
	}

	tk, err := s.issuer.Issue(usr.UID)
	if err != nil {
		return AuthCallbackResponse{}, fmt.Errorf("issue token: %w", err)
	}

	// The token in the client's hands is the session; the registry entry is
	// bookkeeping for logout and must not block a successful login.
	if err := s.sessions.Create(ctx, usr.UID); err != nil {
		slog.Error("failed to register session", "error", err, "user", usr.UID)
	}

	return AuthCallbackResponse{
		User:  usr,
		Token: tk,
	}, nil
}

// Profile returns the caller's own user record.
func (s *Auth) Profile(ctx context.Context, userID string) (store.User, error) {
	usr, err := s.store.GetUserByUID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, serr.NewServiceError(err, http.StatusNotFound, "user not found")
		}

		return store.User{}, fmt.Errorf("get user: %w", err)
	}

	return usr, nil
}

// Logout drops the server-side session artifact. Failures are swallowed:
// the client discards its token either way, and keeping a stale registry
// entry is harmless.
func (s *Auth) Logout(ctx context.Context, userID string) {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		slog.Error("failed to delete session", "error", err, "user", userID)
	}
}

// upsertUser maps an external profile onto a local user record. Match order:
// by external id first, then by email (a pre-existing account gets the
// external id attached), otherwise a new record is created. Replaying the
// same profile only refreshes mutable fields.
func (s *Auth) upsertUser(ctx context.Context, prof oauth.Profile) (store.User, error) {
	existing, err := s.store.GetUserByLinkedInID(ctx, prof.ID)
	if err == nil {
		return s.store.RefreshUserProfile(ctx, store.RefreshUserProfileRequest{
			UID:       existing.UID,
			FirstName: prof.FirstName,
			LastName:  prof.LastName,
			Picture:   prof.Picture,
			Headline:  prof.Headline,
		})
	}

	if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, fmt.Errorf("get user by external id: %w", err)
	}

	var usr store.User
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		byEmail, err := tx.GetUserByEmail(ctx, prof.Email)
		if err == nil {
			usr, err = tx.AttachLinkedInID(ctx, store.AttachLinkedInIDRequest{
				UID:        byEmail.UID,
				LinkedInID: prof.ID,
				FirstName:  prof.FirstName,
				LastName:   prof.LastName,
				Picture:    prof.Picture,
				Headline:   prof.Headline,
			})
			if err != nil {
				return fmt.Errorf("attach external id: %w", err)
			}

			return nil
		}

		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get user by email: %w", err)
		}

		firstName := prof.FirstName
		if firstName == "" {
			firstName = defaultFirstName
		}

		usr, err = tx.CreateUser(ctx, store.CreateUserRequest{
			UID:        uuid.NewString(),
			LinkedInID: prof.ID,
			Email:      prof.Email,
			FirstName:  firstName,
			LastName:   prof.LastName,
			Picture:    prof.Picture,
			Headline:   prof.Headline,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		return nil
	})
	if err != nil {
		return store.User{}, err
	}

	return usr, nil
}
