package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

var (
	ErrProviderConflict = errors.New("provider already exists")
	ErrProviderNotFound = errors.New("provider not found")
	ErrAuthFailed       = errors.New("auth failed")

	// ErrMissingEmail means the provider returned a profile without an email
	// claim. The handshake fails closed rather than creating an identity we
	// cannot key by email.
	ErrMissingEmail = errors.New("profile has no email claim")
)

// Profile is the set of claims we take from an identity provider after a
// successful code exchange. ID and Email are required; the rest is optional
// and empty when the provider does not supply it.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Picture   string
	Headline  string
}

// Env stores short-lived per-browser values across the redirect dance,
// typically as cookies.
type Env interface {
	Save(key, val string) error
	Load(key string) (string, error)
}

type identityProvider interface {
	LoginURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (Profile, error)
}

// Authenticator drives the authorization-code handshake against a registry of
// named identity providers.
type Authenticator struct {
	providers map[string]identityProvider
	mu        sync.RWMutex
}

func NewAuthenticator() *Authenticator {
	return &Authenticator{
		providers: make(map[string]identityProvider),
	}
}

func (a *Authenticator) Use(name string, p identityProvider) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.providers[name]; ok {
		return ErrProviderConflict
	}

	a.providers[name] = p
	return nil
}

// LoginURL generates a random state, stashes it in env and returns the
// provider's authorization URL carrying that state.
func (a *Authenticator) LoginURL(env Env, provider string) (string, error) {
	p, err := a.getProvider(provider)
	if err != nil {
		return "", fmt.Errorf("get provider: %w", err)
	}

	state := randState(32)
	if err = env.Save(provider, state); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}

	url, err := p.LoginURL(state)
	if err != nil {
		return "", fmt.Errorf("get login url: %w", err)
	}

	return url, nil
}

// Exchange completes the handshake: it checks the returned state against the
// one saved at redirect time, swaps the code for a profile and enforces the
// email claim. State loss or mismatch is ErrAuthFailed.
func (a *Authenticator) Exchange(ctx context.Context, env Env, provider, code, state string) (Profile, error) {
	p, err := a.getProvider(provider)
	if err != nil {
		return Profile{}, fmt.Errorf("get provider: %w", err)
	}

	saved, err := env.Load(provider)
	if err != nil {
		return Profile{}, ErrAuthFailed
	}

	if saved == "" || saved != state {
		return Profile{}, ErrAuthFailed
	}

	prof, err := p.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			if rerr.Response != nil {
				if rerr.Response.StatusCode == http.StatusBadRequest || rerr.Response.StatusCode == http.StatusUnauthorized {
					return Profile{}, ErrAuthFailed
				}
			}
		}

		return Profile{}, fmt.Errorf("exchange: %w", err)
	}

	if prof.Email == "" {
		return Profile{}, ErrMissingEmail
	}

	return prof, nil
}

func (a *Authenticator) getProvider(name string) (identityProvider, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}

	return p, nil
}

func randState(size int) string {
	b := make([]byte, size)

	// rand.Read never returns an error
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
