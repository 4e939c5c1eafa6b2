package provider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/oauth"
)

const linkedinIssuer = "https://www.linkedin.com/oauth"

// LinkedIn implements the identityProvider interface over LinkedIn's OpenID
// Connect endpoints.
type LinkedIn struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type idClaims struct {
	Sub        string `json:"sub,omitempty"`
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	Headline   string `json:"headline,omitempty"`
}

func NewLinkedIn(ctx context.Context, cfg LinkedInConfig) (*LinkedIn, error) {
	p, err := oidc.NewProvider(ctx, linkedinIssuer)
	if err != nil {
		return nil, fmt.Errorf("new oidc provider: %w", err)
	}

	return &LinkedIn{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			Endpoint:     p.Endpoint(),
		},
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// LoginURL builds the authorization URL carrying the given state.
func (l *LinkedIn) LoginURL(state string) (string, error) {
	return l.cfg.AuthCodeURL(state), nil
}

// Exchange swaps the authorization code for a verified id_token and maps its
// claims onto an oauth.Profile. LinkedIn does not expose the member headline
// through OIDC, so Headline stays empty unless the claim shows up.
func (l *LinkedIn) Exchange(ctx context.Context, code string) (oauth.Profile, error) {
	tok, err := l.cfg.Exchange(ctx, code)
	if err != nil {
		return oauth.Profile{}, err
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok {
		return oauth.Profile{}, fmt.Errorf("token response has no id_token")
	}

	idTok, err := l.verifier.Verify(ctx, raw)
	if err != nil {
		return oauth.Profile{}, fmt.Errorf("verify id token: %w", err)
	}

	var claims idClaims
	if err := idTok.Claims(&claims); err != nil {
		return oauth.Profile{}, fmt.Errorf("read claims: %w", err)
	}

	return oauth.Profile{
		ID:        claims.Sub,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Picture:   claims.Picture,
		Headline:  claims.Headline,
	}, nil
}
