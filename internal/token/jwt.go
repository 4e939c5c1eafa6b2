package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed
// payload and expired horizon all collapse into it so callers cannot tell
// them apart.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded session token payload. UserID is the opaque user uid
// the token was issued for.
type Claims struct {
	UserID   string
	TokenID  string
	IssuedAt time.Time
}

// JwtIssuer mints and verifies signed session tokens with a fixed validity
// window. The signing secret is injected at construction and never rotated at
// runtime; rotating it invalidates every outstanding token.
type JwtIssuer struct {
	secret secretProvider
	issuer string
	ttl    time.Duration
}

type JwtConfig struct {
	Secret secretProvider
	Issuer string
	TTL    time.Duration
}

func NewJWTIssuer(cfg JwtConfig) *JwtIssuer {
	return &JwtIssuer{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}
}

// Issue signs a token for the given user uid, valid for the configured TTL.
func (ti *JwtIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    ti.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}).SignedString(ti.secret.Get())

	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tk, nil
}

// Validate verifies the signature and expiry and decodes the claims.
func (ti *JwtIssuer) Validate(raw string) (Claims, error) {
	var rc jwt.RegisteredClaims
	tk, err := jwt.ParseWithClaims(raw, &rc, func(t *jwt.Token) (any, error) {
		return ti.secret.Get(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !tk.Valid {
		return Claims{}, ErrInvalidToken
	}

	if rc.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	var issuedAt time.Time
	if rc.IssuedAt != nil {
		issuedAt = rc.IssuedAt.Time
	}

	return Claims{
		UserID:   rc.Subject,
		TokenID:  rc.ID,
		IssuedAt: issuedAt,
	}, nil
}
