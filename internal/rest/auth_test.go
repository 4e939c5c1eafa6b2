package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/middleware"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/oauth"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/service"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/token"
)

type mockAuthService struct {
	loginURLFunc func(env oauth.Env, provider string) (string, error)
	callbackFunc func(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error)
	profileFunc  func(ctx context.Context, userID string) (store.User, error)
	logoutFunc   func(ctx context.Context, userID string)
}

func (m *mockAuthService) LoginURL(env oauth.Env, provider string) (string, error) {
	return m.loginURLFunc(env, provider)
}

func (m *mockAuthService) AuthCallback(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error) {
	return m.callbackFunc(ctx, env, r)
}

func (m *mockAuthService) Profile(ctx context.Context, userID string) (store.User, error) {
	return m.profileFunc(ctx, userID)
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) {
	if m.logoutFunc != nil {
		m.logoutFunc(ctx, userID)
	}
}

type mockVerifier struct {
	validateFunc func(raw string) (token.Claims, error)
}

func (m *mockVerifier) Validate(raw string) (token.Claims, error) {
	return m.validateFunc(raw)
}

func rejectAll() *mockVerifier {
	return &mockVerifier{
		validateFunc: func(raw string) (token.Claims, error) {
			return token.Claims{}, token.ErrInvalidToken
		},
	}
}

func acceptAs(userID string) *mockVerifier {
	return &mockVerifier{
		validateFunc: func(raw string) (token.Claims, error) {
			return token.Claims{UserID: userID}, nil
		},
	}
}

func newTestAuthAPI(srv authService, verifier tokenVerifier) *AuthAPI {
	return NewAuthAPI(AuthAPIConfig{
		Service:     srv,
		Verifier:    verifier,
		Guard:       middleware.Auth(verifier),
		FrontendURL: "http://front.test",
		LoginURL:    "http://front.test/login",
	})
}

func TestLogin_Redirects(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		loginURLFunc: func(env oauth.Env, provider string) (string, error) {
			assert.Equal(t, "linkedin", provider)
			return "https://provider.test/authorize?state=xyz", nil
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/linkedin", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://provider.test/authorize?state=xyz", rec.Header().Get("Location"))
}

func TestLogin_ProviderNotFound(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		loginURLFunc: func(env oauth.Env, provider string) (string, error) {
			return "", serr.NewServiceError(oauth.ErrProviderNotFound, http.StatusNotFound, "oauth provider not found")
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"oauth provider not found"}`, rec.Body.String())
}

func TestCallback_RedirectsWithToken(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		callbackFunc: func(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error) {
			assert.Equal(t, "linkedin", r.Provider)
			assert.Equal(t, "the-code", r.Code)
			assert.Equal(t, "the-state", r.State)
			return service.AuthCallbackResponse{
				User:  store.User{UID: "uid-1"},
				Token: "signed-token",
			}, nil
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/linkedin/callback?code=the-code&state=the-state", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://front.test/auth/callback?token=signed-token", rec.Header().Get("Location"))
}

func TestCallback_FailureRedirectsToLogin(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		callbackFunc: func(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error) {
			return service.AuthCallbackResponse{}, serr.NewServiceError(oauth.ErrAuthFailed, http.StatusUnauthorized, "authentication failed")
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/linkedin/callback?code=bad&state=bad", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://front.test/login?error=authentication_failed", rec.Header().Get("Location"))
}

func TestCallback_InternalFailureRedirectsToLogin(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		callbackFunc: func(ctx context.Context, env oauth.Env, r service.AuthCallbackRequest) (service.AuthCallbackResponse, error) {
			return service.AuthCallbackResponse{}, errors.New("db down")
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/linkedin/callback?code=c&state=s", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://front.test/login?error=authentication_failed", rec.Header().Get("Location"))
}

func TestProfile_RequiresToken(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		profileFunc: func(ctx context.Context, userID string) (store.User, error) {
			t.Fatal("profile must not be called without a token")
			return store.User{}, nil
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_ReturnsCaller(t *testing.T) {
	api := newTestAuthAPI(&mockAuthService{
		profileFunc: func(ctx context.Context, userID string) (store.User, error) {
			assert.Equal(t, "uid-1", userID)
			return store.User{UID: "uid-1", Email: "ann@x.com", FirstName: "Ann"}, nil
		},
	}, acceptAs("uid-1"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "uid-1", body.ID)
	assert.Equal(t, "ann@x.com", body.Email)
	assert.Equal(t, "Ann", body.FirstName)
}

func TestLogout_WithoutToken(t *testing.T) {
	loggedOut := false
	api := newTestAuthAPI(&mockAuthService{
		logoutFunc: func(ctx context.Context, userID string) {
			loggedOut = true
		},
	}, rejectAll())

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())
	assert.False(t, loggedOut)
}

func TestLogout_WithToken(t *testing.T) {
	var loggedOut string
	api := newTestAuthAPI(&mockAuthService{
		logoutFunc: func(ctx context.Context, userID string) {
			loggedOut = userID
		},
	}, acceptAs("uid-1"))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-1", loggedOut)
}
