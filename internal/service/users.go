package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

const tempPasswordLen = 8

type usersStore interface {
	ListUsersExcept(ctx context.Context, uid string) ([]store.User, error)
	CreateUser(ctx context.Context, r store.CreateUserRequest) (store.User, error)
}

// Users serves the contact list and the invite flow.
type Users struct {
	store usersStore
}

func NewUsers(st usersStore) *Users {
	return &Users{store: st}
}

// ListOthers returns every user except the caller, ordered by first name.
// Credential fields never leave the store layer.
func (s *Users) ListOthers(ctx context.Context, callerID string) ([]store.User, error) {
	users, err := s.store.ListUsersExcept(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

type InviteResponse struct {
	User store.User
	// TempPassword is handed back to the inviter so they can pass it on.
	// TODO: replace with an invitation email once outbound mail exists;
	// returning the credential in the response is a demo-only shortcut.
	TempPassword string
}

// Invite creates a placeholder account for the given email with a generated
// one-time password. An already registered email is a conflict.
func (s *Users) Invite(ctx context.Context, email string) (InviteResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return InviteResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "email is required")
	}

	tempPassword := randPassword(tempPasswordLen)
	usr, err := s.store.CreateUser(ctx, store.CreateUserRequest{
		UID:       uuid.NewString(),
		Email:     email,
		FirstName: "New User",
		Password:  tempPassword,
		Invited:   true,
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			sErr := serr.NewServiceError(err, http.StatusConflict, "user already exists")
			sErr.Env["email"] = email
			return InviteResponse{}, sErr
		}

		return InviteResponse{}, fmt.Errorf("create invited user: %w", err)
	}

	return InviteResponse{
		User:         usr,
		TempPassword: tempPassword,
	}, nil
}

func randPassword(size int) string {
	b := make([]byte, size)

	// rand.Read never returns an error
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)[:size]
}
