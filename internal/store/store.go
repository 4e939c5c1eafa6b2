package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type Store interface {
	GetUserByUID(ctx context.Context, uid string) (User, error)
	GetUserByLinkedInID(ctx context.Context, linkedinID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, r CreateUserRequest) (User, error)
	RefreshUserProfile(ctx context.Context, r RefreshUserProfileRequest) (User, error)
	AttachLinkedInID(ctx context.Context, r AttachLinkedInIDRequest) (User, error)
	ListUsersExcept(ctx context.Context, uid string) ([]User, error)

	InsertMessage(ctx context.Context, r InsertMessageRequest) (Message, error)
	GetConversation(ctx context.Context, r ConversationRequest) ([]ConversationMessage, error)
	MarkMessagesRead(ctx context.Context, r MarkReadRequest) (int64, error)

	WithTx(ctx context.Context, fn func(tx Store) error) error
}
