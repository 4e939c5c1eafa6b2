package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

const (
	userCacheMaxKeys = 1024
	userCacheItemTTL = 5 * time.Minute
)

type messagesStore interface {
	GetUserByUID(ctx context.Context, uid string) (store.User, error)
	InsertMessage(ctx context.Context, r store.InsertMessageRequest) (store.Message, error)
	GetConversation(ctx context.Context, r store.ConversationRequest) ([]store.ConversationMessage, error)
	MarkMessagesRead(ctx context.Context, r store.MarkReadRequest) (int64, error)
}

// Messages implements sending, ordered history retrieval and read receipts.
// User rows backing message enrichment are kept in a small read-through
// cache; display fields may lag a profile refresh by up to the item TTL.
type Messages struct {
	store messagesStore
	users *ristretto.Cache[string, store.User]
}

func NewMessages(st messagesStore) *Messages {
	cache, err := ristretto.NewCache(&ristretto.Config[string, store.User]{
		NumCounters: userCacheMaxKeys * 10,
		MaxCost:     userCacheMaxKeys,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create user cache: %v", err))
	}

	return &Messages{
		store: st,
		users: cache,
	}
}

type SendRequest struct {
	SenderID   string
	ReceiverID string
	Content    string
}

// Send persists one directed message and returns it enriched with both
// participants' display fields. Empty content is rejected; an unknown
// receiver is not found. Sending to oneself is allowed.
func (s *Messages) Send(ctx context.Context, r SendRequest) (store.ConversationMessage, error) {
	if r.ReceiverID == "" || strings.TrimSpace(r.Content) == "" {
		return store.ConversationMessage{}, serr.NewServiceError(nil, http.StatusBadRequest, "receiver ID and content are required")
	}

	sender, err := s.getUser(ctx, r.SenderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ConversationMessage{}, serr.NewServiceError(err, http.StatusNotFound, "sender not found")
		}

		return store.ConversationMessage{}, fmt.Errorf("get sender: %w", err)
	}

	receiver, err := s.getUser(ctx, r.ReceiverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ConversationMessage{}, serr.NewServiceError(err, http.StatusNotFound, "receiver not found")
		}

		return store.ConversationMessage{}, fmt.Errorf("get receiver: %w", err)
	}

	msg, err := s.store.InsertMessage(ctx, store.InsertMessageRequest{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    r.Content,
	})
	if err != nil {
		// A foreign-key failure here means a participant vanished between
		// the lookup and the insert.
		if errors.Is(err, store.ErrNotFound) {
			return store.ConversationMessage{}, serr.NewServiceError(err, http.StatusNotFound, "receiver not found")
		}

		return store.ConversationMessage{}, fmt.Errorf("insert message: %w", err)
	}

	return store.ConversationMessage{
		Message:  msg,
		Sender:   participant(sender),
		Receiver: participant(receiver),
	}, nil
}

type HistoryRequest struct {
	UserID string
	PeerID string
}

// History returns every message between the two users in either direction,
// ordered oldest first. It is a snapshot: callers poll to observe new
// messages.
func (s *Messages) History(ctx context.Context, r HistoryRequest) ([]store.ConversationMessage, error) {
	if _, err := s.getUser(ctx, r.PeerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, serr.NewServiceError(err, http.StatusNotFound, "user not found")
		}

		return nil, fmt.Errorf("get peer: %w", err)
	}

	msgs, err := s.store.GetConversation(ctx, store.ConversationRequest{
		UserA: r.UserID,
		UserB: r.PeerID,
	})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return msgs, nil
}

type MarkReadRequest struct {
	ReceiverID string
	SenderID   string
}

// MarkRead flags every unread message from sender to receiver as read.
// Repeating the call changes nothing; the opposite direction is untouched.
func (s *Messages) MarkRead(ctx context.Context, r MarkReadRequest) error {
	_, err := s.store.MarkMessagesRead(ctx, store.MarkReadRequest{
		SenderUID:   r.SenderID,
		ReceiverUID: r.ReceiverID,
	})
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	return nil
}

// getUser resolves a user through the cache, falling back to the store.
func (s *Messages) getUser(ctx context.Context, uid string) (store.User, error) {
	if usr, found := s.users.Get(uid); found {
		return usr, nil
	}

	usr, err := s.store.GetUserByUID(ctx, uid)
	if err != nil {
		return store.User{}, err
	}

	s.users.SetWithTTL(uid, usr, 1, userCacheItemTTL)
	return usr, nil
}

func participant(usr store.User) store.Participant {
	return store.Participant{
		UID:       usr.UID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Picture:   usr.Picture,
	}
}
