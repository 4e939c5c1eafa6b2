package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

func usersByUID(users ...store.User) func(ctx context.Context, uid string) (store.User, error) {
	byUID := make(map[string]store.User, len(users))
	for _, usr := range users {
		byUID[usr.UID] = usr
	}

	return func(ctx context.Context, uid string) (store.User, error) {
		usr, ok := byUID[uid]
		if !ok {
			return store.User{}, store.ErrNotFound
		}

		return usr, nil
	}
}

func TestMessages_Send(t *testing.T) {
	sender := store.User{ID: 1, UID: "uid-1", FirstName: "Ann", LastName: "Lee", Picture: "pic-a"}
	receiver := store.User{ID: 2, UID: "uid-2", FirstName: "Bob"}

	var inserted store.InsertMessageRequest
	srv := NewMessages(&mockStore{
		getByUIDFunc: usersByUID(sender, receiver),
		insertMessageFunc: func(ctx context.Context, r store.InsertMessageRequest) (store.Message, error) {
			inserted = r
			return store.Message{
				ID:         7,
				SenderID:   r.SenderID,
				ReceiverID: r.ReceiverID,
				Content:    r.Content,
				CreatedAt:  time.Now(),
			}, nil
		},
	})

	msg, err := srv.Send(t.Context(), SendRequest{SenderID: "uid-1", ReceiverID: "uid-2", Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), inserted.SenderID)
	assert.Equal(t, int64(2), inserted.ReceiverID)
	assert.Equal(t, "hi", msg.Content)
	assert.False(t, msg.Read)
	assert.Equal(t, "Ann", msg.Sender.FirstName)
	assert.Equal(t, "pic-a", msg.Sender.Picture)
	assert.Equal(t, "Bob", msg.Receiver.FirstName)
}

func TestMessages_Send_EmptyContent(t *testing.T) {
	called := false
	srv := NewMessages(&mockStore{
		getByUIDFunc: func(ctx context.Context, uid string) (store.User, error) {
			called = true
			return store.User{}, nil
		},
	})

	_, err := srv.Send(t.Context(), SendRequest{SenderID: "uid-1", ReceiverID: "uid-2", Content: "   "})
	require.Error(t, err)

	var sErr *serr.ServiceError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.StatusCode)
	assert.False(t, called)
}

func TestMessages_Send_ReceiverNotFound(t *testing.T) {
	sender := store.User{ID: 1, UID: "uid-1"}
	srv := NewMessages(&mockStore{
		getByUIDFunc: usersByUID(sender),
	})

	_, err := srv.Send(t.Context(), SendRequest{SenderID: "uid-1", ReceiverID: "uid-missing", Content: "hi"})
	require.Error(t, err)

	var sErr *serr.ServiceError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusNotFound, sErr.StatusCode)
}

func TestMessages_Send_ToSelf(t *testing.T) {
	me := store.User{ID: 1, UID: "uid-1", FirstName: "Ann"}
	srv := NewMessages(&mockStore{
		getByUIDFunc: usersByUID(me),
		insertMessageFunc: func(ctx context.Context, r store.InsertMessageRequest) (store.Message, error) {
			return store.Message{ID: 1, SenderID: r.SenderID, ReceiverID: r.ReceiverID, Content: r.Content}, nil
		},
	})

	msg, err := srv.Send(t.Context(), SendRequest{SenderID: "uid-1", ReceiverID: "uid-1", Content: "note to self"})
	require.NoError(t, err)
	assert.Equal(t, msg.Sender.UID, msg.Receiver.UID)
}

func TestMessages_History(t *testing.T) {
	peer := store.User{ID: 2, UID: "uid-2"}
	srv := NewMessages(&mockStore{
		getByUIDFunc: usersByUID(peer),
		conversationFunc: func(ctx context.Context, r store.ConversationRequest) ([]store.ConversationMessage, error) {
			assert.Equal(t, "uid-1", r.UserA)
			assert.Equal(t, "uid-2", r.UserB)
			return []store.ConversationMessage{
				{Message: store.Message{ID: 1, Content: "hi"}},
				{Message: store.Message{ID: 2, Content: "hello"}},
			}, nil
		},
	})

	msgs, err := srv.History(t.Context(), HistoryRequest{UserID: "uid-1", PeerID: "uid-2"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
}

func TestMessages_History_PeerNotFound(t *testing.T) {
	srv := NewMessages(&mockStore{
		getByUIDFunc: usersByUID(),
	})

	_, err := srv.History(t.Context(), HistoryRequest{UserID: "uid-1", PeerID: "uid-missing"})
	require.Error(t, err)

	var sErr *serr.ServiceError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusNotFound, sErr.StatusCode)
}

func TestMessages_MarkRead(t *testing.T) {
	var marked store.MarkReadRequest
	srv := NewMessages(&mockStore{
		markReadFunc: func(ctx context.Context, r store.MarkReadRequest) (int64, error) {
			marked = r
			return 3, nil
		},
	})

	err := srv.MarkRead(t.Context(), MarkReadRequest{ReceiverID: "uid-1", SenderID: "uid-2"})
	require.NoError(t, err)

	assert.Equal(t, "uid-2", marked.SenderUID)
	assert.Equal(t, "uid-1", marked.ReceiverUID)
}

func TestMessages_SenderCached(t *testing.T) {
	lookups := 0
	sender := store.User{ID: 1, UID: "uid-1"}
	receiver := store.User{ID: 2, UID: "uid-2"}
	lookup := usersByUID(sender, receiver)

	srv := NewMessages(&mockStore{
		getByUIDFunc: func(ctx context.Context, uid string) (store.User, error) {
			lookups++
			return lookup(ctx, uid)
		},
		insertMessageFunc: func(ctx context.Context, r store.InsertMessageRequest) (store.Message, error) {
			return store.Message{}, nil
		},
	})

	for range 5 {
		_, err := srv.Send(t.Context(), SendRequest{SenderID: "uid-1", ReceiverID: "uid-2", Content: "hi"})
		require.NoError(t, err)
	}

	// The cache admits entries asynchronously, so we can only bound the
	// lookup count, not pin it.
	assert.GreaterOrEqual(t, lookups, 2)
	assert.LessOrEqual(t, lookups, 10)
}
