package rest

import (
	"context"
	"net/http"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/httpx"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/middleware"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/serr"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/service"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

type messagesService interface {
	Send(ctx context.Context, r service.SendRequest) (store.ConversationMessage, error)
	History(ctx context.Context, r service.HistoryRequest) ([]store.ConversationMessage, error)
	MarkRead(ctx context.Context, r service.MarkReadRequest) error
}

// MessagesAPI serves the messaging endpoints. Every route expects the caller
// to be authenticated already.
type MessagesAPI struct {
	srv messagesService
	mux *http.ServeMux
}

func NewMessagesAPI(srv messagesService) *MessagesAPI {
	api := &MessagesAPI{
		srv: srv,
		mux: http.NewServeMux(),
	}
	api.mount()
	return api
}

func (a *MessagesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *MessagesAPI) mount() {
	a.mux.HandleFunc("POST /messages", a.handleSend)
	a.mux.HandleFunc("GET /messages/{userId}", a.handleHistory)
	a.mux.HandleFunc("PUT /messages/read/{userId}", a.handleMarkRead)
}

type sendRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (a *MessagesAPI) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	msg, err := a.srv.Send(r.Context(), service.SendRequest{
		SenderID:   middleware.UserIDFromContext(r.Context()),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusCreated, newMessageResponse(msg)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *MessagesAPI) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.srv.History(r.Context(), service.HistoryRequest{
		UserID: middleware.UserIDFromContext(r.Context()),
		PeerID: r.PathValue("userId"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, newMessageResponse(msg))
	}

	if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type markReadResponse struct {
	Message string `json:"message"`
}

func (a *MessagesAPI) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	err := a.srv.MarkRead(r.Context(), service.MarkReadRequest{
		ReceiverID: middleware.UserIDFromContext(r.Context()),
		SenderID:   r.PathValue("userId"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, markReadResponse{Message: "Messages marked as read"}); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}
