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

type usersService interface {
	ListOthers(ctx context.Context, callerID string) ([]store.User, error)
	Invite(ctx context.Context, email string) (service.InviteResponse, error)
}

// UsersAPI serves the contact list and the invite flow. Every route expects
// the caller to be authenticated already.
type UsersAPI struct {
	srv usersService
	mux *http.ServeMux
}

func NewUsersAPI(srv usersService) *UsersAPI {
	api := &UsersAPI{
		srv: srv,
		mux: http.NewServeMux(),
	}
	api.mount()
	return api
}

func (a *UsersAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *UsersAPI) mount() {
	a.mux.HandleFunc("GET /users", a.handleList)
	a.mux.HandleFunc("POST /users/invite", a.handleInvite)
}

func (a *UsersAPI) handleList(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFromContext(r.Context())

	users, err := a.srv.ListOthers(r.Context(), uid)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, usr := range users {
		resp = append(resp, newUserResponse(usr))
	}

	if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type inviteRequest struct {
	Email string `json:"email"`
}

type inviteResponse struct {
	Message      string `json:"msg"`
	TempPassword string `json:"tempPassword"`
}

func (a *UsersAPI) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := a.srv.Invite(r.Context(), req.Email)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, inviteResponse{
		Message:      "User invited successfully",
		TempPassword: resp.TempPassword,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}
