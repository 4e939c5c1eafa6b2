package rest

import (
	"time"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
)

// userResponse is a User as served to clients. There is no credential field
// to omit: the store never reads the password column back.
type userResponse struct {
	ID         string    `json:"id"`
	LinkedInID string    `json:"linkedinId,omitempty"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Picture    string    `json:"profilePicture,omitempty"`
	Headline   string    `json:"headline,omitempty"`
	IsInvited  bool      `json:"isInvited"`
	CreatedAt  time.Time `json:"createdAt"`
	LastLogin  time.Time `json:"lastLogin"`
}

func newUserResponse(usr store.User) userResponse {
	return userResponse{
		ID:         usr.UID,
		LinkedInID: usr.LinkedInID,
		Email:      usr.Email,
		FirstName:  usr.FirstName,
		LastName:   usr.LastName,
		Picture:    usr.Picture,
		Headline:   usr.Headline,
		IsInvited:  usr.Invited,
		CreatedAt:  usr.CreatedAt,
		LastLogin:  usr.LastLogin,
	}
}

type participantResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Picture   string `json:"profilePicture,omitempty"`
}

type messageResponse struct {
	ID        int64               `json:"id"`
	Sender    participantResponse `json:"sender"`
	Receiver  participantResponse `json:"receiver"`
	Content   string              `json:"content"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"createdAt"`
}

func newMessageResponse(msg store.ConversationMessage) messageResponse {
	return messageResponse{
		ID:        msg.ID,
		Sender:    newParticipantResponse(msg.Sender),
		Receiver:  newParticipantResponse(msg.Receiver),
		Content:   msg.Content,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	}
}

func newParticipantResponse(p store.Participant) participantResponse {
	return participantResponse{
		ID:        p.UID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Picture:   p.Picture,
	}
}
