package store

type CreateUserRequest struct {
	UID        string
	LinkedInID string
	Email      string
	FirstName  string
	LastName   string
	Picture    string
	Headline   string
	Password   string
	Invited    bool
}

// RefreshUserProfileRequest updates mutable profile fields and bumps
// last_login. Empty fields keep their stored value.
type RefreshUserProfileRequest struct {
	UID       string
	FirstName string
	LastName  string
	Picture   string
	Headline  string
}

// AttachLinkedInIDRequest links an external identity to a pre-existing
// account and refreshes its profile fields. Attaching clears any stored
// password: externally authenticated accounts never require one.
type AttachLinkedInIDRequest struct {
	UID        string
	LinkedInID string
	FirstName  string
	LastName   string
	Picture    string
	Headline   string
}

type InsertMessageRequest struct {
	SenderID   int64
	ReceiverID int64
	Content    string
}

// ConversationRequest selects all messages between two users in either
// direction, keyed by their opaque uids.
type ConversationRequest struct {
	UserA string
	UserB string
}

// MarkReadRequest flips the read flag on unread messages flowing from
// SenderUID to ReceiverUID. The opposite direction is untouched.
type MarkReadRequest struct {
	SenderUID   string
	ReceiverUID string
}
