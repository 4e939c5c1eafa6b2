package store

import "time"

// User is one account row. UID is the opaque identifier exposed outside the
// store; ID is the serial primary key used for foreign keys only. The
// password column is write-only and deliberately has no field here, so no
// query path can leak it.
type User struct {
	ID         int64
	UID        string
	LinkedInID string
	Email      string
	FirstName  string
	LastName   string
	Picture    string
	Headline   string
	Invited    bool
	CreatedAt  time.Time
	LastLogin  time.Time
}

// Message is one directed text message as stored. ID is a monotonic serial
// and breaks ordering ties between messages sharing a created_at.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	Read       bool
	CreatedAt  time.Time
}

// Participant holds the display fields of one side of a conversation.
type Participant struct {
	UID       string
	FirstName string
	LastName  string
	Picture   string
}

// ConversationMessage is a message joined with both participants' display
// fields, ready to serve without a second lookup.
type ConversationMessage struct {
	Message
	Sender   Participant
	Receiver Participant
}
