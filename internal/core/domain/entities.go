package domain

import (
	"strings"
	"time"
)

// ChatType classifies the destination or source container of a message.
type ChatType string

const (
	ChatTypeUser      ChatType = "user"
	ChatTypeGroup     ChatType = "group"
	ChatTypeMegaGroup ChatType = "megaGroup"
	ChatTypeChannel   ChatType = "channel"
)

// Direction tells whether a message entered or left the local client.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Username is one entry of a user's username list. Telegram users can hold
// several usernames of which only some are active at a time.
type Username struct {
	Username string
	Active   bool
}

// User is the locally known identity of a Telegram user: the owner of the
// client, a chat peer, or the origin author of a forwarded message.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Usernames []Username
}

// DisplayName joins first and last name with a single space and trims the
// result. Resolving the same user twice always yields the same string.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}

	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ActiveUsername returns the first username flagged active, in list order.
// Earlier client builds disagreed on which active entry to prefer; the first
// match is the standardized rule.
func (u *User) ActiveUsername() string {
	if u == nil {
		return ""
	}

	for _, un := range u.Usernames {
		if un.Active {
			return un.Username
		}
	}

	return ""
}

// Chat is the locally known identity of a message container.
// For one-to-one chats the Title is usually empty and the peer user carries
// the displayable identity instead.
type Chat struct {
	ID    string
	Type  ChatType
	Title string
}

// Attachment holds resolved binary content travelling with a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// MediaRef points at downloadable media that has not been resolved to bytes
// yet. The hash addresses the client media cache and the remote store.
type MediaRef struct {
	Hash     string
	Filename string
}

// ForwardInfo is the forward provenance carried by a forwarded message: the
// chat it came from and the sender that authored it there.
type ForwardInfo struct {
	FromChatID   string
	FromSenderID string
}

// Draft is a not-yet-sent outgoing message.
type Draft struct {
	Text         string
	IsForwarding bool
	Attachment   *Attachment
}

// Message is an already existing message, either one being forwarded or one
// already persisted in a chat history.
type Message struct {
	ID          string
	ChatID      string
	SenderID    string
	Text        string
	IsOutgoing  bool
	Date        time.Time
	ForwardInfo *ForwardInfo
	Media       *MediaRef
}

// IsForward reports whether the message carries forward provenance.
func (m *Message) IsForward() bool {
	return m.ForwardInfo != nil
}
