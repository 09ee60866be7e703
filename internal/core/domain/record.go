package domain

import (
	"strconv"
	"time"
)

// MessageRecord is the canonical audit unit submitted to the policy service.
// String fields left empty are treated as unresolved and are omitted from the
// outgoing form body entirely; absence, not an empty value, is the "unknown"
// signal the service expects.
type MessageRecord struct {
	// Message
	MessageID    string
	IsForwarding bool
	Direction    Direction
	DateTime     string
	Message      string

	// Owner: the authenticated local user.
	OwnerID       string
	OwnerName     string
	OwnerPhone    string
	OwnerUsername string

	// Chat: the destination or container of the message.
	ChatID       string
	ChatType     ChatType
	ChatName     string
	ChatPhone    string
	ChatUsername string

	// Sender: who authored the message inside the chat, when not the owner.
	SenderID       string
	SenderName     string
	SenderUsername string
	SenderPhone    string

	// Source: the chat a forwarded message originated from.
	SourceID       string
	SourceName     string
	SourcePhone    string
	SourceUsername string

	// Author: the original author of forwarded content.
	AuthorID       string
	AuthorName     string
	AuthorUsername string
	AuthorPhone    string

	// Files
	FileID string
	File   *Attachment
}

// FormField is one key/value pair of the record's wire encoding.
type FormField struct {
	Key   string
	Value string
}

// FormFields returns the record's present scalar attributes in wire order.
// Unresolved (empty) fields yield no entry. The binary attachment is not
// included here; it travels as a separate file part.
func (r *MessageRecord) FormFields() []FormField {
	fields := []FormField{
		{Key: "isForwarding", Value: strconv.FormatBool(r.IsForwarding)},
		{Key: "messageId", Value: r.MessageID},
		{Key: "dateTime", Value: r.DateTime},
		{Key: "direction", Value: string(r.Direction)},
	}

	optional := []FormField{
		{Key: "message", Value: r.Message},

		{Key: "ownerId", Value: r.OwnerID},
		{Key: "ownerUsername", Value: r.OwnerUsername},
		{Key: "ownerName", Value: r.OwnerName},
		{Key: "ownerPhone", Value: r.OwnerPhone},

		{Key: "chatId", Value: r.ChatID},
		{Key: "chatUsername", Value: r.ChatUsername},
		{Key: "chatName", Value: r.ChatName},
		{Key: "chatPhone", Value: r.ChatPhone},
		{Key: "chatType", Value: string(r.ChatType)},

		{Key: "senderId", Value: r.SenderID},
		{Key: "senderUsername", Value: r.SenderUsername},
		{Key: "senderName", Value: r.SenderName},
		{Key: "senderPhone", Value: r.SenderPhone},

		{Key: "sourceId", Value: r.SourceID},
		{Key: "sourceUsername", Value: r.SourceUsername},
		{Key: "sourceName", Value: r.SourceName},
		{Key: "sourcePhone", Value: r.SourcePhone},

		{Key: "authorId", Value: r.AuthorID},
		{Key: "authorUsername", Value: r.AuthorUsername},
		{Key: "authorName", Value: r.AuthorName},
		{Key: "authorPhone", Value: r.AuthorPhone},

		{Key: "fileId", Value: r.FileID},
	}

	for _, f := range optional {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}

	return fields
}

// FormatDateTime renders a timestamp the way the policy service expects it:
// ISO-8601, UTC, second precision.
func FormatDateTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
