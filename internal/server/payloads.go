package server

import (
	"time"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// Entity payloads mirror the host client's already-loaded state. Every
// request may carry the users and chats it needs; the server folds them into
// its directory before interception.

type usernamePayload struct {
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

type userPayload struct {
	ID        string            `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Phone     string            `json:"phone"`
	Usernames []usernamePayload `json:"usernames"`
}

func (p userPayload) toDomain() domain.User {
	usernames := make([]domain.Username, 0, len(p.Usernames))
	for _, un := range p.Usernames {
		usernames = append(usernames, domain.Username{Username: un.Username, Active: un.Active})
	}

	return domain.User{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Usernames: usernames,
	}
}

type chatPayload struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

func (p chatPayload) toDomain() domain.Chat {
	return domain.Chat{
		ID:    p.ID,
		Type:  domain.ChatType(p.Type),
		Title: p.Title,
	}
}

type attachmentPayload struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

type draftPayload struct {
	Text         string             `json:"text"`
	IsForwarding bool               `json:"isForwarding"`
	Attachment   *attachmentPayload `json:"attachment"`
}

func (p draftPayload) toDomain() domain.Draft {
	draft := domain.Draft{
		Text:         p.Text,
		IsForwarding: p.IsForwarding,
	}

	if p.Attachment != nil {
		draft.Attachment = &domain.Attachment{
			Filename: p.Attachment.Filename,
			Data:     p.Attachment.Data,
		}
	}

	return draft
}

type forwardInfoPayload struct {
	FromChatID   string `json:"fromChatId"`
	FromSenderID string `json:"fromSenderId"`
}

type mediaPayload struct {
	Hash     string `json:"hash"`
	Filename string `json:"filename"`
}

type messagePayload struct {
	ID          string              `json:"id"`
	ChatID      string              `json:"chatId"`
	SenderID    string              `json:"senderId"`
	Text        string              `json:"text"`
	IsOutgoing  bool                `json:"isOutgoing"`
	Date        int64               `json:"date"`
	ForwardInfo *forwardInfoPayload `json:"forwardInfo"`
	Media       *mediaPayload       `json:"media"`
}

func (p messagePayload) toDomain() domain.Message {
	msg := domain.Message{
		ID:         p.ID,
		ChatID:     p.ChatID,
		SenderID:   p.SenderID,
		Text:       p.Text,
		IsOutgoing: p.IsOutgoing,
		Date:       time.Unix(p.Date, 0),
	}

	if p.ForwardInfo != nil {
		msg.ForwardInfo = &domain.ForwardInfo{
			FromChatID:   p.ForwardInfo.FromChatID,
			FromSenderID: p.ForwardInfo.FromSenderID,
		}
	}

	if p.Media != nil {
		msg.Media = &domain.MediaRef{
			Hash:     p.Media.Hash,
			Filename: p.Media.Filename,
		}
	}

	return msg
}

func toMessages(payloads []messagePayload) []domain.Message {
	messages := make([]domain.Message, 0, len(payloads))
	for _, p := range payloads {
		messages = append(messages, p.toDomain())
	}

	return messages
}

type entitiesPayload struct {
	Users []userPayload `json:"users"`
	Chats []chatPayload `json:"chats"`
}

type outgoingRequest struct {
	entitiesPayload
	OwnerID string       `json:"ownerId"`
	ChatID  string       `json:"chatId"`
	Draft   draftPayload `json:"draft"`
}

type forwardRequest struct {
	entitiesPayload
	OwnerID    string           `json:"ownerId"`
	ToChatID   string           `json:"toChatId"`
	FromChatID string           `json:"fromChatId"`
	Messages   []messagePayload `json:"messages"`
}

type deliveredRequest struct {
	entitiesPayload
	OwnerID string         `json:"ownerId"`
	Message messagePayload `json:"message"`
}

type verdictResponse struct {
	Block        bool   `json:"block"`
	BlockMessage string `json:"blockMessage,omitempty"`
}
