// Package normalizer converts message-lifecycle inputs into canonical
// records for policy submission. Three shapes exist: a message about to be
// sent, a batch of messages being forwarded, and a message already persisted
// in a chat history.
package normalizer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
	"github.com/lueurxax/telegram-dlp-gateway/internal/core/ports"
)

// Normalizer builds MessageRecords from already-loaded client state. It
// performs lookups only; it never mutates the host client's entities.
type Normalizer struct {
	directory ports.Directory
	media     ports.MediaFetcher
	now       func() time.Time
	logger    *zerolog.Logger
}

func New(directory ports.Directory, media ports.MediaFetcher, logger *zerolog.Logger) *Normalizer {
	return &Normalizer{
		directory: directory,
		media:     media,
		now:       time.Now,
		logger:    logger,
	}
}

// Outgoing builds the record for a message about to be sent. The message has
// not round-tripped through the server yet, so the record carries a
// client-generated id derived from the current timestamp.
func (n *Normalizer) Outgoing(ctx context.Context, ownerID, chatID string, draft domain.Draft) (*domain.MessageRecord, error) {
	rec := &domain.MessageRecord{
		MessageID:    n.clientMessageID(),
		IsForwarding: draft.IsForwarding,
		Direction:    domain.DirectionOut,
		DateTime:     domain.FormatDateTime(n.now()),
		Message:      draft.Text,
	}

	if err := n.applyOwner(ctx, rec, ownerID); err != nil {
		return nil, err
	}

	if err := n.applyChat(ctx, rec, chatID); err != nil {
		return nil, err
	}

	n.applySender(ctx, rec, ownerID)

	if draft.Attachment != nil {
		rec.File = draft.Attachment
	}

	return rec, nil
}

// Forward builds one record per forwarded message. Records carry the source
// chat's identity and, where forward provenance is present, the original
// author's. Messages with downloadable media are not complete until the
// bytes resolve; a failed media fetch invalidates the whole batch.
func (n *Normalizer) Forward(ctx context.Context, ownerID, toChatID, fromChatID string, messages []domain.Message) ([]*domain.MessageRecord, error) {
	source, err := n.directory.ChatByID(ctx, fromChatID)
	if err != nil {
		return nil, fmt.Errorf("look up source chat: %w", err)
	}

	if source == nil {
		return nil, errs.ErrSourceNotResolved
	}

	sourceUser, err := n.directory.UserByID(ctx, fromChatID)
	if err != nil {
		return nil, fmt.Errorf("look up source user: %w", err)
	}

	records := make([]*domain.MessageRecord, 0, len(messages))

	for i := range messages {
		msg := &messages[i]

		rec := &domain.MessageRecord{
			MessageID:    n.clientMessageID(),
			IsForwarding: true,
			Direction:    domain.DirectionOut,
			DateTime:     domain.FormatDateTime(n.now()),
			Message:      msg.Text,
		}

		if err := n.applyOwner(ctx, rec, ownerID); err != nil {
			return nil, err
		}

		if err := n.applyChat(ctx, rec, toChatID); err != nil {
			return nil, err
		}

		n.applySender(ctx, rec, ownerID)

		rec.SourceID = source.ID
		rec.SourceName = source.Title
		if rec.SourceName == "" {
			rec.SourceName = sourceUser.DisplayName()
		}

		if sourceUser != nil {
			rec.SourcePhone = sourceUser.Phone
			rec.SourceUsername = sourceUser.ActiveUsername()
		}

		if err := n.applyForwardOrigin(ctx, rec, source.Type, msg.ForwardInfo); err != nil {
			return nil, err
		}

		if msg.Media != nil {
			if n.media == nil {
				return nil, fmt.Errorf("resolve media %s: %w", msg.Media.Hash, errs.ErrMediaNotFound)
			}

			data, err := n.media.FetchMedia(ctx, *msg.Media)
			if err != nil {
				return nil, fmt.Errorf("resolve media %s: %w", msg.Media.Hash, err)
			}

			rec.File = &domain.Attachment{Filename: msg.Media.Filename, Data: data}
		}

		records = append(records, rec)
	}

	return records, nil
}

// Delivered builds the record for a message already persisted in a chat
// history. Direction and timestamp come from the message itself, not from
// the wall clock.
func (n *Normalizer) Delivered(ctx context.Context, ownerID string, msg domain.Message) (*domain.MessageRecord, error) {
	direction := domain.DirectionIn
	if msg.IsOutgoing {
		direction = domain.DirectionOut
	}

	rec := &domain.MessageRecord{
		MessageID:    msg.ID,
		IsForwarding: msg.IsForward(),
		Direction:    direction,
		DateTime:     domain.FormatDateTime(msg.Date),
		Message:      msg.Text,
	}

	if err := n.applyOwner(ctx, rec, ownerID); err != nil {
		return nil, err
	}

	if err := n.applyChat(ctx, rec, msg.ChatID); err != nil {
		return nil, err
	}

	n.applySender(ctx, rec, msg.SenderID)

	if msg.ForwardInfo != nil {
		source, err := n.directory.ChatByID(ctx, msg.ForwardInfo.FromChatID)
		if err != nil {
			return nil, fmt.Errorf("look up forward source: %w", err)
		}

		if source != nil {
			rec.SourceID = source.ID
			rec.SourceName = source.Title
		}

		if err := n.applyForwardOrigin(ctx, rec, rec.ChatType, msg.ForwardInfo); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// applyOwner fills the owner fields or reports the owner as unresolvable.
func (n *Normalizer) applyOwner(ctx context.Context, rec *domain.MessageRecord, ownerID string) error {
	if ownerID == "" {
		return errs.ErrOwnerNotResolved
	}

	owner, err := n.directory.UserByID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("look up owner: %w", err)
	}

	if owner == nil {
		return errs.ErrOwnerNotResolved
	}

	rec.OwnerID = owner.ID
	rec.OwnerName = owner.DisplayName()
	rec.OwnerPhone = owner.Phone
	rec.OwnerUsername = owner.ActiveUsername()

	return nil
}

// applyChat fills the destination chat fields. For one-to-one chats the
// stored title is usually empty and the peer user supplies the name, phone
// and username instead.
func (n *Normalizer) applyChat(ctx context.Context, rec *domain.MessageRecord, chatID string) error {
	if chatID == "" {
		return errs.ErrChatNotResolved
	}

	chat, err := n.directory.ChatByID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("look up chat: %w", err)
	}

	if chat == nil {
		return errs.ErrChatNotResolved
	}

	peer, err := n.directory.UserByID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("look up chat peer: %w", err)
	}

	rec.ChatID = chat.ID
	rec.ChatType = chat.Type
	rec.ChatName = chat.Title

	if rec.ChatName == "" {
		rec.ChatName = peer.DisplayName()
	}

	if peer != nil {
		rec.ChatPhone = peer.Phone
		rec.ChatUsername = peer.ActiveUsername()
	}

	return nil
}

// applySender fills group/channel sender attribution. One-to-one chats carry
// no sender fields: the peer identity already lives in the chat fields.
// Chat resolution is tried first (channels post as their own chat identity),
// user resolution second. Attribution applies uniformly to all three
// lifecycle shapes.
func (n *Normalizer) applySender(ctx context.Context, rec *domain.MessageRecord, senderID string) {
	if senderID == "" || rec.ChatType == domain.ChatTypeUser {
		return
	}

	if chat, err := n.directory.ChatByID(ctx, senderID); err == nil && chat != nil {
		rec.SenderID = chat.ID
		rec.SenderName = chat.Title

		return
	}

	user, err := n.directory.UserByID(ctx, senderID)
	if err != nil || user == nil {
		return
	}

	rec.SenderID = user.ID
	rec.SenderName = user.DisplayName()
	rec.SenderUsername = user.ActiveUsername()
}

// applyForwardOrigin resolves the original author of forwarded content. When
// the source side is a one-to-one conversation the author's identity also
// overrides the source name, and the author's phone lands in senderPhone.
func (n *Normalizer) applyForwardOrigin(ctx context.Context, rec *domain.MessageRecord, sourceType domain.ChatType, info *domain.ForwardInfo) error {
	if info == nil || info.FromChatID == "" || info.FromSenderID == "" {
		return nil
	}

	author, err := n.directory.UserByID(ctx, info.FromSenderID)
	if err != nil {
		return fmt.Errorf("look up forward author: %w", err)
	}

	if author == nil {
		return nil
	}

	if sourceType == domain.ChatTypeUser {
		rec.SourceName = author.DisplayName()
		rec.SenderPhone = author.Phone
	}

	rec.AuthorID = author.ID
	rec.AuthorName = author.DisplayName()
	rec.AuthorUsername = author.ActiveUsername()
	rec.AuthorPhone = author.Phone

	return nil
}

// clientMessageID derives a pre-send message id from the current timestamp.
// The "f" prefix keeps it distinguishable from server-assigned ids.
func (n *Normalizer) clientMessageID() string {
	return "f" + strconv.FormatInt(n.now().UnixMilli(), 10)
}
