package directory

import (
	"strconv"

	"github.com/gotd/td/tg"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// String ids follow the web client convention: users keep their bare id,
// basic groups are negated, channels and megagroups get the -100 prefix.
func UserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func GroupChatID(id int64) string {
	return "-" + strconv.FormatInt(id, 10)
}

func ChannelChatID(id int64) string {
	return "-100" + strconv.FormatInt(id, 10)
}

// UserFromTelegram maps an MTProto user into the gateway's domain. The
// legacy single username field is folded into the username list as an
// implicitly active first entry when the list is empty.
func UserFromTelegram(user *tg.User) domain.User {
	usernames := make([]domain.Username, 0, len(user.Usernames)+1)

	if len(user.Usernames) == 0 && user.Username != "" {
		usernames = append(usernames, domain.Username{Username: user.Username, Active: true})
	}

	for _, un := range user.Usernames {
		usernames = append(usernames, domain.Username{Username: un.Username, Active: un.Active})
	}

	return domain.User{
		ID:        UserID(user.ID),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Usernames: usernames,
	}
}

// PeerChatFromUser maps a one-to-one conversation. Such chats carry no title
// of their own; the peer user supplies the displayable identity.
func PeerChatFromUser(user *tg.User) domain.Chat {
	return domain.Chat{
		ID:   UserID(user.ID),
		Type: domain.ChatTypeUser,
	}
}

// ChatFromTelegram maps a basic group.
func ChatFromTelegram(chat *tg.Chat) domain.Chat {
	return domain.Chat{
		ID:    GroupChatID(chat.ID),
		Type:  domain.ChatTypeGroup,
		Title: chat.Title,
	}
}

// ChatFromChannel maps a channel or megagroup to its chat type.
func ChatFromChannel(channel *tg.Channel) domain.Chat {
	chatType := domain.ChatTypeChannel
	if channel.Megagroup {
		chatType = domain.ChatTypeMegaGroup
	}

	return domain.Chat{
		ID:    ChannelChatID(channel.ID),
		Type:  chatType,
		Title: channel.Title,
	}
}

// ChatFromClass maps any MTProto chat flavor. Forbidden and deleted flavors
// carry no usable identity and are skipped.
func ChatFromClass(chat tg.ChatClass) (domain.Chat, bool) {
	switch c := chat.(type) {
	case *tg.Chat:
		return ChatFromTelegram(c), true
	case *tg.Channel:
		return ChatFromChannel(c), true
	default:
		return domain.Chat{}, false
	}
}

// PutTelegramUser stores an MTProto user, including the implicit one-to-one
// chat it represents, and returns the mapped id.
func (m *Memory) PutTelegramUser(user *tg.User) string {
	mapped := UserFromTelegram(user)
	m.PutUser(mapped)
	m.PutChat(PeerChatFromUser(user))

	return mapped.ID
}

// PutTelegramChat stores an MTProto chat and returns the mapped id, or ""
// when the flavor carries no identity.
func (m *Memory) PutTelegramChat(chat tg.ChatClass) string {
	mapped, ok := ChatFromClass(chat)
	if !ok {
		return ""
	}

	m.PutChat(mapped)

	return mapped.ID
}
