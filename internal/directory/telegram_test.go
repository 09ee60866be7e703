package directory

import (
	"context"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

func TestUserFromTelegram_LegacyUsername(t *testing.T) {
	u := UserFromTelegram(&tg.User{
		ID:        42,
		FirstName: "Ann",
		LastName:  "Lee",
		Phone:     "+100",
		Username:  "annlee",
	})

	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "Ann Lee", u.DisplayName())
	assert.Equal(t, "annlee", u.ActiveUsername())
}

func TestUserFromTelegram_UsernameList(t *testing.T) {
	u := UserFromTelegram(&tg.User{
		ID:       42,
		Username: "legacy",
		Usernames: []tg.Username{
			{Username: "retired", Active: false},
			{Username: "current", Active: true},
		},
	})

	// The explicit list wins over the legacy field; first active entry is
	// the user's active username.
	assert.Equal(t, "current", u.ActiveUsername())
}

func TestChatFromClass_Types(t *testing.T) {
	group, ok := ChatFromClass(&tg.Chat{ID: 7, Title: "Team"})
	require.True(t, ok)
	assert.Equal(t, "-7", group.ID)
	assert.Equal(t, domain.ChatTypeGroup, group.Type)

	channel, ok := ChatFromClass(&tg.Channel{ID: 9, Title: "Feed", Broadcast: true})
	require.True(t, ok)
	assert.Equal(t, "-1009", channel.ID)
	assert.Equal(t, domain.ChatTypeChannel, channel.Type)

	mega, ok := ChatFromClass(&tg.Channel{ID: 11, Title: "Big", Megagroup: true})
	require.True(t, ok)
	assert.Equal(t, domain.ChatTypeMegaGroup, mega.Type)

	_, ok = ChatFromClass(&tg.ChatForbidden{ID: 13})
	assert.False(t, ok)
}

func TestMemory_PutTelegramUser(t *testing.T) {
	m := NewMemory()

	id := m.PutTelegramUser(&tg.User{ID: 42, FirstName: "Ann", Phone: "+100"})
	require.Equal(t, "42", id)

	user, err := m.UserByID(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "+100", user.Phone)

	// The one-to-one chat exists alongside the user, untitled.
	chat, err := m.ChatByID(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, domain.ChatTypeUser, chat.Type)
	assert.Empty(t, chat.Title)
}

func TestMemory_UnknownLookups(t *testing.T) {
	m := NewMemory()

	user, err := m.UserByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, user)

	chat, err := m.ChatByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, chat)
}
