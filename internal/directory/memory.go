// Package directory provides the entity lookups the gateway consumes: users
// and chats already known to the host client. The in-memory implementation
// is fed either from sidecar request payloads or from MTProto entities via
// the adapters in telegram.go.
package directory

import (
	"context"
	"sync"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// Memory is a concurrency-safe in-memory Directory.
type Memory struct {
	mu    sync.RWMutex
	users map[string]domain.User
	chats map[string]domain.Chat
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]domain.User),
		chats: make(map[string]domain.Chat),
	}
}

// PutUser stores or replaces a user.
func (m *Memory) PutUser(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
}

// PutChat stores or replaces a chat.
func (m *Memory) PutChat(chat domain.Chat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chats[chat.ID] = chat
}

// UserByID returns the user or (nil, nil) when unknown.
func (m *Memory) UserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}

	return &user, nil
}

// ChatByID returns the chat or (nil, nil) when unknown.
func (m *Memory) ChatByID(_ context.Context, id string) (*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chat, ok := m.chats[id]
	if !ok {
		return nil, nil
	}

	return &chat, nil
}
