package policystate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

func TestState_DefaultBeforeAnyFetch(t *testing.T) {
	s := New()

	assert.False(t, s.Loaded())
	assert.Equal(t, domain.DefaultPolicy(), s.Current())
}

func TestState_SetThenCurrent(t *testing.T) {
	s := New()

	policy := domain.DlpPolicy{IsBlockIfOffline: false, BlockMessage: "nope", Telegram: true}
	s.Set(policy)

	assert.True(t, s.Loaded())
	assert.Equal(t, policy, s.Current())
}

func TestState_LastFetchWins(t *testing.T) {
	s := New()

	s.Set(domain.DlpPolicy{IsBlockIfOffline: true, Telegram: true})
	s.Set(domain.DlpPolicy{IsBlockIfOffline: false, Telegram: false})

	current := s.Current()

	assert.False(t, current.IsBlockIfOffline)
	assert.False(t, current.Telegram)
}
