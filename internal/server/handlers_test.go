package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	"github.com/lueurxax/telegram-dlp-gateway/internal/directory"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/gateway"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/normalizer"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policystate"
)

type scriptedService struct {
	blocked bool
}

func (s *scriptedService) FetchPolicy(context.Context) domain.DlpPolicy {
	return domain.DefaultPolicy()
}

func (s *scriptedService) SubmitRecord(context.Context, *domain.MessageRecord) (bool, error) {
	return s.blocked, nil
}

func newTestServer(blocked bool) *Server {
	logger := zerolog.Nop()
	dir := directory.NewMemory()
	state := policystate.New()

	norm := normalizer.New(dir, nil, &logger)
	gw := gateway.New(norm, &scriptedService{blocked: blocked}, state, &logger)

	return New(gw, state, dir, 0, &logger)
}

const outgoingBody = `{
	"users": [
		{"id": "u1", "firstName": "Ann", "lastName": "Lee"},
		{"id": "c1", "firstName": "Bob", "phone": "+100"}
	],
	"chats": [
		{"id": "c1", "type": "user"}
	],
	"ownerId": "u1",
	"chatId": "c1",
	"draft": {"text": "hello"}
}`

func TestHandleOutgoing_Blocked(t *testing.T) {
	s := newTestServer(true)

	req := httptest.NewRequest(http.MethodPost, "/intercept/outgoing", strings.NewReader(outgoingBody))
	rec := httptest.NewRecorder()

	s.handleOutgoing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp verdictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Block)
	assert.Equal(t, domain.DefaultBlockMessage, resp.BlockMessage)
}

func TestHandleOutgoing_Allowed(t *testing.T) {
	s := newTestServer(false)

	req := httptest.NewRequest(http.MethodPost, "/intercept/outgoing", strings.NewReader(outgoingBody))
	rec := httptest.NewRecorder()

	s.handleOutgoing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp verdictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Block)
	assert.Empty(t, resp.BlockMessage)
}

func TestHandleOutgoing_BadBody(t *testing.T) {
	s := newTestServer(false)

	req := httptest.NewRequest(http.MethodPost, "/intercept/outgoing", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	s.handleOutgoing(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleForward_EntitiesFolded(t *testing.T) {
	s := newTestServer(true)

	body := `{
		"users": [{"id": "u1", "firstName": "Ann"}, {"id": "c1", "firstName": "Bob"}],
		"chats": [
			{"id": "c1", "type": "user"},
			{"id": "src", "type": "group", "title": "Team"}
		],
		"ownerId": "u1",
		"toChatId": "c1",
		"fromChatId": "src",
		"messages": [{"id": "1", "text": "fwd"}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/intercept/forward", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleForward(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp verdictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Block)

	// Folded entities persist for later calls.
	chat, err := s.directory.ChatByID(context.Background(), "src")
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "Team", chat.Title)
}

func TestHandleDelivered_WaitsForCompletion(t *testing.T) {
	s := newTestServer(true)

	body := `{
		"users": [{"id": "u1", "firstName": "Ann"}, {"id": "c1", "firstName": "Bob"}],
		"chats": [{"id": "c1", "type": "user"}],
		"ownerId": "u1",
		"message": {"id": "9", "chatId": "c1", "isOutgoing": true, "date": 1756461600}
	}`

	req := httptest.NewRequest(http.MethodPost, "/record/delivered", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleDelivered(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp verdictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Block)
}

func TestHandlePolicy(t *testing.T) {
	s := newTestServer(false)
	s.state.Set(domain.DlpPolicy{IsBlockIfOffline: true, BlockMessage: "halt", Telegram: true})

	req := httptest.NewRequest(http.MethodGet, "/policy", nil)
	rec := httptest.NewRecorder()

	s.handlePolicy(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var policy domain.DlpPolicy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &policy))
	assert.Equal(t, "halt", policy.BlockMessage)
}
