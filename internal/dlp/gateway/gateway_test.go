package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
	"github.com/lueurxax/telegram-dlp-gateway/internal/directory"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/normalizer"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policystate"
)

type stubService struct {
	submits atomic.Int64
	submit  func(record *domain.MessageRecord) (bool, error)
}

func (s *stubService) FetchPolicy(context.Context) domain.DlpPolicy {
	return domain.DefaultPolicy()
}

func (s *stubService) SubmitRecord(_ context.Context, record *domain.MessageRecord) (bool, error) {
	s.submits.Add(1)

	if s.submit == nil {
		return false, nil
	}

	return s.submit(record)
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (j *memoryJournal) SaveAudit(_ context.Context, entry domain.AuditEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)

	return nil
}

func seededDirectory() *directory.Memory {
	dir := directory.NewMemory()
	dir.PutUser(domain.User{ID: "u1", FirstName: "Ann", LastName: "Lee"})
	dir.PutChat(domain.Chat{ID: "c1", Type: domain.ChatTypeUser})
	dir.PutUser(domain.User{ID: "c1", FirstName: "Bob"})
	dir.PutChat(domain.Chat{ID: "src", Type: domain.ChatTypeGroup, Title: "Team"})

	return dir
}

func newTestGateway(service *stubService, state *policystate.State, opts ...Option) *Gateway {
	logger := zerolog.Nop()
	norm := normalizer.New(seededDirectory(), nil, &logger)

	return New(norm, service, state, &logger, opts...)
}

func TestInterceptOutgoing_BlockVerdict(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return true, nil
	}}

	g := newTestGateway(service, policystate.New())

	blocked := g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "secret"})

	assert.True(t, blocked)
	assert.EqualValues(t, 1, service.submits.Load())
}

func TestInterceptOutgoing_VerdictBeatsOfflineFlag(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return true, nil
	}}

	state := policystate.New()
	state.Set(domain.DlpPolicy{IsBlockIfOffline: false, Telegram: true})

	g := newTestGateway(service, state)

	// An explicit verdict always wins over the offline fallback setting.
	assert.True(t, g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "x"}))
}

func TestInterceptOutgoing_OwnerUnresolved_NoNetworkCall(t *testing.T) {
	service := &stubService{}

	g := newTestGateway(service, policystate.New())

	blocked := g.InterceptOutgoing(context.Background(), "nobody", "c1", domain.Draft{Text: "x"})

	assert.False(t, blocked)
	assert.EqualValues(t, 0, service.submits.Load())
}

func TestInterceptOutgoing_TimeoutAppliesOfflineFallback(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return false, errs.ErrSubmitTimeout
	}}

	for _, blockIfOffline := range []bool{true, false} {
		state := policystate.New()
		state.Set(domain.DlpPolicy{IsBlockIfOffline: blockIfOffline, Telegram: true})

		g := newTestGateway(service, state)

		blocked := g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "x"})

		assert.Equal(t, blockIfOffline, blocked)
	}
}

func TestInterceptOutgoing_TransportFailureFailsOpen(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return false, errs.ErrSubmitRejected
	}}

	state := policystate.New()
	state.Set(domain.DlpPolicy{IsBlockIfOffline: true, Telegram: true})

	g := newTestGateway(service, state)

	// Only a timeout consults the offline flag; plain transport failures
	// always allow.
	assert.False(t, g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "x"}))
}

func TestInterceptOutgoing_InterceptionDisabled(t *testing.T) {
	service := &stubService{}

	state := policystate.New()
	state.Set(domain.DlpPolicy{IsBlockIfOffline: true, Telegram: false})

	g := newTestGateway(service, state)

	assert.False(t, g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "x"}))
	assert.EqualValues(t, 0, service.submits.Load())
}

func TestInterceptForward_BatchOR(t *testing.T) {
	cases := []struct {
		name     string
		verdicts map[string]bool
		want     bool
	}{
		{name: "all allowed", verdicts: map[string]bool{"a": false, "b": false, "c": false}, want: false},
		{name: "one blocked", verdicts: map[string]bool{"a": false, "b": true, "c": false}, want: true},
		{name: "all blocked", verdicts: map[string]bool{"a": true, "b": true, "c": true}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubService{submit: func(record *domain.MessageRecord) (bool, error) {
				return tc.verdicts[record.Message], nil
			}}

			g := newTestGateway(service, policystate.New())

			messages := []domain.Message{
				{ID: "1", Text: "a"},
				{ID: "2", Text: "b"},
				{ID: "3", Text: "c"},
			}

			blocked := g.InterceptForward(context.Background(), "u1", "c1", "src", messages)

			assert.Equal(t, tc.want, blocked)
			assert.EqualValues(t, 3, service.submits.Load())
		})
	}
}

func TestInterceptForward_AllowedPlusTimeoutWithOfflineBlock(t *testing.T) {
	service := &stubService{submit: func(record *domain.MessageRecord) (bool, error) {
		if record.Message == "slow" {
			return false, errs.ErrSubmitTimeout
		}

		return false, nil
	}}

	state := policystate.New()
	state.Set(domain.DlpPolicy{IsBlockIfOffline: true, Telegram: true})

	g := newTestGateway(service, state)

	messages := []domain.Message{
		{ID: "1", Text: "fine"},
		{ID: "2", Text: "slow"},
	}

	assert.True(t, g.InterceptForward(context.Background(), "u1", "c1", "src", messages))
}

func TestInterceptForward_SourceUnresolved(t *testing.T) {
	service := &stubService{}

	g := newTestGateway(service, policystate.New())

	blocked := g.InterceptForward(context.Background(), "u1", "c1", "missing", []domain.Message{{ID: "1"}})

	assert.False(t, blocked)
	assert.EqualValues(t, 0, service.submits.Load())
}

func TestRecordDelivered_CompletionSignal(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return true, nil
	}}

	g := newTestGateway(service, policystate.New())

	msg := domain.Message{ID: "9", ChatID: "c1", IsOutgoing: true, Date: time.Now()}

	select {
	case blocked := <-g.RecordDelivered(context.Background(), "u1", msg):
		assert.True(t, blocked)
	case <-time.After(time.Second):
		t.Fatal("completion signal never arrived")
	}
}

func TestRecordDelivered_SurvivesCallerCancellation(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return true, nil
	}}

	g := newTestGateway(service, policystate.New())

	ctx, cancel := context.WithCancel(context.Background())

	msg := domain.Message{ID: "9", ChatID: "c1", IsOutgoing: true, Date: time.Now()}
	done := g.RecordDelivered(ctx, "u1", msg)

	cancel()

	select {
	case blocked := <-done:
		assert.True(t, blocked)
	case <-time.After(time.Second):
		t.Fatal("completion signal never arrived")
	}
}

func TestLoadPolicy_UpdatesState(t *testing.T) {
	service := &stubService{}
	state := policystate.New()

	g := newTestGateway(service, state)

	policy := g.LoadPolicy(context.Background())

	assert.Equal(t, domain.DefaultPolicy(), policy)
	assert.True(t, state.Loaded())
}

func TestSubmit_AuditJournalRecordsOutcome(t *testing.T) {
	service := &stubService{submit: func(*domain.MessageRecord) (bool, error) {
		return false, errs.ErrSubmitTimeout
	}}

	state := policystate.New()
	state.Set(domain.DlpPolicy{IsBlockIfOffline: true, Telegram: true})

	journal := &memoryJournal{}

	g := newTestGateway(service, state, WithAuditJournal(journal))

	require.True(t, g.InterceptOutgoing(context.Background(), "u1", "c1", domain.Draft{Text: "x"}))

	require.Len(t, journal.entries, 1)

	entry := journal.entries[0]

	assert.True(t, entry.Blocked)
	assert.Equal(t, domain.OutcomeTimeout, entry.Outcome)
	assert.Equal(t, "c1", entry.ChatID)
	assert.NotEmpty(t, entry.ID)
}
