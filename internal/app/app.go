// Package app provides the application bootstrap: it wires the normalizer,
// policy client, policy state and optional infrastructure into a gateway and
// runs the sidecar HTTP API around it.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	"github.com/lueurxax/telegram-dlp-gateway/internal/directory"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/gateway"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/normalizer"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policyclient"
	"github.com/lueurxax/telegram-dlp-gateway/internal/dlp/policystate"
	"github.com/lueurxax/telegram-dlp-gateway/internal/events"
	"github.com/lueurxax/telegram-dlp-gateway/internal/mediacache"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/config"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/worker"
	"github.com/lueurxax/telegram-dlp-gateway/internal/server"
	"github.com/lueurxax/telegram-dlp-gateway/internal/storage"
)

// App owns the wired gateway and its surrounding infrastructure.
type App struct {
	cfg       *config.Config
	gateway   *gateway.Gateway
	state     *policystate.State
	directory *directory.Memory
	publisher *events.Publisher
	logger    *zerolog.Logger
}

// New wires the gateway. The database is optional: a nil db disables the
// audit journal. Block-event publishing is enabled only when a NATS URL is
// configured.
func New(cfg *config.Config, db *storage.DB, logger *zerolog.Logger) (*App, error) {
	state := policystate.New()

	client := policyclient.New(policyclient.Config{
		BaseURL:       cfg.AgentServerURL,
		Token:         cfg.AgentToken,
		SubmitTimeout: cfg.SubmitTimeout,
		FetchTimeout:  cfg.FetchTimeout,
	}, state.Current, logger)

	var remote mediacache.RemoteFunc
	if cfg.MediaBaseURL != "" {
		remote = mediacache.NewHTTPRemote(cfg.MediaBaseURL, cfg.MediaFetchLimit)
	}

	media, err := mediacache.New(cfg.MediaCacheSize, cfg.MediaFetchRPS, remote, logger)
	if err != nil {
		return nil, err
	}

	dir := directory.NewMemory()
	norm := normalizer.New(dir, media, logger)

	opts := make([]gateway.Option, 0, 2)
	if db != nil {
		opts = append(opts, gateway.WithAuditJournal(db))
	}

	var publisher *events.Publisher

	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, cfg.BlockEventSubject, logger)
		if err != nil {
			return nil, err
		}

		opts = append(opts, gateway.WithBlockPublisher(publisher))
	}

	return &App{
		cfg:       cfg,
		gateway:   gateway.New(norm, client, state, logger, opts...),
		state:     state,
		directory: dir,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Gateway exposes the wired gateway for in-process embedding.
func (a *App) Gateway() *gateway.Gateway {
	return a.gateway
}

// LoadPolicy performs the startup policy fetch.
func (a *App) LoadPolicy(ctx context.Context) domain.DlpPolicy {
	return a.gateway.LoadPolicy(ctx)
}

// Run serves the sidecar API until the context is cancelled. When a refresh
// interval is configured, the standing policy is re-fetched in the
// background; each successful fetch replaces the previous one.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.publisher != nil {
			a.publisher.Close()
		}
	}()

	if a.cfg.PolicyRefreshInterval > 0 {
		go func() {
			_ = worker.Loop(ctx, worker.Config{
				Name:     "policy-refresh",
				Interval: a.cfg.PolicyRefreshInterval,
				Run: func(ctx context.Context) {
					a.gateway.LoadPolicy(ctx)
				},
				Logger: a.logger,
			})
		}()
	}

	srv := server.New(a.gateway, a.state, a.directory, a.cfg.ListenPort, a.logger)

	return srv.Start(ctx)
}
