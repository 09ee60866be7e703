package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Policy service. The agent listens on localhost next to the client.
	AgentServerURL string        `env:"DLP_AGENT_URL" envDefault:"http://localhost:3555"`
	AgentToken     string        `env:"DLP_AGENT_TOKEN" envDefault:"c3RhdGljX3Rva2VuX2Zvcl93ZWJzZXJ2ZXI"`
	SubmitTimeout  time.Duration `env:"DLP_SUBMIT_TIMEOUT" envDefault:"3s"`
	FetchTimeout   time.Duration `env:"DLP_FETCH_TIMEOUT" envDefault:"5s"`

	// Zero disables periodic refresh; the policy is then fetched once at
	// startup only.
	PolicyRefreshInterval time.Duration `env:"POLICY_REFRESH_INTERVAL" envDefault:"0"`

	// Sidecar HTTP API.
	ListenPort int `env:"LISTEN_PORT" envDefault:"8080"`

	// Media resolution for forwarded attachments.
	MediaBaseURL    string        `env:"DLP_MEDIA_URL"`
	MediaFetchRPS   float64       `env:"MEDIA_FETCH_RPS" envDefault:"4"`
	MediaFetchLimit time.Duration `env:"MEDIA_FETCH_TIMEOUT" envDefault:"30s"`
	MediaCacheSize  int           `env:"MEDIA_CACHE_SIZE" envDefault:"256"`

	// Optional audit journal. Empty DSN disables it.
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Optional block-event publishing. Empty URL disables it.
	NatsURL           string `env:"NATS_URL"`
	BlockEventSubject string `env:"BLOCK_EVENT_SUBJECT" envDefault:"dlp.telegram.blocked"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
