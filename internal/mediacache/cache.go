// Package mediacache resolves downloadable media to bytes, cache first with
// a remote fallback. Forward interception attaches media bytes to records
// before submission, so resolution sits on the send path and is bounded by
// an LRU cache and a global rate limit on remote fetches.
package mediacache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/observability"
)

const (
	defaultCacheSize    = 256
	defaultFetchTimeout = 30 * time.Second
)

// RemoteFunc fetches media bytes by hash from wherever the deployment keeps
// them when the local cache misses.
type RemoteFunc func(ctx context.Context, hash string) ([]byte, error)

// Cache is an LRU byte cache over a remote fetcher.
type Cache struct {
	entries *lru.Cache[string, []byte]
	remote  RemoteFunc
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func New(size int, rps float64, remote RemoteFunc, logger *zerolog.Logger) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}

	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create media cache: %w", err)
	}

	if rps <= 0 {
		rps = 1
	}

	return &Cache{
		entries: entries,
		remote:  remote,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}, nil
}

// FetchMedia returns the bytes for a media reference, consulting the cache
// before the remote store.
func (c *Cache) FetchMedia(ctx context.Context, ref domain.MediaRef) ([]byte, error) {
	if ref.Hash == "" {
		return nil, errs.ErrMediaNotFound
	}

	if data, ok := c.entries.Get(ref.Hash); ok {
		observability.MediaCacheHits.WithLabelValues(observability.CacheHit).Inc()

		return data, nil
	}

	observability.MediaCacheHits.WithLabelValues(observability.CacheMiss).Inc()

	if c.remote == nil {
		return nil, errs.ErrMediaNotFound
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("media fetch rate limit: %w", err)
	}

	data, err := c.remote(ctx, ref.Hash)
	if err != nil {
		return nil, fmt.Errorf("remote media fetch %s: %w", ref.Hash, err)
	}

	c.entries.Add(ref.Hash, data)

	return data, nil
}

// NewHTTPRemote builds a RemoteFunc fetching GET {baseURL}/{hash}.
func NewHTTPRemote(baseURL string, timeout time.Duration) RemoteFunc {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context, hash string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/"+url.PathEscape(hash), nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode == http.StatusNotFound {
			return nil, errs.ErrMediaNotFound
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("media fetch status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}
}
