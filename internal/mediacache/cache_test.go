package mediacache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
)

func TestFetchMedia_RemoteThenCache(t *testing.T) {
	var calls atomic.Int64

	logger := zerolog.Nop()

	c, err := New(8, 100, func(_ context.Context, hash string) ([]byte, error) {
		calls.Add(1)

		return []byte("payload-" + hash), nil
	}, &logger)
	require.NoError(t, err)

	ref := domain.MediaRef{Hash: "h1", Filename: "a.bin"}

	first, err := c.FetchMedia(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-h1"), first)

	second, err := c.FetchMedia(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The remote store is consulted once; the repeat comes from the cache.
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchMedia_NoRemote(t *testing.T) {
	logger := zerolog.Nop()

	c, err := New(8, 100, nil, &logger)
	require.NoError(t, err)

	_, err = c.FetchMedia(context.Background(), domain.MediaRef{Hash: "h1"})

	assert.True(t, errs.Is(err, errs.ErrMediaNotFound))
}

func TestFetchMedia_EmptyHash(t *testing.T) {
	logger := zerolog.Nop()

	c, err := New(8, 100, nil, &logger)
	require.NoError(t, err)

	_, err = c.FetchMedia(context.Background(), domain.MediaRef{})

	assert.True(t, errs.Is(err, errs.ErrMediaNotFound))
}

func TestHTTPRemote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/known":
			_, _ = w.Write([]byte("bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, time.Second)

	data, err := remote(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	_, err = remote(context.Background(), "unknown")
	assert.True(t, errs.Is(err, errs.ErrMediaNotFound))
}
