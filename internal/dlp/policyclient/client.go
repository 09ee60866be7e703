// Package policyclient is the network transport towards the DLP policy
// service: it fetches the standing policy and submits message records for a
// verdict. All failure modes are absorbed here or surfaced as sentinel
// errors; nothing in this package ever panics the send path.
package policyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
	errs "github.com/lueurxax/telegram-dlp-gateway/internal/core/errors"
	"github.com/lueurxax/telegram-dlp-gateway/internal/platform/observability"
)

const (
	policyPath = "/system"
	submitPath = "/telegram"

	headerAuthorization = "Authorization"

	defaultSubmitTimeout = 3 * time.Second
	defaultFetchTimeout  = 5 * time.Second

	// Abandoned submissions keep running after the race is decided; the
	// backstop bounds how long such a request may linger.
	abandonedRequestBackstop = time.Minute
)

// Config holds the endpoints and credential of the policy service.
type Config struct {
	BaseURL       string
	Token         string
	SubmitTimeout time.Duration
	FetchTimeout  time.Duration
}

// Client talks to the policy service. Fire-once semantics: one HTTP attempt
// per record, no retries.
type Client struct {
	baseURL       string
	token         string
	submitTimeout time.Duration
	submitClient  *http.Client
	fetchClient   *http.Client
	fallback      func() domain.DlpPolicy
	logger        *zerolog.Logger
}

// New creates a policy service client. The fallback func supplies the policy
// to return when a fetch fails; it is typically backed by the policy state
// cell so a failed refresh yields the last known value.
func New(cfg Config, fallback func() domain.DlpPolicy, logger *zerolog.Logger) *Client {
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	if fallback == nil {
		fallback = domain.DefaultPolicy
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		token:         cfg.Token,
		submitTimeout: submitTimeout,
		submitClient:  &http.Client{Timeout: abandonedRequestBackstop},
		fetchClient:   &http.Client{Timeout: fetchTimeout},
		fallback:      fallback,
		logger:        logger,
	}
}

// FetchPolicy retrieves the standing policy. Any failure (network error,
// non-2xx, malformed body) is absorbed into the fallback value; this call
// never reports an error to startup code.
func (c *Client) FetchPolicy(ctx context.Context) domain.DlpPolicy {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+policyPath, nil)
	if err != nil {
		return c.fetchFallback(err)
	}

	req.Header.Set(headerAuthorization, "Bearer "+c.token)

	resp, err := c.fetchClient.Do(req)
	if err != nil {
		return c.fetchFallback(err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.fetchFallback(fmt.Errorf("policy fetch status %d", resp.StatusCode))
	}

	var policy domain.DlpPolicy
	if err := json.NewDecoder(resp.Body).Decode(&policy); err != nil {
		return c.fetchFallback(fmt.Errorf("decode policy: %w", err))
	}

	observability.PolicyFetches.WithLabelValues(observability.FetchOK).Inc()

	return policy
}

func (c *Client) fetchFallback(err error) domain.DlpPolicy {
	c.logger.Warn().Err(err).Msg("policy fetch failed, using fallback")
	observability.PolicyFetches.WithLabelValues(observability.FetchFallback).Inc()

	return c.fallback()
}

type submitResponse struct {
	Success bool   `json:"success"`
	Block   bool   `json:"block"`
	Message string `json:"message"`
}

type submitResult struct {
	blocked bool
	err     error
}

// SubmitRecord submits one record and races the HTTP round-trip against the
// submission window. The loser of the race is abandoned, not cancelled: a
// response arriving after the timeout is discarded and can never change a
// verdict already handed to the caller.
//
// A timeout is reported as errs.ErrSubmitTimeout; every other failure comes
// back as an ordinary error the caller fails open on.
func (c *Client) SubmitRecord(ctx context.Context, record *domain.MessageRecord) (bool, error) {
	body, contentType, err := encodeRecord(record)
	if err != nil {
		observability.Submissions.WithLabelValues(domain.OutcomeFailed).Inc()

		return false, fmt.Errorf("encode record: %w", err)
	}

	started := time.Now()

	// Buffered so the late loser can deposit its result and exit without a
	// reader on the other side.
	results := make(chan submitResult, 1)

	go func() {
		results <- c.doSubmit(ctx, body, contentType)
	}()

	timer := time.NewTimer(c.submitTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		observability.SubmissionDuration.Observe(time.Since(started).Seconds())

		if res.err != nil {
			observability.Submissions.WithLabelValues(domain.OutcomeFailed).Inc()

			return false, res.err
		}

		observability.Submissions.WithLabelValues(domain.OutcomeConfirmed).Inc()

		return res.blocked, nil
	case <-timer.C:
		observability.Submissions.WithLabelValues(domain.OutcomeTimeout).Inc()
		c.logger.Warn().Str("message_id", record.MessageID).Dur("timeout", c.submitTimeout).Msg("submission timed out")

		return false, errs.ErrSubmitTimeout
	case <-ctx.Done():
		observability.Submissions.WithLabelValues(domain.OutcomeFailed).Inc()

		return false, fmt.Errorf("submission cancelled: %w", ctx.Err())
	}
}

func (c *Client) doSubmit(ctx context.Context, body *bytes.Buffer, contentType string) submitResult {
	// The request deliberately does not carry the race timeout or the
	// caller's cancellation: the race is decided by the select in
	// SubmitRecord and the in-flight request is left to finish on its own,
	// bounded only by the backstop on the HTTP client.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, c.baseURL+submitPath, body)
	if err != nil {
		return submitResult{err: fmt.Errorf("create submit request: %w", err)}
	}

	req.Header.Set(headerAuthorization, "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.submitClient.Do(req)
	if err != nil {
		return submitResult{err: fmt.Errorf("submit record: %w", err)}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return submitResult{err: fmt.Errorf("read submit response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return submitResult{err: fmt.Errorf("%w: status %d", errs.ErrSubmitRejected, resp.StatusCode)}
	}

	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return submitResult{err: fmt.Errorf("%w: %s", errs.ErrSubmitUnconfirmed, err)}
	}

	if !parsed.Success {
		return submitResult{err: errs.ErrSubmitUnconfirmed}
	}

	return submitResult{blocked: parsed.Block}
}

// encodeRecord serializes a record as multipart/form-data: one field per
// present attribute, the binary attachment as a file part.
func encodeRecord(record *domain.MessageRecord) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, field := range record.FormFields() {
		if err := w.WriteField(field.Key, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.Key, err)
		}
	}

	if record.File != nil {
		part, err := w.CreateFormFile("files", record.File.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}

		if _, err := part.Write(record.File.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}
