// Package wdqs talks to a SPARQL query endpoint such as the Wikidata Query Service.
package wdqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/domain/sparql"
)

const (
	resultsMediaType = "application/sparql-results+json"
	bodyExcerptLimit = 200
)

// Config groups the endpoint and hardening settings.
type Config struct {
	Endpoint  string
	UserAgent string
	// Timeout bounds a single attempt; 0 disables the per-call deadline.
	Timeout time.Duration
	// MaxAttempts > 1 retries transport failures with exponential backoff. Upstream
	// (HTTP status) errors are never retried.
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// RequestsPerSec <= 0 disables outbound limiting.
	RequestsPerSec float64
	Burst          int
}

// Client implements ports.QueryClient over HTTP POST.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient creates a client. A nil httpClient uses a fresh http.Client.
func NewClient(cfg Config, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 250 * time.Millisecond
	}
	if cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		cfg.RetryMaxDelay = cfg.RetryBaseDelay
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		logger:     logger,
	}
}

// Execute runs query and decodes the bindings envelope.
func (c *Client) Execute(ctx context.Context, query string) (*sparql.Results, error) {
	callID := uuid.NewString()
	start := time.Now()
	delay := c.cfg.RetryBaseDelay

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		res, err := c.executeOnce(ctx, query)
		if err == nil {
			observeCall(outcomeOK, start)
			c.log().WithFields(logrus.Fields{"call_id": callID, "attempt": attempt, "rows": len(res.Rows()), "elapsed": time.Since(start)}).Debug("upstream query succeeded")
			return res, nil
		}
		lastErr = err

		var te *place.TransportError
		if !errors.As(err, &te) || ctx.Err() != nil || attempt == c.cfg.MaxAttempts {
			break
		}

		wait := delay + time.Duration(rand.Int63n(int64(delay/4)+1))
		c.log().WithFields(logrus.Fields{"call_id": callID, "attempt": attempt, "backoff": wait}).WithError(err).Warn("upstream transport failure, retrying")
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			observeCall(outcomeTransportError, start)
			return nil, &place.TransportError{Err: ctx.Err()}
		case <-timer.C:
		}
		delay *= 2
		if delay > c.cfg.RetryMaxDelay {
			delay = c.cfg.RetryMaxDelay
		}
	}

	var ue *place.UpstreamError
	if errors.As(lastErr, &ue) {
		observeCall(outcomeUpstreamError, start)
	} else {
		observeCall(outcomeTransportError, start)
	}
	c.log().WithFields(logrus.Fields{"call_id": callID, "elapsed": time.Since(start)}).WithError(lastErr).Error("upstream query failed")
	return nil, lastErr
}

func (c *Client) executeOnce(ctx context.Context, query string) (*sparql.Results, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &place.TransportError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &place.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &place.UpstreamError{
			Status:      resp.StatusCode,
			StatusText:  http.StatusText(resp.StatusCode),
			BodyExcerpt: string(excerpt),
		}
	}

	var res sparql.Results
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		if ctx.Err() != nil {
			return nil, &place.TransportError{Err: err}
		}
		return nil, &place.UpstreamError{
			Status:      resp.StatusCode,
			StatusText:  http.StatusText(resp.StatusCode),
			BodyExcerpt: truncate("undecodable results: "+err.Error(), bodyExcerptLimit),
		}
	}
	return &res, nil
}

func (c *Client) log() logrus.FieldLogger {
	if c.logger == nil {
		return logrus.StandardLogger()
	}
	return c.logger
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
