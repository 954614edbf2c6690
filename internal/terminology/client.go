// Package terminology serves autocomplete suggestions from public medical
// vocabularies: NLM conditions, RxNav drug names and the NPI registry.
package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"medvault/internal/config"
	"medvault/internal/logging"
	"medvault/internal/upstream"
)

// maxBodyBytes bounds upstream responses read into memory.
const maxBodyBytes = 4 << 20

// Client performs JSON GETs against terminology services. Network errors and
// 5xx responses are retried; 429 is surfaced immediately as a RateLimitError.
type Client struct {
	http              *retryablehttp.Client
	defaultRetryAfter time.Duration
}

// NewClient builds a Client from the terminology settings.
func NewClient(cfg config.TerminologyConfig) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logging.API}
	if cfg.TimeoutSecs > 0 {
		rc.HTTPClient.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	retryAfter := cfg.DefaultRetryAfter
	if retryAfter <= 0 {
		retryAfter = upstream.DefaultRetryAfter
	}
	return &Client{http: rc, defaultRetryAfter: retryAfter}
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// getJSON fetches rawURL and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, provider, rawURL string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs := upstream.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		if secs == 0 {
			secs = int(c.defaultRetryAfter / time.Second)
		}
		return upstream.NewRateLimitError(provider, fmt.Errorf("HTTP 429"), secs)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: HTTP %d: %s", provider, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

// leveledLogger routes retryablehttp's logging through logrus.
type leveledLogger struct {
	log logrus.FieldLogger
}

func (l leveledLogger) entry(keysAndValues []interface{}) logrus.FieldLogger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.log.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error("terminology.http: " + msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn("terminology.http: " + msg)
}

// Info is demoted to debug; retryablehttp logs every request at info.
func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug("terminology.http: " + msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug("terminology.http: " + msg)
}
