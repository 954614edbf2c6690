// Package upstream holds the rate-limit error and circuit shared by clients of
// third-party services.
package upstream

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter applies when a 429 response carries no usable Retry-After.
const DefaultRetryAfter = 60 * time.Second

// RateLimitError indicates an upstream service returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := time.Duration(retryAfterSecs) * time.Second
	if retryAfterSecs <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: retryAfter,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds. Both
// delta-seconds and HTTP-date forms are accepted. Returns 0 if the value is
// empty, invalid, or already in the past.
func ParseRetryAfterHeader(val string) int {
	return parseRetryAfter(val, time.Now())
}

func parseRetryAfter(val string, now time.Time) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	secs := int(at.Sub(now).Round(time.Second).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
