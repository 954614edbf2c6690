package parser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medvault/internal/logging"
	"medvault/internal/port"
	"medvault/internal/upstream"
)

// FallbackParser tries parsers in order, skipping those with open circuits.
// It implements port.CardParser.
type FallbackParser struct {
	parsers  []port.CardParser
	circuits []*upstream.Circuit
	names    []string
	now      func() time.Time
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.CardParser, names []string) *FallbackParser {
	circuits := make([]*upstream.Circuit, len(parsers))
	for i := range circuits {
		circuits[i] = &upstream.Circuit{}
	}
	return &FallbackParser{
		parsers:  parsers,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

func (f *FallbackParser) Parse(ctx context.Context, input port.CardParseInput) (*port.CardParseOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.parsers {
		if resetAt, open := f.circuits[i].IsOpen(now); open {
			logging.API.Debugf("parser.FallbackParser: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			return out, nil
		}

		logging.API.WithField("provider", f.names[i]).Warnf("parser.FallbackParser: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *upstream.RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := f.circuits[i].Trip(now, rlErr)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	// lastErr is nil when every parser was skipped by an open circuit.
	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, upstream.NewRateLimitError("all", fmt.Errorf("all parsers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all parsers failed: %w", lastErr)
}
