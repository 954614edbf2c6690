package terminology

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/logging"
	"medvault/internal/port"
	"medvault/internal/upstream"
)

// Service fronts the terminology sources with query normalization, a result
// cache, request coalescing and a per-source rate-limit circuit.
type Service struct {
	sources  map[string]port.TerminologySource
	circuits map[string]*upstream.Circuit
	cache    *resultCache
	group    singleflight.Group
	cfg      config.TerminologyConfig
	now      func() time.Time
}

// NewService creates a Service over the given sources, keyed by Name().
func NewService(cfg config.TerminologyConfig, sources ...port.TerminologySource) *Service {
	s := &Service{
		sources:  make(map[string]port.TerminologySource, len(sources)),
		circuits: make(map[string]*upstream.Circuit, len(sources)),
		cache:    newResultCache(cfg.CacheSize, cfg.CacheTTL),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, src := range sources {
		s.sources[src.Name()] = src
		s.circuits[src.Name()] = &upstream.Circuit{}
	}
	return s
}

// NewDefaultService wires the NLM, RxNav and NPI sources from configuration.
func NewDefaultService(cfg config.TerminologyConfig) *Service {
	client := NewClient(cfg)
	return NewService(cfg,
		NewConditionsSource(cfg.ConditionsURL, client),
		NewMedicationsSource(cfg.MedicationsURL, client),
		NewProvidersSource(cfg.ProvidersURL, client),
	)
}

// Sources lists the registered source names in sorted order.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search returns up to limit suggestions for query from the named source.
// Queries shorter than the configured minimum return an empty list without an
// upstream call. While a source is rate limited the error wraps both
// domain.ErrUpstreamUnavailable and the *upstream.RateLimitError.
func (s *Service) Search(ctx context.Context, source, query string, limit int, state string) ([]port.Suggestion, error) {
	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTerminologySource, source)
	}

	term := NormalizeQuery(query)
	if len([]rune(term)) < s.cfg.MinQueryLength {
		return []port.Suggestion{}, nil
	}
	q := port.TerminologyQuery{
		Term:  term,
		Limit: s.clampLimit(limit),
		State: strings.ToUpper(strings.TrimSpace(state)),
	}

	key := cacheKey(source, q)
	now := s.now()
	if cached, ok := s.cache.get(key, now); ok {
		return cached, nil
	}

	circuit := s.circuits[source]
	if resetAt, open := circuit.IsOpen(now); open {
		return nil, unavailable(source, resetAt.Sub(now))
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		return src.Search(context.WithoutCancel(ctx), q)
	})
	if err != nil {
		var rl *upstream.RateLimitError
		if errors.As(err, &rl) {
			resetAt := circuit.Trip(s.now(), rl)
			logging.API.WithField("source", source).WithField("reset_at", resetAt).
				Warn("terminologyService.Search: rate limited, circuit open")
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, rl)
		}
		logging.API.WithField("source", source).WithError(err).Error("terminologyService.Search: upstream failed")
		return nil, fmt.Errorf("terminologyService.Search: %w", err)
	}

	suggestions := v.([]port.Suggestion)
	if len(suggestions) > q.Limit {
		suggestions = suggestions[:q.Limit]
	}
	s.cache.put(key, suggestions, s.now())
	return suggestions, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if limit <= 0 {
		limit = 10
	}
	return limit
}

func cacheKey(source string, q port.TerminologyQuery) string {
	return strings.Join([]string{source, strings.ToLower(q.Term), strconv.Itoa(q.Limit), q.State}, "\x1f")
}

func unavailable(source string, remaining time.Duration) error {
	secs := int((remaining + time.Second - 1) / time.Second)
	rl := upstream.NewRateLimitError(source, errors.New("circuit open"), secs)
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, rl)
}
