package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/virginus01/afobata-core/internal/obs"
	"github.com/virginus01/afobata-core/internal/resilience"
)

// Source supplies the current exchange rate table. Settlement-time conversions
// fetch through a Source rather than reusing the order snapshot.
type Source interface {
	Rates(ctx context.Context) (Table, error)
}

// HTTPSource fetches rates from an external rates API through the resilient
// HTTP client (retries, timeout, circuit breaker).
type HTTPSource struct {
	URL    string
	APIKey string
	Client *resilience.HTTPClient
	Base   string
}

type ratesPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rates performs the outbound fetch and decodes the rate table.
func (s HTTPSource) Rates(ctx context.Context) (Table, error) {
	if s.Client == nil {
		return nil, errors.New("currency: http client not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("currency: build rates request: %w", err)
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("currency: fetch rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("currency: rates endpoint returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("currency: read rates body: %w", err)
	}
	var payload ratesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("currency: decode rates body: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, errors.New("currency: rates payload empty")
	}
	table := Merge(nil, payload.Rates)
	base := payload.Base
	if base == "" {
		base = s.Base
	}
	if base != "" {
		// the base currency always converts at parity with itself
		if _, ok := table.Rate(base); !ok {
			table = Merge(table, Table{base: 1})
		}
	}
	return table, nil
}

// CachedSource caches rate tables in Redis for a TTL, falling through to the
// wrapped source on miss. A stale read never blocks settlement: cache errors
// degrade to a direct fetch.
type CachedSource struct {
	R      *redis.Client
	Next   Source
	TTL    time.Duration
	Prefix string
}

// Rates returns the cached table when fresh, otherwise refetches and caches.
func (s CachedSource) Rates(ctx context.Context) (Table, error) {
	if s.Next == nil {
		return nil, errors.New("currency: no upstream rate source")
	}
	key := s.cacheKey()
	if s.R != nil {
		raw, err := s.R.Get(ctx, key).Bytes()
		if err == nil {
			var table Table
			if jsonErr := json.Unmarshal(raw, &table); jsonErr == nil && len(table) > 0 {
				recordLookup("cache", "hit")
				return table, nil
			}
		}
	}
	table, err := s.Next.Rates(ctx)
	if err != nil {
		recordLookup("upstream", "error")
		return nil, err
	}
	recordLookup("upstream", "ok")
	if s.R != nil {
		if raw, jsonErr := json.Marshal(table); jsonErr == nil {
			ttl := s.TTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			_ = s.R.Set(ctx, key, raw, ttl).Err()
		}
	}
	return table, nil
}

func recordLookup(source, result string) {
	if obs.RateLookupsTotal != nil {
		obs.RateLookupsTotal.WithLabelValues(source, result).Inc()
	}
}

func (s CachedSource) cacheKey() string {
	if s.Prefix == "" {
		return "rates:current"
	}
	return s.Prefix + ":rates:current"
}

// Static wraps a fixed table as a Source. Used by tests and replay tooling.
type Static Table

// Rates returns the wrapped table.
func (s Static) Rates(context.Context) (Table, error) {
	if len(s) == 0 {
		return nil, ErrRateUnavailable
	}
	return Table(s), nil
}
