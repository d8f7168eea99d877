package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/virginus01/afobata-core/internal/resilience"
)

func TestHTTPSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"NGN":1500,"GHS":15}}`))
	}))
	defer server.Close()

	source := HTTPSource{
		URL:    server.URL,
		Client: &resilience.HTTPClient{Client: server.Client(), MaxAttempts: 1},
		Base:   "USD",
	}
	table, err := source.Rates(context.Background())
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rate, ok := table.Rate("NGN"); !ok || rate != 1500 {
		t.Fatalf("unexpected NGN rate %v ok=%v", rate, ok)
	}
	// base currency gets a parity entry when absent from the payload
	if rate, ok := table.Rate("USD"); !ok || rate != 1 {
		t.Fatalf("expected USD parity entry, got %v ok=%v", rate, ok)
	}
}

func TestHTTPSourceUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := HTTPSource{
		URL:    server.URL,
		Client: &resilience.HTTPClient{Client: server.Client(), MaxAttempts: 1},
	}
	if _, err := source.Rates(context.Background()); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestCachedSourceHitSkipsUpstream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	upstream := sourceFunc(func(ctx context.Context) (Table, error) {
		calls++
		return Table{"USD": 1, "NGN": 1500}, nil
	})
	cached := CachedSource{R: client, Next: upstream, TTL: time.Minute, Prefix: "test"}

	for i := 0; i < 3; i++ {
		table, err := cached.Rates(context.Background())
		if err != nil {
			t.Fatalf("rates: %v", err)
		}
		if _, ok := table.Rate("NGN"); !ok {
			t.Fatal("missing NGN after cache round trip")
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", calls)
	}
}

type sourceFunc func(context.Context) (Table, error)

func (f sourceFunc) Rates(ctx context.Context) (Table, error) { return f(ctx) }
