package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virginus01/afobata-core/internal/tenant"
)

func TestResolveHeaderWins(t *testing.T) {
	r := tenant.NewResolver("", "afobata.com", "")
	req := httptest.NewRequest(http.MethodGet, "http://shop.afobata.com/v1/rates", nil)
	req.Header.Set("X-Brand-ID", "brand_42")
	require.Equal(t, "brand_42", r.Resolve(req))
}

func TestResolveSubdomain(t *testing.T) {
	r := tenant.NewResolver("", "afobata.com", "")

	req := httptest.NewRequest(http.MethodGet, "http://shop.afobata.com/v1/rates", nil)
	require.Equal(t, "shop", r.Resolve(req))

	req = httptest.NewRequest(http.MethodGet, "http://afobata.com/v1/rates", nil)
	require.Equal(t, "", r.Resolve(req))

	req = httptest.NewRequest(http.MethodGet, "http://other.example.com/v1/rates", nil)
	require.Equal(t, "", r.Resolve(req))
}

func TestMiddlewareInjectsBrand(t *testing.T) {
	r := tenant.NewResolver("", "", "fallback")
	var got string
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got, _ = tenant.From(req.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/rates", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "fallback", got)
}

func TestRequireRejectsMissingBrand(t *testing.T) {
	h := tenant.Require(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a brand")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/revenue/withdraw", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
