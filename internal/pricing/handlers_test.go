package pricing_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/pricing"
)

func postQuote(t *testing.T, h *pricing.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/pricing/quote", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)
	return rec
}

func TestQuoteEndpoint(t *testing.T) {
	h := &pricing.Handler{
		Calc:  pricing.Calculator{LegacyQtyMultiply: true},
		Rates: currency.Static(currency.Table{"NGN": 1500, "USD": 1}),
	}

	rec := postQuote(t, h, pricing.QuoteRequest{
		Product: pricing.Product{ID: "prod_1", Price: 900, Currency: "NGN"},
		Order:   pricing.OrderLine{Quantity: 2},
		Invoice: pricing.Invoice{Currency: "NGN"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status bool   `json:"status"`
		Msg    string `json:"msg"`
		Data   struct {
			Price float64 `json:"price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Status)
	// Legacy double multiply: 900*2 scaled, then *2 again on the way out.
	require.InDelta(t, 3600, resp.Data.Price, 0.01)
}

func TestQuoteEndpointMissingRate(t *testing.T) {
	h := &pricing.Handler{
		Calc:  pricing.Calculator{LegacyQtyMultiply: true},
		Rates: currency.Static(currency.Table{"NGN": 1500}),
	}

	rec := postQuote(t, h, pricing.QuoteRequest{
		Product: pricing.Product{ID: "prod_1", Price: 900, Currency: "NGN"},
		Order:   pricing.OrderLine{Quantity: 1},
		Invoice: pricing.Invoice{Currency: "USD"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Status bool   `json:"status"`
		Code   string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Status)
	require.Equal(t, "RATE_UNAVAILABLE", resp.Code)
}

func TestQuoteEndpointInvalidDuration(t *testing.T) {
	h := &pricing.Handler{Calc: pricing.Calculator{}}

	rec := postQuote(t, h, pricing.QuoteRequest{
		Product: pricing.Product{ID: "prod_1", Price: 500, Currency: "NGN", Type: pricing.TypePackage},
		Order:   pricing.OrderLine{Duration: "weekly", Rates: currency.Table{"NGN": 1}},
		Invoice: pricing.Invoice{Currency: "NGN"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
