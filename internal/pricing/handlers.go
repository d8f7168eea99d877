package pricing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/virginus01/afobata-core/internal/common"
	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/obs"
)

// QuoteRequest is the payload for POST /v1/pricing/quote.
type QuoteRequest struct {
	Product Product   `json:"product" validate:"required"`
	Order   OrderLine `json:"order"`
	Invoice Invoice   `json:"invoice" validate:"required"`
}

// QuoteResponse adds the reseller-resolved figures to the final quote.
type QuoteResponse struct {
	Quote
	SellerProfit float64 `json:"sellerProfit"`
	Currency     string  `json:"currency"`
}

// Handler wires pricing to HTTP.
type Handler struct {
	Calc     Calculator
	Rates    currency.Source
	Validate *validator.Validate
}

// Quote handles POST /v1/pricing/quote: reseller resolution, then the final
// price in the invoice currency. When the caller pins no rates, the current
// table backs the conversion.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "product and invoice are required")
			return
		}
	}

	if len(req.Order.Rates) == 0 && len(req.Invoice.Rates) == 0 && h.Rates != nil {
		rates, err := h.Rates.Rates(r.Context())
		if err != nil {
			recordQuote("failed")
			common.RespondFail(w, http.StatusBadGateway, common.CodeDependencyFailure, "failed to fetch exchange rates")
			return
		}
		req.Order.Rates = rates
	}

	priced := Resolve(req.Product)
	quote, err := h.Calc.FinalPrice(priced, req.Order, req.Invoice)
	if err != nil {
		recordQuote("rejected")
		switch {
		case errors.Is(err, currency.ErrRateUnavailable):
			common.RespondFail(w, http.StatusUnprocessableEntity, common.CodeRateUnavailable, "exchange rate unavailable for conversion")
		case errors.Is(err, ErrInvalidDuration):
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "invalid package duration")
		case errors.Is(err, ErrSubUnitPrice):
			common.RespondFail(w, http.StatusUnprocessableEntity, common.CodeNotEligible, "price resolves below one currency unit")
		case errors.Is(err, ErrMissingInput):
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "missing required pricing input")
		default:
			common.RespondError(w, err)
		}
		return
	}

	recordQuote("ok")
	common.RespondOK(w, "quote computed", QuoteResponse{
		Quote:        quote,
		SellerProfit: priced.SellerProfit,
		Currency:     req.Invoice.Currency,
	})
}

func recordQuote(result string) {
	if obs.QuotesTotal != nil {
		obs.QuotesTotal.WithLabelValues(result).Inc()
	}
}
