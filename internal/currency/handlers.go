package currency

import (
	"net/http"

	"github.com/virginus01/afobata-core/internal/common"
)

// Handler exposes the current exchange-rate table.
type Handler struct {
	Source Source
	Base   string
}

// Rates handles GET /v1/rates.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	if h.Source == nil {
		common.RespondFail(w, http.StatusInternalServerError, common.CodeInternal, "rates source not configured")
		return
	}
	table, err := h.Source.Rates(r.Context())
	if err != nil {
		common.RespondFail(w, http.StatusBadGateway, common.CodeDependencyFailure, "failed to fetch exchange rates")
		return
	}
	common.RespondOK(w, "rates fetched", map[string]any{
		"base":  h.Base,
		"rates": table,
	})
}
