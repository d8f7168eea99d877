package commission

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/virginus01/afobata-core/internal/common"
)

// Handler wires settlement splitting to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Settle handles POST /v1/settlements/split.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.RespondFail(w, http.StatusInternalServerError, common.CodeInternal, "settlement service not configured")
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "orderId and invoiceCurrency are required")
			return
		}
	}
	result, err := h.Svc.Settle(r.Context(), in)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondOK(w, "settlement recorded", result)
}
