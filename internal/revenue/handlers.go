package revenue

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/virginus01/afobata-core/internal/common"
)

// Handler wires the withdrawal service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Withdraw handles POST /v1/revenue/withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.RespondFail(w, http.StatusInternalServerError, common.CodeInternal, "revenue service not configured")
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "userId and userBrandId are required")
			return
		}
	}
	receipt, err := h.Svc.Withdraw(r.Context(), in)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondOK(w, "withdrawal processed", receipt)
}
