package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sendfy/campaign-engine/internal/service"
)

// CreditHandler handles admin credit adjustments
type CreditHandler struct {
	creditService service.CreditService
	logger        *slog.Logger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService service.CreditService, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		logger:        logger,
	}
}

type creditRequest struct {
	AccountID int64 `json:"account_id"`
	Credits   int   `json:"credits"`
}

// AddCredits handles POST /admin/credits/add
func (h *CreditHandler) AddCredits(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	account, err := h.creditService.Add(r.Context(), req.AccountID, req.Credits)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"account_id": account.ID,
		"credits":    account.Credits,
	})
}

// RemoveCredits handles POST /admin/credits/remove
func (h *CreditHandler) RemoveCredits(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	account, err := h.creditService.Remove(r.Context(), req.AccountID, req.Credits)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"account_id": account.ID,
		"credits":    account.Credits,
	})
}
