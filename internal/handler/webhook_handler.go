package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sendfy/campaign-engine/internal/service"
)

// maxWebhookBody caps inbound webhook payload size at 1 MiB.
const maxWebhookBody = 1 << 20

// WebhookHandler handles inbound payment-platform webhooks
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService service.WebhookService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Receive handles POST /webhook/{webhookID}. The response reflects only
// the synchronous part of processing: scheduled sends that fail later
// surface in campaign history, not here.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	webhookID := chi.URLParam(r, "webhookID")
	if webhookID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "webhook ID is required")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "failed to read request body")
		return
	}

	if err := h.webhookService.ProcessWebhook(r.Context(), webhookID, body); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]string{"message": "messages processed successfully"})
}
