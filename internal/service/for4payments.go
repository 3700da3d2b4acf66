package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendfy/campaign-engine/internal/models"
)

// for4PaymentsHandler processes For4Payments webhook events. The
// platform identifies transactions by paymentId and ships customer CPF
// and an items list.
type for4PaymentsHandler struct {
	engine *dispatcher
}

// for4TemplateKeys is the full placeholder set For4Payments events bind.
// Every key is always present in the variable map (empty when the event
// does not carry it) so templates render missing fields as blanks.
var for4TemplateKeys = []string{
	"nome", "telefone", "email", "cpf", "total_price", "payment_method",
	"link_pix", "pix_code", "pix_qrcode", "expires_at",
	"approved_at", "refunded_at", "chargeback_at", "produtos",
}

func (h *for4PaymentsHandler) baseVars(p *models.WebhookPayload) map[string]string {
	vars := make(map[string]string, len(for4TemplateKeys))
	for _, key := range for4TemplateKeys {
		vars[key] = ""
	}
	vars["nome"] = p.Customer.Name
	vars["telefone"] = p.Customer.Phone
	vars["email"] = p.Customer.Email
	vars["cpf"] = p.Customer.CPF
	vars["total_price"] = p.TotalValue.String()
	vars["payment_method"] = p.PaymentMethod
	return vars
}

func (h *for4PaymentsHandler) formatItems(items []models.WebhookItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%dx)", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (h *for4PaymentsHandler) HandlePixGenerated(ctx context.Context, t *Trigger) error {
	p := t.Payload
	if err := h.engine.validateTrigger(p.PaymentID, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["link_pix"] = h.engine.pixLink(ctx, p.PaymentID)
	vars["pix_code"] = p.PixCodeF4
	vars["pix_qrcode"] = p.PixQRCode
	vars["expires_at"] = p.ExpiresAt

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, p.PaymentID)
}

func (h *for4PaymentsHandler) HandleSaleApproved(ctx context.Context, t *Trigger) error {
	p := t.Payload
	if err := h.engine.validateTrigger(p.PaymentID, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["approved_at"] = p.ApprovedAtF4
	vars["produtos"] = h.formatItems(p.Items)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, p.PaymentID)
}

func (h *for4PaymentsHandler) HandleRefund(ctx context.Context, t *Trigger) error {
	p := t.Payload
	if err := h.engine.validateTrigger(p.PaymentID, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["refunded_at"] = p.RefundedAtF4
	vars["produtos"] = h.formatItems(p.Items)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, p.PaymentID)
}

func (h *for4PaymentsHandler) HandleChargeback(ctx context.Context, t *Trigger) error {
	p := t.Payload
	if err := h.engine.validateTrigger(p.PaymentID, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["chargeback_at"] = p.ChargebackAt
	vars["produtos"] = h.formatItems(p.Items)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, p.PaymentID)
}

func (h *for4PaymentsHandler) HandleSalePending(ctx context.Context, t *Trigger) error {
	return errUnsupportedEvent(models.PlatformFor4Payments, "sale pending")
}

func (h *for4PaymentsHandler) HandleSaleRefused(ctx context.Context, t *Trigger) error {
	return errUnsupportedEvent(models.PlatformFor4Payments, "sale refused")
}

func (h *for4PaymentsHandler) HandleSaleCanceled(ctx context.Context, t *Trigger) error {
	return errUnsupportedEvent(models.PlatformFor4Payments, "sale canceled")
}

func (h *for4PaymentsHandler) HandleAbandonedCart(ctx context.Context, t *Trigger) error {
	return errUnsupportedEvent(models.PlatformFor4Payments, "abandoned cart")
}
