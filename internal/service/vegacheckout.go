package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendfy/campaign-engine/internal/models"
)

// vegaCheckoutHandler processes VegaCheckout webhook events. The
// platform identifies transactions by transaction_id with
// transaction_token as fallback; abandoned carts use checkout_id.
type vegaCheckoutHandler struct {
	engine *dispatcher
}

// vegaTemplateKeys is the full placeholder set VegaCheckout events bind.
var vegaTemplateKeys = []string{
	"nome", "telefone", "email", "total_price", "payment_type",
	"qrcode_url", "pix_code", "expires_at",
	"approved_at", "refunded_at", "chargeback_at", "refused_at", "canceled_at",
	"billet_url", "billet_digitable_line", "order_url", "checkout_url",
	"abandoned_checkout_url", "created_at", "produtos", "link_pix",
}

func (h *vegaCheckoutHandler) transactionID(p *models.WebhookPayload) string {
	if p.TransactionID != "" {
		return p.TransactionID
	}
	return p.TransactionToken
}

func (h *vegaCheckoutHandler) baseVars(p *models.WebhookPayload) map[string]string {
	vars := make(map[string]string, len(vegaTemplateKeys))
	for _, key := range vegaTemplateKeys {
		vars[key] = ""
	}
	vars["nome"] = p.Customer.Name
	vars["telefone"] = p.Customer.Phone
	vars["email"] = p.Customer.Email
	vars["total_price"] = p.TotalPrice.String()
	vars["order_url"] = p.OrderURL
	vars["checkout_url"] = p.CheckoutURL
	return vars
}

// formatProducts renders "Name (Nx)" entries from whichever product
// shape the payload carries: a flat products array or plans of products.
func (h *vegaCheckoutHandler) formatProducts(p *models.WebhookPayload) string {
	if len(p.Products) > 0 {
		parts := make([]string, 0, len(p.Products))
		for _, product := range p.Products {
			parts = append(parts, fmt.Sprintf("%s (%dx)", product.Title, product.Quantity))
		}
		return strings.Join(parts, ", ")
	}
	return h.formatProductsFromPlans(p.Plans)
}

func (h *vegaCheckoutHandler) formatProductsFromPlans(plans []models.WebhookPlan) string {
	parts := []string{}
	for _, plan := range plans {
		if len(plan.Products) > 0 {
			for _, product := range plan.Products {
				amount := product.Amount.String()
				if amount == "" {
					amount = "1"
				}
				parts = append(parts, fmt.Sprintf("%s (%sx)", product.Name, amount))
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%sx)", plan.Name, plan.Amount.String()))
	}
	return strings.Join(parts, ", ")
}

func (h *vegaCheckoutHandler) HandlePixGenerated(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	method := p.Method
	if method == "" {
		method = "pix"
	}
	vars["payment_type"] = method
	qrcode := p.QRCodeURL
	if qrcode == "" {
		qrcode = p.PixCodeImage64
	}
	vars["qrcode_url"] = qrcode
	vars["pix_code"] = p.PixCode
	vars["expires_at"] = p.BilletDueDate
	vars["link_pix"] = h.engine.pixLink(ctx, txn)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleSaleApproved(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = firstNonEmpty(p.Method, p.PaymentType)
	vars["approved_at"] = firstNonEmpty(p.ApprovedAt, p.UpdatedAt)
	vars["produtos"] = h.formatProducts(p)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleRefund(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = p.Method
	vars["refunded_at"] = firstNonEmpty(p.RefundedAt, p.UpdatedAt)
	vars["produtos"] = h.formatProducts(p)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleChargeback(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = p.Method
	vars["chargeback_at"] = p.UpdatedAt
	vars["produtos"] = h.formatProducts(p)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleSalePending(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = p.Method
	vars["pix_code"] = p.PixCode
	vars["billet_url"] = p.BilletURL
	vars["billet_digitable_line"] = p.BilletDigitableLine
	vars["expires_at"] = p.BilletDueDate
	vars["produtos"] = h.formatProducts(p)

	// Pending pix and boleto sales get a payment link so the buyer can
	// finish checkout from the SMS.
	if p.Method == "pix" || p.Method == "boleto" {
		vars["link_pix"] = h.engine.pixLink(ctx, txn)
	}

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleSaleRefused(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = p.Method
	vars["refused_at"] = p.UpdatedAt
	vars["produtos"] = h.formatProducts(p)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleSaleCanceled(ctx context.Context, t *Trigger) error {
	p := t.Payload
	txn := h.transactionID(p)
	if err := h.engine.validateTrigger(txn, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["payment_type"] = p.Method
	vars["canceled_at"] = p.UpdatedAt
	vars["produtos"] = h.formatProducts(p)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, txn)
}

func (h *vegaCheckoutHandler) HandleAbandonedCart(ctx context.Context, t *Trigger) error {
	p := t.Payload
	if err := h.engine.validateTrigger(p.CheckoutID, p.Customer); err != nil {
		return err
	}
	if err := h.engine.checkCredits(ctx, t.Integration.CreatedBy, len(t.Campaign.Messages)); err != nil {
		return err
	}

	vars := h.baseVars(p)
	vars["abandoned_checkout_url"] = p.AbandonedCheckoutURL
	vars["created_at"] = p.CreatedAt
	vars["produtos"] = h.formatProductsFromPlans(p.Plans)

	return h.engine.processMessages(ctx, t, p.Customer.Phone, vars, p.CheckoutID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
