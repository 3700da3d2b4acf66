package service

import "github.com/sendfy/campaign-engine/internal/models"

// for4StatusEvents maps For4Payments status values to event types. The
// status enumeration is the only classification input for this platform.
var for4StatusEvents = map[string]models.EventType{
	"PENDING":    models.EventPixGenerated,
	"APPROVED":   models.EventSaleApproved,
	"REFUNDED":   models.EventRefund,
	"CHARGEBACK": models.EventChargeback,
}

// vegaStatusEvents maps VegaCheckout status values to event types.
var vegaStatusEvents = map[string]models.EventType{
	"approved":    models.EventVegaApproved,
	"pending":     models.EventSalePending,
	"refused":     models.EventSaleRefused,
	"charge_back": models.EventVegaCharge,
	"refunded":    models.EventVegaRefund,
	"canceled":    models.EventSaleCanceled,
}

// vegaEventNames maps the legacy event_name field used by older
// VegaCheckout webhook versions.
var vegaEventNames = map[string]models.EventType{
	"pixGenerated": models.EventPixGenerated,
	"saleApproved": models.EventVegaApproved,
}

// ClassifyEvent maps a raw webhook payload to a semantic event type.
// Returns false when the payload matches no known event; the caller must
// reject the webhook without side effects.
func ClassifyEvent(platform models.PaymentPlatform, p *models.WebhookPayload) (models.EventType, bool) {
	switch platform {
	case models.PlatformFor4Payments:
		et, ok := for4StatusEvents[p.Status]
		return et, ok

	case models.PlatformVegaCheckout:
		// Abandoned carts arrive either with an explicit status or, on
		// older webhook versions, only with the checkout URL present.
		if p.Status == "abandoned_cart" {
			return models.EventAbandonedCart, true
		}
		if p.Status != "" {
			et, ok := vegaStatusEvents[p.Status]
			return et, ok
		}
		if p.AbandonedCheckoutURL != "" {
			return models.EventAbandonedCart, true
		}
		if et, ok := vegaEventNames[p.EventName]; ok {
			return et, true
		}
		return "", false

	default:
		return "", false
	}
}
