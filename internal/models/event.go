package models

// PaymentPlatform identifies a supported payment platform.
type PaymentPlatform string

const (
	PlatformFor4Payments PaymentPlatform = "For4Payments"
	PlatformVegaCheckout PaymentPlatform = "VegaCheckout"
)

// EventType is a semantic payment event a campaign can be bound to.
// The values are the user-facing labels the campaign editor exposes.
type EventType string

const (
	EventPixGenerated  EventType = "Pix Gerado"
	EventSaleApproved  EventType = "Compra aprovada"
	EventRefund        EventType = "Reembolso"
	EventChargeback    EventType = "Chargeback"
	EventVegaApproved  EventType = "Venda aprovada"
	EventSalePending   EventType = "Venda aguardando pagamento"
	EventSaleRefused   EventType = "Venda recusada"
	EventVegaCharge    EventType = "Venda chargeback"
	EventVegaRefund    EventType = "Venda estornada"
	EventSaleCanceled  EventType = "Venda cancelada"
	EventAbandonedCart EventType = "Carrinho abandonado"
)

// platformEventTypes maps each platform to the event types it can emit.
var platformEventTypes = map[PaymentPlatform][]EventType{
	PlatformFor4Payments: {
		EventPixGenerated,
		EventSaleApproved,
		EventRefund,
		EventChargeback,
	},
	PlatformVegaCheckout: {
		EventPixGenerated,
		EventVegaApproved,
		EventSalePending,
		EventSaleRefused,
		EventVegaCharge,
		EventVegaRefund,
		EventSaleCanceled,
		EventAbandonedCart,
	},
}

// IsValidPlatform checks if the platform is supported.
func IsValidPlatform(platform string) bool {
	_, ok := platformEventTypes[PaymentPlatform(platform)]
	return ok
}

// IsValidEventForPlatform checks that an event type belongs to the
// platform's valid set. Campaign writes are validated against this.
func IsValidEventForPlatform(platform PaymentPlatform, event EventType) bool {
	for _, et := range platformEventTypes[platform] {
		if et == event {
			return true
		}
	}
	return false
}

// EventTypesForPlatform returns the valid event types for a platform.
func EventTypesForPlatform(platform PaymentPlatform) []EventType {
	return platformEventTypes[platform]
}
