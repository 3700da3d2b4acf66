package service

import (
	"context"
	"fmt"

	"github.com/sendfy/campaign-engine/internal/models"
)

// Trigger carries one matched webhook event through a platform handler.
type Trigger struct {
	Payload     *models.WebhookPayload
	Integration *models.Integration
	Campaign    *models.Campaign
}

// PlatformHandler processes webhook events for one payment platform,
// one method per semantic event. Platforms that do not emit an event
// return a validation error from the corresponding method.
type PlatformHandler interface {
	HandlePixGenerated(ctx context.Context, t *Trigger) error
	HandleSaleApproved(ctx context.Context, t *Trigger) error
	HandleRefund(ctx context.Context, t *Trigger) error
	HandleChargeback(ctx context.Context, t *Trigger) error
	HandleSalePending(ctx context.Context, t *Trigger) error
	HandleSaleRefused(ctx context.Context, t *Trigger) error
	HandleSaleCanceled(ctx context.Context, t *Trigger) error
	HandleAbandonedCart(ctx context.Context, t *Trigger) error
}

// eventDispatch is the canonical event-type to handler-method table.
var eventDispatch = map[models.EventType]func(PlatformHandler, context.Context, *Trigger) error{
	models.EventPixGenerated:  PlatformHandler.HandlePixGenerated,
	models.EventSaleApproved:  PlatformHandler.HandleSaleApproved,
	models.EventRefund:        PlatformHandler.HandleRefund,
	models.EventChargeback:    PlatformHandler.HandleChargeback,
	models.EventVegaApproved:  PlatformHandler.HandleSaleApproved,
	models.EventVegaRefund:    PlatformHandler.HandleRefund,
	models.EventVegaCharge:    PlatformHandler.HandleChargeback,
	models.EventSalePending:   PlatformHandler.HandleSalePending,
	models.EventSaleRefused:   PlatformHandler.HandleSaleRefused,
	models.EventSaleCanceled:  PlatformHandler.HandleSaleCanceled,
	models.EventAbandonedCart: PlatformHandler.HandleAbandonedCart,
}

// Dispatch routes a trigger to the handler method for its event type.
func Dispatch(ctx context.Context, handler PlatformHandler, event models.EventType, t *Trigger) error {
	method, ok := eventDispatch[event]
	if !ok {
		return models.ErrInvalidInput(fmt.Sprintf("no handler for event type %q", event))
	}
	return method(handler, ctx, t)
}

// errUnsupportedEvent builds the rejection for events a platform never emits.
func errUnsupportedEvent(platform models.PaymentPlatform, event string) error {
	return models.ErrInvalidInput(fmt.Sprintf("event %s is not supported by platform %s", event, platform))
}
