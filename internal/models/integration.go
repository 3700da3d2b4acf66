package models

import (
	"time"

	"github.com/google/uuid"
)

// Integration is a named inbound webhook endpoint owned by an account.
// WebhookID is the random path segment payment platforms post to.
type Integration struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	WebhookID string    `json:"webhook_id"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIntegration creates an integration with a fresh random webhook ID.
func NewIntegration(name string, createdBy int64) *Integration {
	return &Integration{
		Name:      name,
		WebhookID: uuid.NewString(),
		CreatedBy: createdBy,
	}
}

// WebhookPath returns the inbound path platforms post to.
func (i *Integration) WebhookPath() string {
	return "/webhook/" + i.WebhookID
}
