package models

import (
	"encoding/json"
	"time"
)

// Delivery outcome constants for campaign history rows.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Webhook history status constants.
const (
	WebhookStatusSuccess = "success"
	WebhookStatusError   = "error"
)

// CampaignHistory is one append-only row per dispatch attempt, immediate
// or fired from schedule. Rows are never updated or deleted.
type CampaignHistory struct {
	ID            int64     `json:"id"`
	CampaignID    int64     `json:"campaign_id"`
	Content       string    `json:"content"`
	Recipient     string    `json:"recipient"`
	ExecutedAt    time.Time `json:"executed_at"`
	Outcome       string    `json:"outcome"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedBy     int64     `json:"created_by"`
}

// WebhookHistory records every inbound webhook attempt against a resolved
// integration+campaign pair, successful or not.
type WebhookHistory struct {
	ID            int64           `json:"id"`
	IntegrationID int64           `json:"integration_id"`
	CampaignID    int64           `json:"campaign_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	ProcessedAt   time.Time       `json:"processed_at"`
}
