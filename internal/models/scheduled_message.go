package models

import "time"

// ScheduledMessage is a persisted, not-yet-delivered message awaiting its
// computed send time. Existence means pending: the row is deleted after a
// single delivery attempt, whether the send succeeds or fails.
type ScheduledMessage struct {
	ID            int64     `json:"id"`
	CampaignID    int64     `json:"campaign_id"`
	Phone         string    `json:"phone"`
	Content       string    `json:"content"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	TransactionID string    `json:"transaction_id"`
	CreatedBy     int64     `json:"created_by"`
}
