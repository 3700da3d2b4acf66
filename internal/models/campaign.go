package models

import (
	"fmt"
	"time"
)

// Campaign status constants
const (
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Delay unit constants
const (
	DelayUnitMinutes = "minutes"
	DelayUnitHours   = "hours"
	DelayUnitDays    = "days"
)

// Campaign binds one payment event type to an ordered list of message
// templates. Only active campaigns are eligible for webhook dispatch.
type Campaign struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	IntegrationID int64             `json:"integration_id"`
	Platform      PaymentPlatform   `json:"platform"`
	EventType     EventType         `json:"event_type"`
	Status        string            `json:"status"`
	Messages      []CampaignMessage `json:"messages"`
	CreatedBy     int64             `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CampaignMessage is one template in a campaign. Messages are processed
// in Position order when the campaign fires.
type CampaignMessage struct {
	ID         int64  `json:"id"`
	CampaignID int64  `json:"campaign_id"`
	Position   int    `json:"position"`
	Template   string `json:"template"`
	DelayTime  int    `json:"delay_time"`
	DelayUnit  string `json:"delay_unit"`
}

// Validate performs validation on campaign data.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if !IsValidPlatform(string(c.Platform)) {
		return ErrInvalidInput(fmt.Sprintf("invalid platform: %s", c.Platform))
	}
	if !IsValidEventForPlatform(c.Platform, c.EventType) {
		return ErrInvalidInput(fmt.Sprintf("event type %q is not valid for platform %s", c.EventType, c.Platform))
	}
	if c.Status != "" && !IsValidCampaignStatus(c.Status) {
		return ErrInvalidInput(fmt.Sprintf("invalid status: %s", c.Status))
	}
	for i := range c.Messages {
		if err := c.Messages[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single campaign message.
func (m *CampaignMessage) Validate() error {
	if m.Template == "" {
		return ErrInvalidInput("message template is required")
	}
	if m.DelayTime < 0 {
		return ErrInvalidInput("delay time must not be negative")
	}
	if m.DelayUnit != "" && UnitDuration(m.DelayUnit) == 0 {
		return ErrInvalidInput(fmt.Sprintf("invalid delay unit: %s", m.DelayUnit))
	}
	return nil
}

// IsValidCampaignStatus checks if the campaign status is valid.
func IsValidCampaignStatus(status string) bool {
	switch status {
	case CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}

// UnitDuration returns the duration of one delay unit. Unknown units
// map to zero, which makes the whole delay zero.
func UnitDuration(unit string) time.Duration {
	switch unit {
	case DelayUnitMinutes:
		return time.Minute
	case DelayUnitHours:
		return time.Hour
	case DelayUnitDays:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Delay computes the scheduling offset for a message. A missing unit
// defaults to minutes.
func (m *CampaignMessage) Delay() time.Duration {
	unit := m.DelayUnit
	if unit == "" {
		unit = DelayUnitMinutes
	}
	return time.Duration(m.DelayTime) * UnitDuration(unit)
}
