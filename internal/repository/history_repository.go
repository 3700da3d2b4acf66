package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sendfy/campaign-engine/internal/models"
)

// HistoryRepository appends dispatch and webhook history rows. Both
// tables are append-only.
type HistoryRepository interface {
	AppendCampaign(ctx context.Context, entry *models.CampaignHistory) error
	AppendWebhook(ctx context.Context, entry *models.WebhookHistory) error
}

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// AppendCampaign records one dispatch attempt
func (r *historyRepository) AppendCampaign(ctx context.Context, entry *models.CampaignHistory) error {
	query := `
		INSERT INTO campaign_history (campaign_id, content, recipient, executed_at, outcome, transaction_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.CampaignID,
		entry.Content,
		entry.Recipient,
		entry.ExecutedAt,
		entry.Outcome,
		entry.TransactionID,
		entry.CreatedBy,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to append campaign history: %w", err)
	}

	return nil
}

// AppendWebhook records one inbound webhook attempt
func (r *historyRepository) AppendWebhook(ctx context.Context, entry *models.WebhookHistory) error {
	query := `
		INSERT INTO webhook_history (integration_id, campaign_id, event_type, payload, status, message, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.IntegrationID,
		entry.CampaignID,
		entry.EventType,
		[]byte(entry.Payload),
		entry.Status,
		entry.Message,
		entry.ProcessedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to append webhook history: %w", err)
	}

	return nil
}
