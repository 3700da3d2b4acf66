package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sendfy/campaign-engine/internal/models"
)

// ScheduledMessageRepository defines data access for pending scheduled
// sends. Rows are created at trigger time and deleted after one
// delivery attempt; they are never updated.
type ScheduledMessageRepository interface {
	Create(ctx context.Context, msg *models.ScheduledMessage) error
	Delete(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]*models.ScheduledMessage, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledMessage, error)
}

type scheduledMessageRepository struct {
	db *sql.DB
}

// NewScheduledMessageRepository creates a new scheduled message repository
func NewScheduledMessageRepository(db *sql.DB) ScheduledMessageRepository {
	return &scheduledMessageRepository{db: db}
}

// Create inserts a new pending scheduled message
func (r *scheduledMessageRepository) Create(ctx context.Context, msg *models.ScheduledMessage) error {
	query := `
		INSERT INTO scheduled_messages (campaign_id, phone, content, scheduled_at, transaction_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		msg.CampaignID,
		msg.Phone,
		msg.Content,
		msg.ScheduledAt,
		msg.TransactionID,
		msg.CreatedBy,
	).Scan(&msg.ID)

	if err != nil {
		return fmt.Errorf("failed to create scheduled message: %w", err)
	}

	return nil
}

// Delete removes a scheduled message after its delivery attempt
func (r *scheduledMessageRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM scheduled_messages WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete scheduled message: %w", err)
	}

	return nil
}

// ListPending returns every pending scheduled message, used once at
// startup to re-arm timers
func (r *scheduledMessageRepository) ListPending(ctx context.Context) ([]*models.ScheduledMessage, error) {
	query := `
		SELECT id, campaign_id, phone, content, scheduled_at, transaction_id, created_by
		FROM scheduled_messages
		ORDER BY scheduled_at ASC`

	return r.list(ctx, query)
}

// ListDue returns messages whose scheduled instant has already passed
func (r *scheduledMessageRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledMessage, error) {
	query := `
		SELECT id, campaign_id, phone, content, scheduled_at, transaction_id, created_by
		FROM scheduled_messages
		WHERE scheduled_at <= $1
		ORDER BY scheduled_at ASC`

	return r.list(ctx, query, now)
}

func (r *scheduledMessageRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.ScheduledMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.ScheduledMessage{}
	for rows.Next() {
		msg := &models.ScheduledMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.CampaignID,
			&msg.Phone,
			&msg.Content,
			&msg.ScheduledAt,
			&msg.TransactionID,
			&msg.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled messages: %w", err)
	}

	return messages, nil
}
