package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sendfy/campaign-engine/internal/models"
)

// IntegrationRepository defines data access for webhook integrations
type IntegrationRepository interface {
	GetByWebhookID(ctx context.Context, webhookID string) (*models.Integration, error)
	Create(ctx context.Context, integration *models.Integration) error
}

type integrationRepository struct {
	db *sql.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *sql.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

// GetByWebhookID resolves the integration a webhook was posted to
func (r *integrationRepository) GetByWebhookID(ctx context.Context, webhookID string) (*models.Integration, error) {
	query := `
		SELECT id, name, webhook_id, created_by, created_at
		FROM integrations
		WHERE webhook_id = $1`

	integration := &models.Integration{}
	err := r.db.QueryRowContext(ctx, query, webhookID).Scan(
		&integration.ID,
		&integration.Name,
		&integration.WebhookID,
		&integration.CreatedBy,
		&integration.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg("integration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	return integration, nil
}

// Create inserts a new integration
func (r *integrationRepository) Create(ctx context.Context, integration *models.Integration) error {
	query := `
		INSERT INTO integrations (name, webhook_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		integration.Name,
		integration.WebhookID,
		integration.CreatedBy,
	).Scan(&integration.ID, &integration.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}

	return nil
}
