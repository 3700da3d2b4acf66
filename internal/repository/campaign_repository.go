package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sendfy/campaign-engine/internal/models"
)

// CampaignRepository defines data access for campaigns. Messages are
// loaded with their campaign, ordered by position.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	GetActiveByIntegration(ctx context.Context, integrationID, createdBy int64) (*models.Campaign, error)
}

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

// Create inserts a campaign and its messages in one transaction
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if err := campaign.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO campaigns (name, integration_id, platform, event_type, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = tx.QueryRowContext(
		ctx,
		query,
		campaign.Name,
		campaign.IntegrationID,
		campaign.Platform,
		campaign.EventType,
		campaign.Status,
		campaign.CreatedBy,
	).Scan(&campaign.ID, &campaign.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	msgQuery := `
		INSERT INTO campaign_messages (campaign_id, position, template, delay_time, delay_unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for i := range campaign.Messages {
		m := &campaign.Messages[i]
		m.CampaignID = campaign.ID
		m.Position = i
		if err := tx.QueryRowContext(ctx, msgQuery, m.CampaignID, m.Position, m.Template, m.DelayTime, m.DelayUnit).Scan(&m.ID); err != nil {
			return fmt.Errorf("failed to create campaign message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign and its ordered messages
func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `
		SELECT id, name, integration_id, platform, event_type, status, created_by, created_at
		FROM campaigns
		WHERE id = $1`

	campaign := &models.Campaign{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.IntegrationID,
		&campaign.Platform,
		&campaign.EventType,
		&campaign.Status,
		&campaign.CreatedBy,
		&campaign.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if err := r.loadMessages(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

// GetActiveByIntegration finds the active campaign bound to an
// integration. At most one campaign per integration is active.
func (r *campaignRepository) GetActiveByIntegration(ctx context.Context, integrationID, createdBy int64) (*models.Campaign, error) {
	query := `
		SELECT id, name, integration_id, platform, event_type, status, created_by, created_at
		FROM campaigns
		WHERE integration_id = $1 AND created_by = $2 AND status = $3
		ORDER BY id DESC
		LIMIT 1`

	campaign := &models.Campaign{}
	err := r.db.QueryRowContext(ctx, query, integrationID, createdBy, models.CampaignStatusActive).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.IntegrationID,
		&campaign.Platform,
		&campaign.EventType,
		&campaign.Status,
		&campaign.CreatedBy,
		&campaign.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg("no active campaign found for integration")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active campaign: %w", err)
	}

	if err := r.loadMessages(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

func (r *campaignRepository) loadMessages(ctx context.Context, campaign *models.Campaign) error {
	query := `
		SELECT id, campaign_id, position, template, delay_time, delay_unit
		FROM campaign_messages
		WHERE campaign_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, campaign.ID)
	if err != nil {
		return fmt.Errorf("failed to list campaign messages: %w", err)
	}
	defer rows.Close()

	messages := []models.CampaignMessage{}
	for rows.Next() {
		var m models.CampaignMessage
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.Position, &m.Template, &m.DelayTime, &m.DelayUnit); err != nil {
			return fmt.Errorf("failed to scan campaign message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating campaign messages: %w", err)
	}

	campaign.Messages = messages
	return nil
}
