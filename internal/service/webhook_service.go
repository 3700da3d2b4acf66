package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sendfy/campaign-engine/internal/gateway"
	"github.com/sendfy/campaign-engine/internal/models"
	"github.com/sendfy/campaign-engine/internal/repository"
	"github.com/sendfy/campaign-engine/internal/shortener"
)

// WebhookService processes inbound payment-platform webhooks end to end:
// it resolves the integration and its active campaign, classifies the
// event, and routes the trigger to the platform handler.
type WebhookService interface {
	ProcessWebhook(ctx context.Context, webhookID string, body []byte) error
}

type webhookService struct {
	integrationRepo repository.IntegrationRepository
	campaignRepo    repository.CampaignRepository
	historyRepo     repository.HistoryRepository
	handlers        map[models.PaymentPlatform]PlatformHandler
	logger          *slog.Logger
	now             func() time.Time
}

// Deps bundles the collaborators the webhook service wires into its
// platform handlers.
type Deps struct {
	AccountRepo     repository.AccountRepository
	IntegrationRepo repository.IntegrationRepository
	CampaignRepo    repository.CampaignRepository
	ScheduledRepo   repository.ScheduledMessageRepository
	HistoryRepo     repository.HistoryRepository
	TemplateSvc     TemplateService
	Sender          gateway.Sender
	Shortener       shortener.Shortener
	Scheduler       MessageScheduler
	AppBaseURL      string
	Logger          *slog.Logger
}

// NewWebhookService creates a webhook service with one handler per
// supported platform.
func NewWebhookService(deps Deps) WebhookService {
	engine := &dispatcher{
		templateSvc:   deps.TemplateSvc,
		sender:        deps.Sender,
		shortener:     deps.Shortener,
		accountRepo:   deps.AccountRepo,
		scheduledRepo: deps.ScheduledRepo,
		historyRepo:   deps.HistoryRepo,
		scheduler:     deps.Scheduler,
		appBaseURL:    deps.AppBaseURL,
		logger:        deps.Logger,
		now:           time.Now,
	}

	return &webhookService{
		integrationRepo: deps.IntegrationRepo,
		campaignRepo:    deps.CampaignRepo,
		historyRepo:     deps.HistoryRepo,
		handlers: map[models.PaymentPlatform]PlatformHandler{
			models.PlatformFor4Payments: &for4PaymentsHandler{engine: engine},
			models.PlatformVegaCheckout: &vegaCheckoutHandler{engine: engine},
		},
		logger: deps.Logger,
		now:    time.Now,
	}
}

// ProcessWebhook runs one webhook attempt. Validation, classification
// and mismatch failures reject the request before any message side
// effects; every attempt against a resolved campaign is recorded in
// webhook history, successful or not.
func (s *webhookService) ProcessWebhook(ctx context.Context, webhookID string, body []byte) error {
	integration, err := s.integrationRepo.GetByWebhookID(ctx, webhookID)
	if err != nil {
		return err
	}

	campaign, err := s.campaignRepo.GetActiveByIntegration(ctx, integration.ID, integration.CreatedBy)
	if err != nil {
		return err
	}

	payload, err := models.ParseWebhookPayload(body)
	if err != nil {
		s.recordWebhook(ctx, integration, campaign, "", body, models.WebhookStatusError, err.Error())
		return err
	}

	eventType, ok := ClassifyEvent(campaign.Platform, payload)
	if !ok {
		err := models.ErrInvalidInput("event type not identified")
		s.recordWebhook(ctx, integration, campaign, "", body, models.WebhookStatusError, err.Error())
		return err
	}

	if eventType != campaign.EventType {
		err := models.ErrInvalidInput(fmt.Sprintf(
			"event type %q does not match campaign event type %q", eventType, campaign.EventType,
		))
		s.recordWebhook(ctx, integration, campaign, string(eventType), body, models.WebhookStatusError, err.Error())
		return err
	}

	handler, ok := s.handlers[campaign.Platform]
	if !ok {
		err := models.ErrInvalidInput(fmt.Sprintf("payment platform %q not supported", campaign.Platform))
		s.recordWebhook(ctx, integration, campaign, string(eventType), body, models.WebhookStatusError, err.Error())
		return err
	}

	trigger := &Trigger{
		Payload:     payload,
		Integration: integration,
		Campaign:    campaign,
	}

	if err := Dispatch(ctx, handler, eventType, trigger); err != nil {
		s.recordWebhook(ctx, integration, campaign, string(eventType), body, models.WebhookStatusError, err.Error())
		return err
	}

	s.recordWebhook(ctx, integration, campaign, string(eventType), body, models.WebhookStatusSuccess, "messages processed successfully")

	s.logger.Info("webhook processed",
		slog.Int64("integration_id", integration.ID),
		slog.Int64("campaign_id", campaign.ID),
		slog.String("event_type", string(eventType)),
	)
	return nil
}

// recordWebhook appends a webhook history row. History write failures
// are logged, never propagated: history must not break the request.
func (s *webhookService) recordWebhook(
	ctx context.Context,
	integration *models.Integration,
	campaign *models.Campaign,
	eventType string,
	payload []byte,
	status, message string,
) {
	entry := &models.WebhookHistory{
		IntegrationID: integration.ID,
		CampaignID:    campaign.ID,
		EventType:     eventType,
		Payload:       payload,
		Status:        status,
		Message:       message,
		ProcessedAt:   s.now(),
	}
	if err := s.historyRepo.AppendWebhook(ctx, entry); err != nil {
		s.logger.Error("failed to append webhook history",
			slog.Int64("integration_id", integration.ID),
			slog.String("error", err.Error()),
		)
	}
}
