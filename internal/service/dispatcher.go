package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/sendfy/campaign-engine/internal/gateway"
	"github.com/sendfy/campaign-engine/internal/models"
	"github.com/sendfy/campaign-engine/internal/repository"
	"github.com/sendfy/campaign-engine/internal/shortener"
)

// MessageScheduler arms timers for persisted scheduled messages.
// Implemented by the scheduler core.
type MessageScheduler interface {
	Schedule(msg *models.ScheduledMessage)
}

// dispatcher is the message-processing engine shared by the platform
// handlers: it renders each campaign message, sends or schedules it, and
// settles credits.
type dispatcher struct {
	templateSvc   TemplateService
	sender        gateway.Sender
	shortener     shortener.Shortener
	accountRepo   repository.AccountRepository
	scheduledRepo repository.ScheduledMessageRepository
	historyRepo   repository.HistoryRepository
	scheduler     MessageScheduler
	appBaseURL    string
	logger        *slog.Logger
	now           func() time.Time
}

// validateTrigger checks the fields every event requires. No side
// effects happen before this passes.
func (d *dispatcher) validateTrigger(transactionID string, customer models.WebhookCustomer) error {
	if transactionID == "" || customer.Name == "" || customer.Phone == "" {
		return models.ErrInvalidInput("required fields missing")
	}
	return nil
}

// checkCredits pre-checks that the account can cover the whole batch.
// Rejecting up front keeps a trigger all-or-nothing: a campaign with two
// messages needs two credits before any message is processed.
func (d *dispatcher) checkCredits(ctx context.Context, accountID int64, messageCount int) error {
	account, err := d.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Credits < messageCount {
		return models.ErrInsufficientCredits("insufficient credits to send SMS")
	}
	return nil
}

// pixLink builds the payment link for a transaction and shortens it.
func (d *dispatcher) pixLink(ctx context.Context, transactionID string) string {
	link := fmt.Sprintf("%s/?transactionId=%s", d.appBaseURL, url.QueryEscape(transactionID))
	return d.shortener.Shorten(ctx, link)
}

// processMessages walks the campaign's messages in order. Zero-delay
// messages are sent immediately and recorded in history; delayed ones
// are persisted and handed to the scheduler. One credit is deducted per
// message as it is initiated, so a crash mid-loop never produces free
// sends. A failed immediate send does not abort the remaining messages.
func (d *dispatcher) processMessages(
	ctx context.Context,
	t *Trigger,
	phone string,
	vars map[string]string,
	transactionID string,
) error {
	campaign := t.Campaign
	accountID := t.Integration.CreatedBy

	for i := range campaign.Messages {
		msg := &campaign.Messages[i]
		content := d.templateSvc.Render(msg.Template, vars)
		delay := msg.Delay()
		scheduledAt := d.now().Add(delay)

		if err := d.accountRepo.DeductCredits(ctx, accountID, 1); err != nil {
			return err
		}

		if delay == 0 {
			d.sendNow(ctx, campaign, phone, content, transactionID, accountID)
			continue
		}

		scheduled := &models.ScheduledMessage{
			CampaignID:    campaign.ID,
			Phone:         phone,
			Content:       content,
			ScheduledAt:   scheduledAt,
			TransactionID: transactionID,
			CreatedBy:     accountID,
		}
		if err := d.scheduledRepo.Create(ctx, scheduled); err != nil {
			return err
		}
		d.scheduler.Schedule(scheduled)
	}

	return nil
}

// sendNow performs one immediate delivery attempt and appends the
// outcome to campaign history. Gateway failures are isolated here: they
// become a failed history row, never an error to the caller.
func (d *dispatcher) sendNow(ctx context.Context, campaign *models.Campaign, phone, content, transactionID string, accountID int64) {
	outcome := models.OutcomeSent
	if err := d.sender.Send(ctx, phone, content); err != nil {
		outcome = models.OutcomeFailed
		d.logger.Error("immediate sms send failed",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("recipient", phone),
			slog.String("error", err.Error()),
		)
	} else {
		if err := d.accountRepo.IncrementSMSSent(ctx, accountID); err != nil {
			d.logger.Error("failed to increment sms counter",
				slog.Int64("account_id", accountID),
				slog.String("error", err.Error()),
			)
		}
	}

	entry := &models.CampaignHistory{
		CampaignID:    campaign.ID,
		Content:       content,
		Recipient:     phone,
		ExecutedAt:    d.now(),
		Outcome:       outcome,
		TransactionID: transactionID,
		CreatedBy:     accountID,
	}
	if err := d.historyRepo.AppendCampaign(ctx, entry); err != nil {
		d.logger.Error("failed to append campaign history",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("error", err.Error()),
		)
	}
}
