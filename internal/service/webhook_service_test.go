package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sendfy/campaign-engine/internal/models"
)

type webhookFixture struct {
	svc           WebhookService
	accounts      *mockAccountRepository
	integrations  *mockIntegrationRepository
	campaigns     *mockCampaignRepository
	scheduled     *mockScheduledMessageRepository
	history       *mockHistoryRepository
	sender        *mockSender
	schedulerMock *mockScheduler
}

func newWebhookFixture(credits int, campaign *models.Campaign) *webhookFixture {
	f := &webhookFixture{
		accounts: newMockAccountRepository(&models.Account{
			ID:       1,
			Username: "owner",
			Credits:  credits,
		}),
		integrations:  &mockIntegrationRepository{},
		campaigns:     &mockCampaignRepository{},
		scheduled:     &mockScheduledMessageRepository{},
		history:       &mockHistoryRepository{},
		sender:        &mockSender{},
		schedulerMock: &mockScheduler{},
	}

	integration := &models.Integration{
		Name:      "store",
		WebhookID: "wh-123",
		CreatedBy: 1,
	}
	f.integrations.Create(context.Background(), integration)

	if campaign != nil {
		campaign.IntegrationID = integration.ID
		campaign.CreatedBy = 1
		f.campaigns.Create(context.Background(), campaign)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewWebhookService(Deps{
		AccountRepo:     f.accounts,
		IntegrationRepo: f.integrations,
		CampaignRepo:    f.campaigns,
		ScheduledRepo:   f.scheduled,
		HistoryRepo:     f.history,
		TemplateSvc:     NewTemplateService(),
		Sender:          f.sender,
		Shortener:       identityShortener{},
		Scheduler:       f.schedulerMock,
		AppBaseURL:      "https://app.example",
		Logger:          logger,
	})
	return f
}

func approvedCampaign(messages ...models.CampaignMessage) *models.Campaign {
	return &models.Campaign{
		Name:      "post purchase",
		Platform:  models.PlatformFor4Payments,
		EventType: models.EventSaleApproved,
		Status:    models.CampaignStatusActive,
		Messages:  messages,
	}
}

const approvedPayload = `{
	"paymentId": "pay_1",
	"status": "APPROVED",
	"customer": {"name": "Ana", "phone": "5511999999999", "email": "ana@example.com"},
	"totalValue": 29.9,
	"approvedAt": "2026-01-15T10:00:00Z",
	"items": [{"name": "Curso", "quantity": 1}]
}`

func TestProcessWebhook_UnknownIntegration(t *testing.T) {
	f := newWebhookFixture(10, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"},
	))

	err := f.svc.ProcessWebhook(context.Background(), "no-such-webhook", []byte(approvedPayload))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("ProcessWebhook() error = %v, want not found", err)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("sent %d messages for unknown integration", len(f.sender.sent))
	}
	if len(f.history.webhookEntries) != 0 || len(f.history.campaignEntries) != 0 {
		t.Error("history written before integration resolution")
	}
}

func TestProcessWebhook_NoActiveCampaign(t *testing.T) {
	paused := approvedCampaign(models.CampaignMessage{Position: 1, Template: "Oi"})
	paused.Status = models.CampaignStatusPaused
	f := newWebhookFixture(10, paused)

	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(approvedPayload))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("ProcessWebhook() error = %v, want not found", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("sent messages without an active campaign")
	}
}

func TestProcessWebhook_MalformedPayload(t *testing.T) {
	f := newWebhookFixture(10, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"},
	))

	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte("{not json"))
	if err == nil {
		t.Fatal("ProcessWebhook() accepted malformed JSON")
	}
	if len(f.history.webhookEntries) != 1 {
		t.Fatalf("webhook history entries = %d, want 1", len(f.history.webhookEntries))
	}
	if f.history.webhookEntries[0].Status != models.WebhookStatusError {
		t.Errorf("webhook history status = %q, want %q", f.history.webhookEntries[0].Status, models.WebhookStatusError)
	}
}

func TestProcessWebhook_UnidentifiedEvent(t *testing.T) {
	f := newWebhookFixture(10, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"},
	))

	body := `{"paymentId": "pay_1", "status": "PROCESSING", "customer": {"name": "Ana", "phone": "55"}}`
	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(body))
	if err == nil || !strings.Contains(err.Error(), "not identified") {
		t.Fatalf("ProcessWebhook() error = %v, want event not identified", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("sent messages for an unidentified event")
	}
	if len(f.history.webhookEntries) != 1 || f.history.webhookEntries[0].Status != models.WebhookStatusError {
		t.Error("unidentified event not recorded as webhook error")
	}
}

func TestProcessWebhook_EventMismatch(t *testing.T) {
	campaign := approvedCampaign(models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"})
	campaign.EventType = models.EventPixGenerated
	f := newWebhookFixture(10, campaign)

	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(approvedPayload))
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("ProcessWebhook() error = %v, want event mismatch", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("sent messages on event mismatch")
	}
	if len(f.history.webhookEntries) != 1 {
		t.Fatalf("webhook history entries = %d, want 1", len(f.history.webhookEntries))
	}
	entry := f.history.webhookEntries[0]
	if entry.Status != models.WebhookStatusError {
		t.Errorf("webhook history status = %q, want %q", entry.Status, models.WebhookStatusError)
	}
	if entry.EventType != string(models.EventSaleApproved) {
		t.Errorf("webhook history event type = %q, want %q", entry.EventType, models.EventSaleApproved)
	}
}

func TestProcessWebhook_InsufficientCredits(t *testing.T) {
	f := newWebhookFixture(1, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"},
		models.CampaignMessage{Position: 2, Template: "Lembrete {{nome}}", DelayTime: 10, DelayUnit: models.DelayUnitMinutes},
	))

	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(approvedPayload))

	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "INSUFFICIENT_CREDITS" {
		t.Fatalf("ProcessWebhook() error = %v, want insufficient credits", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("sent messages despite insufficient credits")
	}
	if len(f.scheduled.messages) != 0 {
		t.Error("scheduled messages despite insufficient credits")
	}
	account, _ := f.accounts.GetByID(context.Background(), 1)
	if account.Credits != 1 {
		t.Errorf("credits = %d, want 1 (untouched)", account.Credits)
	}
}

func TestProcessWebhook_MissingRequiredFields(t *testing.T) {
	f := newWebhookFixture(10, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}"},
	))

	body := `{"paymentId": "pay_1", "status": "APPROVED", "customer": {"name": "Ana"}}`
	err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(body))
	if err == nil || !strings.Contains(err.Error(), "required fields missing") {
		t.Fatalf("ProcessWebhook() error = %v, want required fields missing", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("sent messages despite missing required fields")
	}
}

func TestProcessWebhook_ImmediateAndDelayed(t *testing.T) {
	f := newWebhookFixture(5, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "Oi {{nome}}, compra aprovada"},
		models.CampaignMessage{Position: 2, Template: "Lembrete para {{nome}}", DelayTime: 10, DelayUnit: models.DelayUnitMinutes},
	))

	if err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(approvedPayload)); err != nil {
		t.Fatalf("ProcessWebhook() error = %v", err)
	}

	if len(f.sender.sent) != 1 {
		t.Fatalf("immediate sends = %d, want 1", len(f.sender.sent))
	}
	if f.sender.sent[0].Phone != "5511999999999" {
		t.Errorf("recipient = %q, want customer phone", f.sender.sent[0].Phone)
	}
	if f.sender.sent[0].Content != "Oi Ana, compra aprovada" {
		t.Errorf("content = %q, want rendered template", f.sender.sent[0].Content)
	}

	if len(f.scheduled.messages) != 1 {
		t.Fatalf("persisted scheduled messages = %d, want 1", len(f.scheduled.messages))
	}
	delayed := f.scheduled.messages[0]
	if delayed.Content != "Lembrete para Ana" {
		t.Errorf("scheduled content = %q, want rendered template", delayed.Content)
	}
	if delayed.TransactionID != "pay_1" {
		t.Errorf("scheduled transaction id = %q, want pay_1", delayed.TransactionID)
	}
	if len(f.schedulerMock.scheduled) != 1 {
		t.Fatalf("scheduler registrations = %d, want 1", len(f.schedulerMock.scheduled))
	}
	if f.schedulerMock.scheduled[0].ID != delayed.ID {
		t.Error("scheduler received a message without its persisted row ID")
	}

	account, _ := f.accounts.GetByID(context.Background(), 1)
	if account.Credits != 3 {
		t.Errorf("credits = %d, want 3 (two deducted)", account.Credits)
	}
	if account.TotalSMSSent != 1 {
		t.Errorf("total sms sent = %d, want 1 (delayed message not sent yet)", account.TotalSMSSent)
	}

	if len(f.history.campaignEntries) != 1 {
		t.Fatalf("campaign history entries = %d, want 1", len(f.history.campaignEntries))
	}
	if f.history.campaignEntries[0].Outcome != models.OutcomeSent {
		t.Errorf("history outcome = %q, want %q", f.history.campaignEntries[0].Outcome, models.OutcomeSent)
	}

	if len(f.history.webhookEntries) != 1 || f.history.webhookEntries[0].Status != models.WebhookStatusSuccess {
		t.Error("successful webhook not recorded in webhook history")
	}
}

func TestProcessWebhook_GatewayFailureIsIsolated(t *testing.T) {
	f := newWebhookFixture(5, approvedCampaign(
		models.CampaignMessage{Position: 1, Template: "primeira"},
		models.CampaignMessage{Position: 2, Template: "segunda"},
	))
	f.sender.fail = true

	if err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(approvedPayload)); err != nil {
		t.Fatalf("ProcessWebhook() error = %v, want nil (gateway failures isolated)", err)
	}

	if len(f.history.campaignEntries) != 2 {
		t.Fatalf("campaign history entries = %d, want 2", len(f.history.campaignEntries))
	}
	for _, entry := range f.history.campaignEntries {
		if entry.Outcome != models.OutcomeFailed {
			t.Errorf("history outcome = %q, want %q", entry.Outcome, models.OutcomeFailed)
		}
	}

	account, _ := f.accounts.GetByID(context.Background(), 1)
	if account.TotalSMSSent != 0 {
		t.Errorf("total sms sent = %d, want 0 after failed deliveries", account.TotalSMSSent)
	}
	if account.Credits != 3 {
		t.Errorf("credits = %d, want 3 (deducted even on failed sends)", account.Credits)
	}
}

func TestProcessWebhook_VegaAbandonedCart(t *testing.T) {
	campaign := &models.Campaign{
		Name:      "cart recovery",
		Platform:  models.PlatformVegaCheckout,
		EventType: models.EventAbandonedCart,
		Status:    models.CampaignStatusActive,
		Messages: []models.CampaignMessage{
			{Position: 1, Template: "{{nome}}, finalize: {{abandoned_checkout_url}}"},
		},
	}
	f := newWebhookFixture(5, campaign)

	body := `{
		"checkout_id": "chk_9",
		"status": "abandoned_cart",
		"abandoned_checkout_url": "https://vega.example/cart/chk_9",
		"customer": {"name": "Bruno", "phone": "5521888888888"}
	}`
	if err := f.svc.ProcessWebhook(context.Background(), "wh-123", []byte(body)); err != nil {
		t.Fatalf("ProcessWebhook() error = %v", err)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("immediate sends = %d, want 1", len(f.sender.sent))
	}
	if f.sender.sent[0].Content != "Bruno, finalize: https://vega.example/cart/chk_9" {
		t.Errorf("content = %q, want rendered cart link", f.sender.sent[0].Content)
	}
}
