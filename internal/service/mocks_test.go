package service

import (
	"context"
	"errors"
	"time"

	"github.com/sendfy/campaign-engine/internal/models"
)

// Mock repositories and collaborators shared by the service tests.

type mockAccountRepository struct {
	accounts map[int64]*models.Account
}

func newMockAccountRepository(accounts ...*models.Account) *mockAccountRepository {
	m := &mockAccountRepository{accounts: make(map[int64]*models.Account)}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("account not found")
	}
	return account, nil
}

func (m *mockAccountRepository) DeductCredits(ctx context.Context, id int64, n int) error {
	account, ok := m.accounts[id]
	if !ok {
		return models.ErrNotFoundWithMsg("account not found")
	}
	if account.Credits < n {
		return models.ErrInsufficientCredits("insufficient credits to send SMS")
	}
	account.Credits -= n
	return nil
}

func (m *mockAccountRepository) AddCredits(ctx context.Context, id int64, n int) error {
	account, ok := m.accounts[id]
	if !ok {
		return models.ErrNotFoundWithMsg("account not found")
	}
	account.Credits += n
	return nil
}

func (m *mockAccountRepository) IncrementSMSSent(ctx context.Context, id int64) error {
	account, ok := m.accounts[id]
	if !ok {
		return models.ErrNotFoundWithMsg("account not found")
	}
	account.TotalSMSSent++
	return nil
}

type mockIntegrationRepository struct {
	integrations []*models.Integration
}

func (m *mockIntegrationRepository) GetByWebhookID(ctx context.Context, webhookID string) (*models.Integration, error) {
	for _, i := range m.integrations {
		if i.WebhookID == webhookID {
			return i, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("integration not found")
}

func (m *mockIntegrationRepository) Create(ctx context.Context, integration *models.Integration) error {
	integration.ID = int64(len(m.integrations) + 1)
	m.integrations = append(m.integrations, integration)
	return nil
}

type mockCampaignRepository struct {
	campaigns []*models.Campaign
}

func (m *mockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = int64(len(m.campaigns) + 1)
	m.campaigns = append(m.campaigns, campaign)
	return nil
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("campaign not found")
}

func (m *mockCampaignRepository) GetActiveByIntegration(ctx context.Context, integrationID, createdBy int64) (*models.Campaign, error) {
	for i := len(m.campaigns) - 1; i >= 0; i-- {
		c := m.campaigns[i]
		if c.IntegrationID == integrationID && c.CreatedBy == createdBy && c.Status == models.CampaignStatusActive {
			return c, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("no active campaign for integration")
}

type mockScheduledMessageRepository struct {
	messages []*models.ScheduledMessage
	nextID   int64
}

func (m *mockScheduledMessageRepository) Create(ctx context.Context, msg *models.ScheduledMessage) error {
	m.nextID++
	msg.ID = m.nextID
	stored := *msg
	m.messages = append(m.messages, &stored)
	return nil
}

func (m *mockScheduledMessageRepository) Delete(ctx context.Context, id int64) error {
	for i, msg := range m.messages {
		if msg.ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockScheduledMessageRepository) ListPending(ctx context.Context) ([]*models.ScheduledMessage, error) {
	return append([]*models.ScheduledMessage{}, m.messages...), nil
}

func (m *mockScheduledMessageRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledMessage, error) {
	due := []*models.ScheduledMessage{}
	for _, msg := range m.messages {
		if !msg.ScheduledAt.After(now) {
			due = append(due, msg)
		}
	}
	return due, nil
}

type mockHistoryRepository struct {
	campaignEntries []*models.CampaignHistory
	webhookEntries  []*models.WebhookHistory
}

func (m *mockHistoryRepository) AppendCampaign(ctx context.Context, entry *models.CampaignHistory) error {
	m.campaignEntries = append(m.campaignEntries, entry)
	return nil
}

func (m *mockHistoryRepository) AppendWebhook(ctx context.Context, entry *models.WebhookHistory) error {
	m.webhookEntries = append(m.webhookEntries, entry)
	return nil
}

type sentSMS struct {
	Phone   string
	Content string
}

type mockSender struct {
	sent []sentSMS
	fail bool
}

func (m *mockSender) Send(ctx context.Context, phone, content string) error {
	if m.fail {
		return errors.New("gateway unavailable")
	}
	m.sent = append(m.sent, sentSMS{Phone: phone, Content: content})
	return nil
}

// identityShortener returns URLs unchanged.
type identityShortener struct{}

func (identityShortener) Shorten(ctx context.Context, url string) string { return url }

type mockScheduler struct {
	scheduled []*models.ScheduledMessage
}

func (m *mockScheduler) Schedule(msg *models.ScheduledMessage) {
	stored := *msg
	m.scheduled = append(m.scheduled, &stored)
}
