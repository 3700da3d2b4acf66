package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sendfy/campaign-engine/internal/gateway"
	"github.com/sendfy/campaign-engine/internal/models"
	"github.com/sendfy/campaign-engine/internal/repository"
)

// executeTimeout bounds one delivery attempt fired from a timer.
const executeTimeout = 30 * time.Second

// Scheduler owns one timer per pending scheduled message and fires the
// delivery attempt at the scheduled instant. The registry is keyed by
// the scheduled-message row ID: transaction IDs repeat across messages
// of one trigger, row IDs do not. Registering an already-tracked row is
// a no-op, so reload paths cannot arm duplicate timers.
//
// A message makes a single attempt. Success or failure, the row is
// deleted and the outcome appended to campaign history; there is no
// retry state.
type Scheduler struct {
	scheduledRepo repository.ScheduledMessageRepository
	historyRepo   repository.HistoryRepository
	accountRepo   repository.AccountRepository
	sender        gateway.Sender
	logger        *slog.Logger

	mu       sync.Mutex
	timers   map[int64]*time.Timer
	inflight map[int64]bool

	// execMu serializes delivery callbacks so fires never overlap.
	execMu sync.Mutex

	now func() time.Time
}

// New creates a scheduler
func New(
	scheduledRepo repository.ScheduledMessageRepository,
	historyRepo repository.HistoryRepository,
	accountRepo repository.AccountRepository,
	sender gateway.Sender,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		scheduledRepo: scheduledRepo,
		historyRepo:   historyRepo,
		accountRepo:   accountRepo,
		sender:        sender,
		logger:        logger,
		timers:        make(map[int64]*time.Timer),
		inflight:      make(map[int64]bool),
		now:           time.Now,
	}
}

// Schedule arms a timer for the message's scheduled instant. Instants in
// the past fire on the next tick rather than being dropped. Duplicate
// registrations for the same row are rejected.
func (s *Scheduler) Schedule(msg *models.ScheduledMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.timers[msg.ID]; exists || s.inflight[msg.ID] {
		s.logger.Warn("scheduled message already registered, skipping",
			slog.Int64("scheduled_message_id", msg.ID),
			slog.String("transaction_id", msg.TransactionID),
		)
		return
	}

	delay := msg.ScheduledAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	m := *msg
	s.timers[msg.ID] = time.AfterFunc(delay, func() {
		s.fire(&m)
	})

	s.logger.Info("scheduled message armed",
		slog.Int64("scheduled_message_id", msg.ID),
		slog.Int64("campaign_id", msg.CampaignID),
		slog.Time("scheduled_at", msg.ScheduledAt),
	)
}

// Cancel disarms the timer for a scheduled message without touching the
// persisted row. Returns false if no timer was armed.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	return true
}

// PendingCount reports how many timers are currently armed.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// LoadPending re-arms a timer for every persisted scheduled message.
// Invoked once at process start; rows already due fire immediately.
func (s *Scheduler) LoadPending(ctx context.Context) error {
	messages, err := s.scheduledRepo.ListPending(ctx)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		s.Schedule(msg)
	}

	s.logger.Info("pending scheduled messages loaded",
		slog.Int("count", len(messages)),
	)
	return nil
}

// ProcessDue executes every message whose scheduled instant has passed.
// Fallback for missed timers, not the primary delivery path.
func (s *Scheduler) ProcessDue(ctx context.Context) error {
	messages, err := s.scheduledRepo.ListDue(ctx, s.now())
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if !s.claim(msg.ID) {
			continue
		}
		s.execute(msg)
	}
	return nil
}

// StopAll disarms every tracked timer without deleting persisted rows.
// Graceful shutdown hook; the rows are reloaded on the next start.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.logger.Info("all scheduled timers stopped")
}

// fire runs when a timer elapses.
func (s *Scheduler) fire(msg *models.ScheduledMessage) {
	if !s.claim(msg.ID) {
		return
	}
	s.execute(msg)
}

// claim takes exclusive ownership of a message's delivery attempt,
// disarming its timer if one is pending. Returns false when the message
// is already being delivered.
func (s *Scheduler) claim(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[id] {
		return false
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.inflight[id] = true
	return true
}

// execute performs the single delivery attempt and terminates the
// pending record whatever the outcome.
func (s *Scheduler) execute(msg *models.ScheduledMessage) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
	defer cancel()

	outcome := models.OutcomeSent
	if err := s.sender.Send(ctx, msg.Phone, msg.Content); err != nil {
		outcome = models.OutcomeFailed
		s.logger.Error("scheduled sms send failed",
			slog.Int64("scheduled_message_id", msg.ID),
			slog.String("recipient", msg.Phone),
			slog.String("error", err.Error()),
		)
	} else {
		if err := s.accountRepo.IncrementSMSSent(ctx, msg.CreatedBy); err != nil {
			s.logger.Error("failed to increment sms counter",
				slog.Int64("account_id", msg.CreatedBy),
				slog.String("error", err.Error()),
			)
		}
	}

	entry := &models.CampaignHistory{
		CampaignID:    msg.CampaignID,
		Content:       msg.Content,
		Recipient:     msg.Phone,
		ExecutedAt:    s.now(),
		Outcome:       outcome,
		TransactionID: msg.TransactionID,
		CreatedBy:     msg.CreatedBy,
	}
	if err := s.historyRepo.AppendCampaign(ctx, entry); err != nil {
		s.logger.Error("failed to append campaign history",
			slog.Int64("campaign_id", msg.CampaignID),
			slog.String("error", err.Error()),
		)
	}

	// Delete on both outcomes: with no retry scheduling, a lingering row
	// would be reloaded and re-attempted forever at startup.
	if err := s.scheduledRepo.Delete(ctx, msg.ID); err != nil {
		s.logger.Error("failed to delete scheduled message",
			slog.Int64("scheduled_message_id", msg.ID),
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	delete(s.inflight, msg.ID)
	s.mu.Unlock()

	s.logger.Info("scheduled message executed",
		slog.Int64("scheduled_message_id", msg.ID),
		slog.String("outcome", outcome),
	)
}
