package service

import (
	"context"
	"log/slog"

	"github.com/sendfy/campaign-engine/internal/models"
	"github.com/sendfy/campaign-engine/internal/repository"
)

// CreditService adjusts account credit balances. Admin-only operations;
// the webhook flow consumes credits through the dispatcher instead.
type CreditService interface {
	Add(ctx context.Context, accountID int64, credits int) (*models.Account, error)
	Remove(ctx context.Context, accountID int64, credits int) (*models.Account, error)
}

type creditService struct {
	accountRepo repository.AccountRepository
	logger      *slog.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(accountRepo repository.AccountRepository, logger *slog.Logger) CreditService {
	return &creditService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Add grants credits to an account
func (s *creditService) Add(ctx context.Context, accountID int64, credits int) (*models.Account, error) {
	if err := s.accountRepo.AddCredits(ctx, accountID, credits); err != nil {
		return nil, err
	}

	s.logger.Info("credits added",
		slog.Int64("account_id", accountID),
		slog.Int("credits", credits),
	)
	return s.accountRepo.GetByID(ctx, accountID)
}

// Remove takes credits from an account. Rejected when the balance would
// go negative.
func (s *creditService) Remove(ctx context.Context, accountID int64, credits int) (*models.Account, error) {
	if err := s.accountRepo.DeductCredits(ctx, accountID, credits); err != nil {
		return nil, err
	}

	s.logger.Info("credits removed",
		slog.Int64("account_id", accountID),
		slog.Int("credits", credits),
	)
	return s.accountRepo.GetByID(ctx, accountID)
}
