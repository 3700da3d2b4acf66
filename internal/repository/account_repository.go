package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sendfy/campaign-engine/internal/models"
)

// AccountRepository defines data access for accounts and their credit
// balance. Credit mutations are guarded decrements so the balance can
// never go negative, even under concurrent webhook triggers.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	DeductCredits(ctx context.Context, id int64, n int) error
	AddCredits(ctx context.Context, id int64, n int) error
	IncrementSMSSent(ctx context.Context, id int64) error
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, username, credits, total_sms_sent, is_admin
		FROM accounts
		WHERE id = $1`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.Credits,
		&account.TotalSMSSent,
		&account.IsAdmin,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("account with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// DeductCredits atomically removes n credits. The WHERE clause rejects
// the decrement when the balance cannot cover it.
func (r *accountRepository) DeductCredits(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return models.ErrInvalidInput("credit amount must be positive")
	}

	query := `
		UPDATE accounts
		SET credits = credits - $1
		WHERE id = $2 AND credits >= $1`

	result, err := r.db.ExecContext(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("failed to deduct credits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrInsufficientCredits("insufficient credits to send SMS")
	}

	return nil
}

// AddCredits adds n credits to an account
func (r *accountRepository) AddCredits(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return models.ErrInvalidInput("credit amount must be positive")
	}

	query := `
		UPDATE accounts
		SET credits = credits + $1
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("account with ID %d not found", id))
	}

	return nil
}

// IncrementSMSSent bumps the account's sent counter by one
func (r *accountRepository) IncrementSMSSent(ctx context.Context, id int64) error {
	query := `
		UPDATE accounts
		SET total_sms_sent = total_sms_sent + 1
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment sms counter: %w", err)
	}

	return nil
}
