// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/pkg/lock"
	"wordchain-bot/internal/repository"
)

// AccountService handles user account operations.
type AccountService struct {
	userRepo    UserStore
	txRepo      TransactionStore
	userLock    *lock.KeyLock
	lockTimeout time.Duration
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	userRepo UserStore,
	txRepo TransactionStore,
	userLock *lock.KeyLock,
	lockTimeout time.Duration,
) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		txRepo:      txRepo,
		userLock:    userLock,
		lockTimeout: lockTimeout,
	}
}

// EnsureUser ensures a user exists, creating one if necessary.
// Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.userRepo.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if created {
		desc := "initial balance"
		if _, err := s.txRepo.Create(ctx, telegramID, user.Balance, model.TxTypeInitial, &desc); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to record initial balance")
		}
		log.Info().Int64("user_id", telegramID).Str("username", username).Msg("Account created")
		return user, true, nil
	}

	if user.Username != username && username != "" {
		if err := s.userRepo.UpdateUsername(ctx, telegramID, username); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to update username")
		}
		user.Username = username
	}

	return user, false, nil
}

// GetBalance retrieves a user's current balance.
func (s *AccountService) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return user.Balance, nil
}

// GetUser retrieves a user by their Telegram ID.
func (s *AccountService) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, telegramID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// FindByUsername resolves an @username to a registered account.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateBalance adds amount (negative to subtract) under the user's lock and
// records a transaction for the change.
func (s *AccountService) UpdateBalance(ctx context.Context, telegramID int64, amount int64, txType string, description *string) (*model.User, error) {
	var user *model.User
	err := s.userLock.WithLockContext(ctx, telegramID, s.lockTimeout, func() error {
		var err error
		user, err = s.userRepo.UpdateBalance(ctx, telegramID, amount)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if _, err := s.txRepo.Create(ctx, telegramID, amount, txType, description); err != nil {
		log.Warn().Err(err).Int64("user_id", telegramID).Str("type", txType).Msg("Failed to record transaction")
	}

	return user, nil
}

// GetTopUsers retrieves the top users by balance.
func (s *AccountService) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.userRepo.GetTopUsers(ctx, limit)
}
