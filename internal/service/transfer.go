package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wordchain-bot/internal/pkg/lock"
	"wordchain-bot/internal/repository"
)

// Transfer-related errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount: must be positive")
	ErrSelfTransfer        = errors.New("cannot transfer to self")
	ErrUserNotFound        = errors.New("user not found")
)

// TransferService handles user-to-user transfers.
type TransferService struct {
	userRepo    UserStore
	userLock    *lock.KeyLock
	lockTimeout time.Duration
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(userRepo UserStore, userLock *lock.KeyLock, lockTimeout time.Duration) *TransferService {
	return &TransferService{
		userRepo:    userRepo,
		userLock:    userLock,
		lockTimeout: lockTimeout,
	}
}

// Transfer moves coins from one user to another. Both users' locks are held
// and the debit is conditional, so a stake withdrawn concurrently can never
// push the sender below zero.
func (s *TransferService) Transfer(ctx context.Context, fromID, toID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}

	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	err := s.userLock.WithLocks([]int64{fromID, toID}, func() error {
		return s.userRepo.Transfer(ctx, fromID, toID, amount)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			return ErrInsufficientBalance
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to transfer: %w", err)
	}

	log.Info().
		Int64("from", fromID).
		Int64("to", toID).
		Int64("amount", amount).
		Msg("Transfer completed")
	return nil
}

// ValidateTransfer validates a transfer without executing it.
// Useful for pre-validation before acquiring locks.
func (s *TransferService) ValidateTransfer(ctx context.Context, fromID, toID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}

	sender, err := s.userRepo.GetByID(ctx, fromID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get sender: %w", err)
	}
	if sender.Balance < amount {
		return ErrInsufficientBalance
	}

	if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get receiver: %w", err)
	}

	return nil
}
