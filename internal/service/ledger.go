package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/model"
	"wordchain-bot/internal/pkg/lock"
	"wordchain-bot/internal/repository"
)

// GameLedger implements wordchain.Ledger over the user and transaction
// repositories. Every call is bounded by callTimeout and mutations hold the
// user's lock, shared with transfers and admin adjustments.
type GameLedger struct {
	users       UserStore
	txs         TransactionStore
	userLock    *lock.KeyLock
	callTimeout time.Duration
	lockTimeout time.Duration
}

var _ wordchain.Ledger = (*GameLedger)(nil)

// NewGameLedger creates a new GameLedger.
func NewGameLedger(users UserStore, txs TransactionStore, userLock *lock.KeyLock, callTimeout, lockTimeout time.Duration) *GameLedger {
	return &GameLedger{
		users:       users,
		txs:         txs,
		userLock:    userLock,
		callTimeout: callTimeout,
		lockTimeout: lockTimeout,
	}
}

// GetBalance returns the user's balance. Unknown users have no coins.
func (l *GameLedger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return user.Balance, nil
}

// Debit withdraws a stake if the balance covers it.
func (l *GameLedger) Debit(ctx context.Context, userID, amount int64, gameID string) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}

	var ok bool
	err := l.locked(ctx, userID, func(ctx context.Context) error {
		var err error
		ok, err = l.users.Debit(ctx, userID, amount)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to debit stake: %w", err)
	}
	if ok {
		l.record(ctx, userID, -amount, model.TxTypeStake, gameID)
	}
	return ok, nil
}

// Credit pays a prize or returns a stake.
func (l *GameLedger) Credit(ctx context.Context, userID, amount int64, kind wordchain.CreditKind, gameID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	err := l.locked(ctx, userID, func(ctx context.Context) error {
		_, err := l.users.UpdateBalance(ctx, userID, amount)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to credit %d: %w", userID, err)
	}

	txType := model.TxTypePrize
	if kind == wordchain.CreditRefund {
		txType = model.TxTypeStakeBack
	}
	l.record(ctx, userID, amount, txType, gameID)
	return nil
}

// RecordGameResult updates the player's stats.
func (l *GameLedger) RecordGameResult(ctx context.Context, userID int64, won bool, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	if err := l.users.RecordGameResult(ctx, userID, won, amount); err != nil {
		return fmt.Errorf("failed to record result for %d: %w", userID, err)
	}
	return nil
}

func (l *GameLedger) locked(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	return l.userLock.WithLockContext(ctx, userID, l.lockTimeout, func() error {
		return fn(ctx)
	})
}

// record writes the audit row. The balance change has already happened, so a
// failure here is logged and not returned.
func (l *GameLedger) record(ctx context.Context, userID, amount int64, txType, gameID string) {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	desc := "game " + gameID
	if _, err := l.txs.Create(ctx, userID, amount, txType, &desc); err != nil {
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("game_id", gameID).
			Str("type", txType).
			Msg("Failed to record game transaction")
	}
}
