// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wordchain-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// pgCheckViolation is the SQLSTATE raised when balance >= 0 would break.
const pgCheckViolation = "23514"

const userColumns = `telegram_id, username, balance, games_played, games_won,
	total_coins_won, total_coins_lost, created_at, updated_at`

// UserRepository handles user data persistence.
type UserRepository struct {
	pool           *pgxpool.Pool
	initialBalance int64
}

// NewUserRepository creates a new UserRepository. New accounts start with initialBalance coins.
func NewUserRepository(pool *pgxpool.Pool, initialBalance int64) *UserRepository {
	return &UserRepository{pool: pool, initialBalance: initialBalance}
}

// InitialBalance returns the balance granted to new accounts.
func (r *UserRepository) InitialBalance() int64 {
	return r.initialBalance
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.Balance,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.TotalCoinsWon,
		&user.TotalCoinsLost,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user with the configured initial balance.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string) (*model.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, balance, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, username, r.initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByUsername looks a user up by username, case-insensitively and with or without a leading @.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`

	name := strings.TrimPrefix(strings.TrimSpace(username), "@")
	user, err := scanUser(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetOrCreate retrieves a user by Telegram ID, creating one if it doesn't exist.
// The bool reports whether the account was created by this call.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, err = r.Create(ctx, telegramID, username)
	if err != nil {
		// Another request may have created the user first.
		user, err = r.GetByID(ctx, telegramID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	return user, true, nil
}

// UpdateBalance adds amount (which may be negative) to the balance and returns the updated user.
// A change that would take the balance below zero fails with ErrInsufficientBalance.
func (r *UserRepository) UpdateBalance(ctx context.Context, telegramID int64, amount int64) (*model.User, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, amount))
	if err != nil {
		return nil, mapBalanceErr(err, "failed to update balance")
	}

	return user, nil
}

// Debit subtracts amount only if the balance covers it. It reports false, with no error,
// when the balance is too low. Check and write happen in one statement.
func (r *UserRepository) Debit(ctx context.Context, telegramID int64, amount int64) (bool, error) {
	const query = `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE telegram_id = $1 AND balance >= $2
	`

	result, err := r.pool.Exec(ctx, query, telegramID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit user: %w", err)
	}
	if result.RowsAffected() == 1 {
		return true, nil
	}

	exists, err := r.Exists(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrUserNotFound
	}
	return false, nil
}

// RecordGameResult bumps the player's game stats. amount is the prize for a win
// and the lost stake otherwise.
func (r *UserRepository) RecordGameResult(ctx context.Context, telegramID int64, won bool, amount int64) error {
	const query = `
		UPDATE users
		SET games_played = games_played + 1,
			games_won = games_won + CASE WHEN $2 THEN 1 ELSE 0 END,
			total_coins_won = total_coins_won + CASE WHEN $2 THEN $3 ELSE 0 END,
			total_coins_lost = total_coins_lost + CASE WHEN $2 THEN 0 ELSE $3 END,
			updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, won, amount)
	if err != nil {
		return fmt.Errorf("failed to record game result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Transfer moves amount from one account to another in a single database transaction.
func (r *UserRepository) Transfer(ctx context.Context, fromID, toID int64, amount int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE users SET balance = balance - $2, updated_at = NOW()
			WHERE telegram_id = $1 AND balance >= $2
		`, fromID, amount)
		if err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		if result.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)`, fromID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check sender: %w", err)
			}
			if !exists {
				return ErrUserNotFound
			}
			return ErrInsufficientBalance
		}

		result, err = tx.Exec(ctx, `
			UPDATE users SET balance = balance + $2, updated_at = NOW()
			WHERE telegram_id = $1
		`, toID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit receiver: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		desc := fmt.Sprintf("transfer %d -> %d", fromID, toID)
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions (user_id, amount, type, description, created_at)
			VALUES ($1, $2, $4, $5, NOW()), ($3, $6, $4, $5, NOW())
		`, fromID, -amount, toID, model.TxTypeTransfer, desc, amount); err != nil {
			return fmt.Errorf("failed to record transfer: %w", err)
		}
		return nil
	})
}

// GetTopUsers retrieves the top N users by balance, ties broken by games won.
func (r *UserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY balance DESC, games_won DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUsername updates a user's username.
// This is useful when a user changes their Telegram username.
func (r *UserRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	const query = `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Exists checks if a user with the given Telegram ID exists.
func (r *UserRepository) Exists(ctx context.Context, telegramID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

func mapBalanceErr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return ErrInsufficientBalance
	}
	return fmt.Errorf("%s: %w", msg, err)
}
