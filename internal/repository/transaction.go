package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wordchain-bot/internal/model"
)

// TransactionRepository handles transaction data persistence.
type TransactionRepository struct {
	pool      *pgxpool.Pool
	gameTypes []string
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool, gameTypes: model.GameTransactionTypes()}
}

// Create creates a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, userID int64, amount int64, txType string, description *string) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, amount, type, description, created_at
	`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, userID, amount, txType, description))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return tx, nil
}

// CreateWithTime creates a new transaction record with a specific timestamp.
// Useful for testing and data migration.
func (r *TransactionRepository) CreateWithTime(ctx context.Context, userID int64, amount int64, txType string, description *string, createdAt time.Time) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, amount, type, description, created_at
	`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, userID, amount, txType, description, createdAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return tx, nil
}

// GetByUserID retrieves transactions for a user, newest first.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, user_id, amount, type, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return collectTransactions(rows)
}

// GetByUserIDAndType retrieves transactions for a user filtered by type.
func (r *TransactionRepository) GetByUserIDAndType(ctx context.Context, userID int64, txType string, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, user_id, amount, type, description, created_at
		FROM transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return collectTransactions(rows)
}

// GetDailyStats returns every user's word chain net result for the day containing date.
func (r *TransactionRepository) GetDailyStats(ctx context.Context, date time.Time) ([]*model.DailyRank, error) {
	start, end := dayBounds(date)

	const query = `
		SELECT t.user_id, u.username, COALESCE(SUM(t.amount), 0) AS net_profit
		FROM transactions t
		JOIN users u ON t.user_id = u.telegram_id
		WHERE t.type = ANY($1)
		  AND t.created_at >= $2
		  AND t.created_at < $3
		GROUP BY t.user_id, u.username
		ORDER BY net_profit DESC
	`

	rows, err := r.pool.Query(ctx, query, r.gameTypes, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return collectRanks(rows)
}

// GetDailyWinners returns users with a positive net result for the day, biggest first.
func (r *TransactionRepository) GetDailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	start, end := dayBounds(date)

	const query = `
		SELECT t.user_id, u.username, COALESCE(SUM(t.amount), 0) AS net_profit
		FROM transactions t
		JOIN users u ON t.user_id = u.telegram_id
		WHERE t.type = ANY($1)
		  AND t.created_at >= $2
		  AND t.created_at < $3
		GROUP BY t.user_id, u.username
		HAVING SUM(t.amount) > 0
		ORDER BY net_profit DESC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, r.gameTypes, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily winners: %w", err)
	}
	return collectRanks(rows)
}

// GetDailyLosers returns users with a negative net result for the day, biggest loss first.
func (r *TransactionRepository) GetDailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	start, end := dayBounds(date)

	const query = `
		SELECT t.user_id, u.username, COALESCE(SUM(t.amount), 0) AS net_profit
		FROM transactions t
		JOIN users u ON t.user_id = u.telegram_id
		WHERE t.type = ANY($1)
		  AND t.created_at >= $2
		  AND t.created_at < $3
		GROUP BY t.user_id, u.username
		HAVING SUM(t.amount) < 0
		ORDER BY net_profit ASC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, r.gameTypes, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily losers: %w", err)
	}
	return collectRanks(rows)
}

// GetUserDailyProfit retrieves a specific user's word chain net result for a date.
func (r *TransactionRepository) GetUserDailyProfit(ctx context.Context, userID int64, date time.Time) (int64, error) {
	start, end := dayBounds(date)

	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		  AND type = ANY($2)
		  AND created_at >= $3
		  AND created_at < $4
	`

	var profit int64
	err := r.pool.QueryRow(ctx, query, userID, r.gameTypes, start, end).Scan(&profit)
	if err != nil {
		return 0, fmt.Errorf("failed to get user daily profit: %w", err)
	}

	return profit, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var tx model.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Type,
		&tx.Description,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]*model.Transaction, error) {
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func collectRanks(rows pgx.Rows) ([]*model.DailyRank, error) {
	defer rows.Close()

	var ranks []*model.DailyRank
	for rows.Next() {
		var rank model.DailyRank
		if err := rows.Scan(&rank.UserID, &rank.Username, &rank.NetProfit); err != nil {
			return nil, fmt.Errorf("failed to scan daily rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily ranks: %w", err)
	}

	return ranks, nil
}
