package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				telegram_id BIGINT PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				balance BIGINT NOT NULL DEFAULT 100 CHECK (balance >= 0),
				games_played INT NOT NULL DEFAULT 0,
				games_won INT NOT NULL DEFAULT 0,
				total_coins_won BIGINT NOT NULL DEFAULT 0,
				total_coins_lost BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance DESC, games_won DESC);
			CREATE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));
		`,
	},
	{
		name: "transactions table",
		sql: `
			CREATE TABLE IF NOT EXISTS transactions (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
				amount BIGINT NOT NULL,
				type VARCHAR(50) NOT NULL,
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_transactions_type_time ON transactions(type, created_at DESC);
		`,
	},
	{
		name: "games table",
		sql: `
			CREATE TABLE IF NOT EXISTS games (
				game_id TEXT PRIMARY KEY,
				chat_id BIGINT NOT NULL,
				kind VARCHAR(20) NOT NULL,
				state VARCHAR(20) NOT NULL,
				stake BIGINT NOT NULL,
				creator_id BIGINT NOT NULL,
				player_ids BIGINT[] NOT NULL DEFAULT '{}',
				winner_ids BIGINT[] NOT NULL DEFAULT '{}',
				words TEXT[] NOT NULL DEFAULT '{}',
				pot BIGINT NOT NULL DEFAULT 0,
				share_each BIGINT NOT NULL DEFAULT 0,
				rounding_loss BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				finished_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_games_chat_time ON games(chat_id, created_at DESC);
		`,
	},
}

// Migrate applies the schema. Every statement is idempotent so it runs on each start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return err
		}
		log.Info().Int("step", i+1).Str("migration", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
