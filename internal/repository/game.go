package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wordchain-bot/internal/model"
)

// ErrGameNotFound is returned when no history row matches a game ID.
var ErrGameNotFound = errors.New("game not found")

const gameColumns = `game_id, chat_id, kind, state, stake, creator_id, player_ids, winner_ids,
	words, pot, share_each, rounding_loss, created_at, finished_at`

// GameRepository stores summaries of ended word chain games.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Save inserts the record. Saving the same game ID twice overwrites the first row.
func (r *GameRepository) Save(ctx context.Context, rec *model.GameRecord) error {
	const query = `
		INSERT INTO games (game_id, chat_id, kind, state, stake, creator_id, player_ids, winner_ids,
			words, pot, share_each, rounding_loss, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (game_id) DO UPDATE SET
			state = EXCLUDED.state,
			player_ids = EXCLUDED.player_ids,
			winner_ids = EXCLUDED.winner_ids,
			words = EXCLUDED.words,
			pot = EXCLUDED.pot,
			share_each = EXCLUDED.share_each,
			rounding_loss = EXCLUDED.rounding_loss,
			finished_at = EXCLUDED.finished_at
	`

	_, err := r.pool.Exec(ctx, query,
		rec.GameID,
		rec.ChatID,
		rec.Kind,
		rec.State,
		rec.Stake,
		rec.CreatorID,
		nonNilInts(rec.PlayerIDs),
		nonNilInts(rec.WinnerIDs),
		nonNilStrings(rec.Words),
		rec.Pot,
		rec.ShareEach,
		rec.RoundingLoss,
		rec.CreatedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", rec.GameID, err)
	}
	return nil
}

// GetByID loads a single record.
func (r *GameRepository) GetByID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = $1`

	rec, err := scanGame(r.pool.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return rec, nil
}

// ListByChat returns the most recent games of a chat, newest first.
func (r *GameRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]*model.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var records []*model.GameRecord
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return records, nil
}

func scanGame(row pgx.Row) (*model.GameRecord, error) {
	var rec model.GameRecord
	err := row.Scan(
		&rec.GameID,
		&rec.ChatID,
		&rec.Kind,
		&rec.State,
		&rec.Stake,
		&rec.CreatorID,
		&rec.PlayerIDs,
		&rec.WinnerIDs,
		&rec.Words,
		&rec.Pot,
		&rec.ShareEach,
		&rec.RoundingLoss,
		&rec.CreatedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func nonNilInts(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
