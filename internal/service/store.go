package service

import (
	"context"
	"time"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/repository"
)

// UserStore is the account persistence the services need.
type UserStore interface {
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
	UpdateBalance(ctx context.Context, telegramID int64, amount int64) (*model.User, error)
	Debit(ctx context.Context, telegramID int64, amount int64) (bool, error)
	Transfer(ctx context.Context, fromID, toID int64, amount int64) error
	RecordGameResult(ctx context.Context, telegramID int64, won bool, amount int64) error
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)
}

// TransactionStore records balance changes and aggregates them per day.
type TransactionStore interface {
	Create(ctx context.Context, userID int64, amount int64, txType string, description *string) (*model.Transaction, error)
	GetDailyStats(ctx context.Context, date time.Time) ([]*model.DailyRank, error)
	GetDailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error)
	GetDailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error)
	GetUserDailyProfit(ctx context.Context, userID int64, date time.Time) (int64, error)
}

// GameStore keeps summaries of ended games.
type GameStore interface {
	Save(ctx context.Context, rec *model.GameRecord) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]*model.GameRecord, error)
}

var (
	_ UserStore        = (*repository.UserRepository)(nil)
	_ TransactionStore = (*repository.TransactionRepository)(nil)
	_ GameStore        = (*repository.GameRepository)(nil)
)
