package service

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"wordchain-bot/internal/model"
)

// RankingService handles ranking and leaderboard operations.
type RankingService struct {
	userRepo UserStore
	txRepo   TransactionStore
	clock    quartz.Clock
	timezone *time.Location
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(
	userRepo UserStore,
	txRepo TransactionStore,
	clock quartz.Clock,
	timezone *time.Location,
) *RankingService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &RankingService{
		userRepo: userRepo,
		txRepo:   txRepo,
		clock:    clock,
		timezone: timezone,
	}
}

func (s *RankingService) today() time.Time {
	return s.clock.Now().In(s.timezone)
}

// GetTopUsers retrieves the top users by balance, ties broken by wins.
func (s *RankingService) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.userRepo.GetTopUsers(ctx, limit)
}

// GetDailyWinners retrieves today's biggest word chain winners.
func (s *RankingService) GetDailyWinners(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyWinners(ctx, s.today(), limit)
}

// GetDailyLosers retrieves today's biggest word chain losers.
func (s *RankingService) GetDailyLosers(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyLosers(ctx, s.today(), limit)
}

// GetDailyWinnersForDate retrieves winners for a specific date.
func (s *RankingService) GetDailyWinnersForDate(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyWinners(ctx, date, limit)
}

// GetDailyLosersForDate retrieves losers for a specific date.
func (s *RankingService) GetDailyLosersForDate(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyLosers(ctx, date, limit)
}

// GetDailyStats retrieves every user's net result for today.
func (s *RankingService) GetDailyStats(ctx context.Context) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyStats(ctx, s.today())
}

// GetUserDailyProfit retrieves a specific user's net result for today.
func (s *RankingService) GetUserDailyProfit(ctx context.Context, userID int64) (int64, error) {
	return s.txRepo.GetUserDailyProfit(ctx, userID, s.today())
}
