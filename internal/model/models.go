// Package model defines the data models for the word chain bot.
package model

import "time"

// User represents a Telegram user account with its coin balance and game stats.
type User struct {
	TelegramID     int64     `db:"telegram_id"`
	Username       string    `db:"username"`
	Balance        int64     `db:"balance"`
	GamesPlayed    int       `db:"games_played"`
	GamesWon       int       `db:"games_won"`
	TotalCoinsWon  int64     `db:"total_coins_won"`
	TotalCoinsLost int64     `db:"total_coins_lost"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// WinRate returns the share of played games that were won, in percent.
func (u *User) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed) * 100
}

// Transaction represents a balance change record.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// DailyRank represents a user's daily game performance for ranking.
type DailyRank struct {
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	NetProfit int64  `db:"net_profit"`
}

// GameRecord is the stored summary of a word chain game that has ended.
type GameRecord struct {
	GameID       string     `db:"game_id"`
	ChatID       int64      `db:"chat_id"`
	Kind         string     `db:"kind"`
	State        string     `db:"state"`
	Stake        int64      `db:"stake"`
	CreatorID    int64      `db:"creator_id"`
	PlayerIDs    []int64    `db:"player_ids"`
	WinnerIDs    []int64    `db:"winner_ids"`
	Words        []string   `db:"words"`
	Pot          int64      `db:"pot"`
	ShareEach    int64      `db:"share_each"`
	RoundingLoss int64      `db:"rounding_loss"`
	CreatedAt    time.Time  `db:"created_at"`
	FinishedAt   *time.Time `db:"finished_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial   = "initial"   // Initial balance on account creation
	TxTypeTransfer  = "transfer"  // User-to-user transfer
	TxTypeAdminAdd  = "admin_add" // Admin added balance
	TxTypeAdminSub  = "admin_sub" // Admin subtracted balance
	TxTypeStake     = "wc_stake"  // Stake withdrawn when a game starts
	TxTypePrize     = "wc_prize"  // Pot share credited to a survivor
	TxTypeStakeBack = "wc_refund" // Stake returned after a failed batch debit
)

// Game kinds stored in the history table.
const (
	GameKindLobby     = "lobby"
	GameKindChallenge = "challenge"
)

// GameTransactionTypes returns the transaction types that count towards daily game rankings.
func GameTransactionTypes() []string {
	return []string{TxTypeStake, TxTypePrize, TxTypeStakeBack}
}
