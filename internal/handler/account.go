// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/service"
)

const leaderboardSize = 10

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accountService *service.AccountService
	rankingService *service.RankingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService, rankingService *service.RankingService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		rankingService: rankingService,
	}
}

// HandleStart handles the /start command.
// Creates the account with the initial balance if the user is new.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	username := DisplayName(sender)
	user, created, err := h.accountService.EnsureUser(ctx, sender.ID, username)
	if err != nil {
		return c.Reply(oopsText)
	}

	if created {
		return c.Reply(fmt.Sprintf(
			"🎉 Welcome, %s!\n\n"+
				"Your account is ready with %d coins.\n\n"+
				"Play /wordchain in a group, or /help for all commands.",
			username, user.Balance,
		))
	}

	return c.Reply(fmt.Sprintf("👋 Welcome back, %s!\n\n💰 Balance: %d coins", username, user.Balance))
}

// HandleBalance handles the /balance command.
// Displays the balance, game stats and today's result.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, err := h.accountService.GetUser(ctx, sender.ID)
	if err != nil {
		// not registered yet
		user, _, err = h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender))
		if err != nil {
			return c.Reply(oopsText)
		}
	}

	dailyProfit, _ := h.rankingService.GetUserDailyProfit(ctx, sender.ID)

	return c.Reply(fmt.Sprintf(
		"💰 <b>%s</b>\n"+
			"━━━━━━━━━━━━━━━\n"+
			"🪙 Coins: %d\n"+
			"🎮 Games Played: %d\n"+
			"🏆 Games Won: %d\n"+
			"📊 Win Rate: %.1f%%\n"+
			"📈 Today: %s\n"+
			"━━━━━━━━━━━━━━━",
		html.EscapeString(user.Username), user.Balance, user.GamesPlayed, user.GamesWon, user.WinRate(), signed(dailyProfit),
	), tele.ModeHTML)
}

// HandleLeaderboard handles the /leaderboard command.
// Displays the top users by coins, then by wins.
func (h *AccountHandler) HandleLeaderboard(c tele.Context) error {
	ctx := context.Background()

	users, err := h.rankingService.GetTopUsers(ctx, leaderboardSize)
	if err != nil {
		return c.Reply(oopsText)
	}
	if len(users) == 0 {
		return c.Reply("📊 No players yet. Be the first with /start!")
	}

	var b strings.Builder
	b.WriteString("🏆 <b>TOP PLAYERS</b>\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for i, user := range users {
		fmt.Fprintf(&b, "%s %s\n   💰 %d coins | 🏆 %d wins\n", rankMark(i), userLabel(user), user.Balance, user.GamesWon)
	}
	b.WriteString("━━━━━━━━━━━━━━━")

	return c.Reply(b.String(), tele.ModeHTML)
}

// HandleHelp handles the /help command.
func (h *AccountHandler) HandleHelp(c tele.Context) error {
	return c.Reply(helpText)
}

const helpText = "📖 Word Chain Bot\n\n" +
	"🎮 Game\n" +
	"/wordchain - open a game lobby\n" +
	"/join - join the open lobby\n" +
	"/w word - play a word on your turn\n" +
	"/challenge @user [amount] - challenge someone 1v1\n" +
	"/history - recent games in this chat\n\n" +
	"💰 Coins\n" +
	"/start - create your account\n" +
	"/balance - coins and stats\n" +
	"/pay @user amount - send coins\n" +
	"/leaderboard - richest players\n" +
	"/daily_top - today's winners and losers"

var medals = []string{"🥇", "🥈", "🥉"}

func rankMark(i int) string {
	if i < len(medals) {
		return medals[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

func userLabel(user *model.User) string {
	if user.Username == "" {
		return fmt.Sprintf("User%d", user.TelegramID)
	}
	return html.EscapeString(user.Username)
}

func signed(n int64) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}
