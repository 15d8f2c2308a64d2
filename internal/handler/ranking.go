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

const historySize = 5

// RankingHandler handles ranking and history commands.
type RankingHandler struct {
	rankingService *service.RankingService
	history        *service.HistoryRecorder
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService, history *service.HistoryRecorder) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
		history:        history,
	}
}

// HandleDailyTop handles the /daily_top command.
// Displays today's biggest word chain winners and losers.
func (h *RankingHandler) HandleDailyTop(c tele.Context) error {
	ctx := context.Background()

	winners, err := h.rankingService.GetDailyWinners(ctx, leaderboardSize)
	if err != nil {
		return c.Reply(oopsText)
	}
	losers, err := h.rankingService.GetDailyLosers(ctx, leaderboardSize)
	if err != nil {
		return c.Reply(oopsText)
	}

	var b strings.Builder
	b.WriteString("📊 <b>Today's Word Chain</b>\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	b.WriteString("🏆 Winners\n")
	writeRanks(&b, winners, true)
	b.WriteString("\n━━━━━━━━━━━━━━━\n")
	b.WriteString("😢 Losers\n")
	writeRanks(&b, losers, false)
	b.WriteString("━━━━━━━━━━━━━━━")

	return c.Reply(b.String(), tele.ModeHTML)
}

func writeRanks(b *strings.Builder, ranks []*model.DailyRank, withMedals bool) {
	if len(ranks) == 0 {
		b.WriteString("No games yet\n")
		return
	}
	for i, r := range ranks {
		mark := fmt.Sprintf("%d.", i+1)
		if withMedals {
			mark = rankMark(i)
		}
		name := r.Username
		if name == "" {
			name = fmt.Sprintf("User%d", r.UserID)
		}
		fmt.Fprintf(b, "%s %s: %s\n", mark, html.EscapeString(name), signed(r.NetProfit))
	}
}

// HandleHistory handles the /history command.
// Lists the last games that ended in this chat.
func (h *RankingHandler) HandleHistory(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	records, err := h.history.Recent(ctx, chat.ID, historySize)
	if err != nil {
		return c.Reply(oopsText)
	}
	if len(records) == 0 {
		return c.Reply("📜 No finished games here yet. Start one with /wordchain")
	}

	var b strings.Builder
	b.WriteString("📜 <b>Recent Games</b>\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for _, r := range records {
		icon := "🏁"
		if r.State == service.GameStateAborted {
			icon = "❌"
		}
		ended := r.CreatedAt
		if r.FinishedAt != nil {
			ended = *r.FinishedAt
		}
		fmt.Fprintf(&b, "%s %s %s | %d players | pot %d | %d words\n",
			icon, ended.Format("01-02 15:04"), r.Kind, len(r.PlayerIDs), r.Pot, len(r.Words))
	}
	b.WriteString("━━━━━━━━━━━━━━━")

	return c.Reply(b.String(), tele.ModeHTML)
}
