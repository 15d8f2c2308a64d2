package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/model"
)

// Stored game states.
const (
	GameStateFinished = "finished"
	GameStateAborted  = "aborted"
)

// HistoryRecorder stores ended games. It is a wordchain.Notifier and ignores
// every event other than GameFinished and GameAborted.
type HistoryRecorder struct {
	games   GameStore
	timeout time.Duration
}

var _ wordchain.Notifier = (*HistoryRecorder)(nil)

// NewHistoryRecorder creates a new HistoryRecorder.
func NewHistoryRecorder(games GameStore, timeout time.Duration) *HistoryRecorder {
	return &HistoryRecorder{games: games, timeout: timeout}
}

// Notify implements wordchain.Notifier.
func (h *HistoryRecorder) Notify(ctx context.Context, ev wordchain.Event) {
	var rec *model.GameRecord
	switch e := ev.(type) {
	case wordchain.GameFinished:
		rec = recordOf(e.Header, e.Summary, GameStateFinished)
		rec.WinnerIDs = userIDs(e.Winners)
		rec.Pot = e.Pot
		rec.ShareEach = e.ShareEach
		rec.RoundingLoss = e.RoundingLoss
	case wordchain.GameAborted:
		rec = recordOf(e.Header, e.Summary, GameStateAborted)
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	if err := h.games.Save(ctx, rec); err != nil {
		log.Error().
			Err(err).
			Int64("chat_id", rec.ChatID).
			Str("game_id", rec.GameID).
			Msg("Failed to save game history")
		return
	}
	log.Debug().Str("game_id", rec.GameID).Str("state", rec.State).Msg("Game history saved")
}

// Recent returns the latest stored games of a chat.
func (h *HistoryRecorder) Recent(ctx context.Context, chatID int64, limit int) ([]*model.GameRecord, error) {
	return h.games.ListByChat(ctx, chatID, limit)
}

func recordOf(hdr wordchain.Header, s wordchain.Summary, state string) *model.GameRecord {
	ended := s.EndedAt
	return &model.GameRecord{
		GameID:     hdr.GameID,
		ChatID:     hdr.ChatID,
		Kind:       string(s.Kind),
		State:      state,
		Stake:      s.Stake,
		CreatorID:  s.CreatorID,
		PlayerIDs:  userIDs(s.Players),
		Words:      append([]string(nil), s.Words...),
		CreatedAt:  s.CreatedAt,
		FinishedAt: &ended,
	}
}

func userIDs(ps []wordchain.Participant) []int64 {
	ids := make([]int64, len(ps))
	for i, p := range ps {
		ids[i] = p.UserID
	}
	return ids
}
