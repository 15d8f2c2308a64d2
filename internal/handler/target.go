package handler

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/service"
)

// resolveTarget finds the user a command is aimed at. A text mention wins,
// then the author of the replied-to message, then a registered @username.
// An empty username falls through to the reply only.
func resolveTarget(ctx context.Context, accounts *service.AccountService, msg *tele.Message, username string) (wordchain.Participant, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	if msg != nil {
		for _, entity := range msg.Entities {
			if entity.Type == tele.EntityTMention && entity.User != nil {
				return participant(entity.User), nil
			}
		}
		if reply := msg.ReplyTo; reply != nil && reply.Sender != nil && !reply.Sender.IsBot {
			if username == "" || strings.EqualFold(reply.Sender.Username, username) {
				return participant(reply.Sender), nil
			}
		}
	}

	if username == "" {
		return wordchain.Participant{}, service.ErrUserNotFound
	}
	user, err := accounts.FindByUsername(ctx, username)
	if err != nil {
		return wordchain.Participant{}, err
	}
	return wordchain.Participant{UserID: user.TelegramID, DisplayName: user.Username}, nil
}
