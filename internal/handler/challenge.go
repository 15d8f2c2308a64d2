package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/service"
)

// ChallengeHandler handles head-to-head challenges.
type ChallengeHandler struct {
	accountService *service.AccountService
	manager        *wordchain.Manager
	defaultStake   int64
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(accountService *service.AccountService, manager *wordchain.Manager, defaultStake int64) *ChallengeHandler {
	return &ChallengeHandler{
		accountService: accountService,
		manager:        manager,
		defaultStake:   defaultStake,
	}
}

// HandleChallenge handles /challenge @user [amount], or /challenge [amount]
// as a reply to the opponent's message.
func (h *ChallengeHandler) HandleChallenge(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	if chat.Type == tele.ChatPrivate {
		return c.Reply("❌ Challenges are played in groups.")
	}

	args := c.Args()
	var username, amountArg string
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		username = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		amountArg = args[0]
	}

	stake := h.defaultStake
	if amountArg != "" {
		v, err := strconv.ParseInt(amountArg, 10, 64)
		if err != nil {
			return c.Reply(h.errorText(wordchain.ErrStakeNotNumber))
		}
		stake = v
	}

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender)); err != nil {
		return c.Reply(oopsText)
	}

	target, err := resolveTarget(ctx, h.accountService, c.Message(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			if username == "" {
				return c.Reply("Usage: /challenge @username [amount]\nOr reply to a message with /challenge [amount]")
			}
			return c.Reply("❌ User @" + strings.TrimPrefix(username, "@") + " not found!")
		}
		return c.Reply(oopsText)
	}
	if _, _, err := h.accountService.EnsureUser(ctx, target.UserID, target.DisplayName); err != nil {
		return c.Reply(oopsText)
	}

	if _, err := h.manager.IssueChallenge(ctx, chat.ID, participant(sender), target, stake); err != nil {
		log.Debug().
			Err(err).
			Int64("chat_id", chat.ID).
			Int64("challenger", sender.ID).
			Int64("challenged", target.UserID).
			Msg("Challenge rejected")
		return c.Reply(h.errorText(err))
	}
	return nil
}

// HandleCallback handles the accept and decline buttons of a challenge.
func (h *ChallengeHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	action, id := DecodeCallback(ChallengePrefix, callbackData(c))
	if id == "" {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid action"})
	}

	var (
		res   wordchain.Resolution
		err   error
		toast string
	)
	switch action {
	case actionAccept:
		if _, _, err = h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender)); err == nil {
			res, err = h.manager.AcceptChallenge(ctx, id, sender.ID)
		}
		toast = "⚔️ Game on!"
	case actionDecline:
		res, err = h.manager.DeclineChallenge(ctx, id, sender.ID)
		toast = "Challenge declined"
	default:
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid action"})
	}

	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: h.errorText(err), ShowAlert: true})
	}
	if res == wordchain.ResolutionAlreadyHandled {
		return c.Respond(&tele.CallbackResponse{Text: "This challenge was already answered."})
	}
	return c.Respond(&tele.CallbackResponse{Text: toast})
}

func (h *ChallengeHandler) errorText(err error) string {
	return gameErrorText(err, h.manager.Options().MaxCustomStake)
}
