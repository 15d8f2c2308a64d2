package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/service"
)

const oopsText = "😵 Oops! Something broke. Try again!"

// WordChainHandler handles the word chain menu, lobby buttons and word input.
type WordChainHandler struct {
	accountService *service.AccountService
	manager        *wordchain.Manager
}

// NewWordChainHandler creates a new WordChainHandler.
func NewWordChainHandler(accountService *service.AccountService, manager *wordchain.Manager) *WordChainHandler {
	return &WordChainHandler{
		accountService: accountService,
		manager:        manager,
	}
}

// HandleWordChain handles the /wordchain command by showing the mode menu.
func (h *WordChainHandler) HandleWordChain(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	if chat.Type == tele.ChatPrivate {
		return c.Reply("❌ Word Chain is played in groups. Add me to a group first!")
	}

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender)); err != nil {
		return c.Reply(oopsText)
	}
	if _, running := h.manager.Snapshot(chat.ID); running {
		return c.Reply(h.errorText(wordchain.ErrGameExists))
	}

	return c.Send(menuText, MenuKeyboard(h.manager.Options().DefaultStake), tele.ModeHTML)
}

// HandleJoin handles the /join command.
func (h *WordChainHandler) HandleJoin(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender)); err != nil {
		return c.Reply(oopsText)
	}
	if err := h.manager.Join(ctx, chat.ID, participant(sender)); err != nil {
		return c.Reply(h.errorText(err))
	}
	return nil
}

// HandleWord handles the /w command, an explicit way to play a word when the
// bot cannot read plain group messages.
func (h *WordChainHandler) HandleWord(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	word := strings.TrimSpace(c.Message().Payload)
	if word == "" {
		return c.Reply("Usage: /w word")
	}
	err := h.manager.SubmitWord(ctx, chat.ID, sender.ID, word)
	if err == nil || errors.Is(err, wordchain.ErrCorruptState) {
		return nil
	}
	return c.Reply(h.errorText(err))
}

// HandleText routes plain group messages to the engine: a custom stake answer
// or the current player's word. Anything else is ignored.
func (h *WordChainHandler) HandleText(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil
	}

	err := h.manager.HandleText(ctx, chat.ID, participant(sender), text)
	if err == nil || errors.Is(err, wordchain.ErrCorruptState) {
		return nil
	}
	return c.Reply(h.errorText(err))
}

// HandleCallback handles the menu and lobby buttons.
func (h *WordChainHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	action, _ := DecodeCallback(LobbyPrefix, callbackData(c))
	opts := h.manager.Options()
	user := participant(sender)

	var (
		err   error
		toast string
	)
	switch action {
	case actionRules:
		_ = c.Edit(rulesText(opts), RulesKeyboard(), tele.ModeHTML)
		return c.Respond()
	case actionBack:
		_ = c.Edit(menuText, MenuKeyboard(opts.DefaultStake), tele.ModeHTML)
		return c.Respond()

	case actionDefault:
		if _, _, err = h.accountService.EnsureUser(ctx, sender.ID, user.DisplayName); err == nil {
			_, err = h.manager.OpenLobby(ctx, chat.ID, user, opts.DefaultStake)
		}
		if err == nil {
			_ = c.Delete()
		}
		toast = "🎮 Lobby opened!"
	case actionCustom:
		if _, _, err = h.accountService.EnsureUser(ctx, sender.ID, user.DisplayName); err == nil {
			err = h.manager.RequestCustomStake(ctx, chat.ID, sender.ID)
		}
		if err == nil {
			_ = c.Delete()
		}
		toast = "⚙️ Type your stake in the chat"
	case actionStakeCancel:
		err = h.manager.CancelStakePrompt(ctx, chat.ID, sender.ID)
		if err == nil {
			_ = c.Delete()
		}
		toast = "Cancelled"

	case actionJoin:
		if _, _, err = h.accountService.EnsureUser(ctx, sender.ID, user.DisplayName); err == nil {
			err = h.manager.Join(ctx, chat.ID, user)
		}
		toast = "✅ Joined!"
	case actionStart:
		err = h.manager.Start(ctx, chat.ID, sender.ID)
		toast = "▶️ Starting!"
	case actionCancel:
		err = h.manager.Cancel(ctx, chat.ID, sender.ID)
		toast = "Game cancelled"

	default:
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid action"})
	}

	if err != nil {
		log.Debug().
			Err(err).
			Int64("chat_id", chat.ID).
			Int64("user_id", sender.ID).
			Str("action", action).
			Msg("Word chain button rejected")
		return c.Respond(&tele.CallbackResponse{Text: h.errorText(err), ShowAlert: true})
	}
	return c.Respond(&tele.CallbackResponse{Text: toast})
}

// errorText turns an engine or service error into a reply.
func (h *WordChainHandler) errorText(err error) string {
	return gameErrorText(err, h.manager.Options().MaxCustomStake)
}

func gameErrorText(err error, maxStake int64) string {
	var funds *wordchain.InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		return fmt.Sprintf("❌ Need %d coins! %s has %d.", funds.Need, funds.Player.DisplayName, funds.Balance)
	case errors.Is(err, wordchain.ErrInsufficientBalance):
		return "❌ Insufficient coins!"
	case errors.Is(err, wordchain.ErrGameExists):
		return "❌ A game is already running here!"
	case errors.Is(err, wordchain.ErrNoGame):
		return "❌ No game here. Start one with /wordchain"
	case errors.Is(err, wordchain.ErrNotStarted):
		return "⏳ The game has not started yet."
	case errors.Is(err, wordchain.ErrAlreadyStarted):
		return "❌ The game already started!"
	case errors.Is(err, wordchain.ErrAlreadyJoined):
		return "You already joined!"
	case errors.Is(err, wordchain.ErrNotCreator):
		return "❌ Only the game creator can do that!"
	case errors.Is(err, wordchain.ErrNotEnoughPlayers):
		return "❌ Need at least 2 players!"
	case errors.Is(err, wordchain.ErrNotYourTurn):
		return "⏳ Not your turn!"
	case errors.Is(err, wordchain.ErrGameInProgress):
		return "❌ The game is in progress and can't be cancelled."
	case errors.Is(err, wordchain.ErrSelfChallenge):
		return "❌ You can't challenge yourself!"
	case errors.Is(err, wordchain.ErrChallengeNotFound):
		return "❌ Challenge not found."
	case errors.Is(err, wordchain.ErrNotChallenged):
		return "❌ This challenge isn't for you!"
	case errors.Is(err, wordchain.ErrInvalidStake):
		return fmt.Sprintf("❌ Stake must be 1-%d coins!", maxStake)
	case errors.Is(err, wordchain.ErrStakeNotNumber):
		return "❌ Enter a number (e.g., 14, 55)!"
	case errors.Is(err, wordchain.ErrPromptTaken):
		return "❌ Someone else is choosing a stake."
	case errors.Is(err, wordchain.ErrNoStakePrompt):
		return "❌ Nothing to cancel."
	case errors.Is(err, wordchain.ErrBusy):
		return "⏳ Busy, try again in a moment."
	case errors.Is(err, wordchain.ErrLedgerConflict):
		return "❌ A balance changed while starting. Try again!"
	}
	log.Error().Err(err).Msg("Unexpected word chain error")
	return oopsText
}

const menuText = "🎮 <b>Word Chain</b>\n\nChoose a game mode:"

func rulesText(opts wordchain.Options) string {
	return fmt.Sprintf(
		"📋 <b>Game Rules</b>\n\n"+
			"1. Each word must start with the last letter of the previous word.\n"+
			"2. Words must be real English words, at least %d letters, one word only.\n"+
			"3. No word can be used twice.\n"+
			"4. You have %ds per turn.\n"+
			"5. A wrong word or a timeout eliminates you.\n"+
			"6. The last player standing takes the pot!\n\n"+
			"Commands: /wordchain /join /w /challenge",
		opts.MinWordLength, seconds(opts.TurnTimeout),
	)
}

// callbackData returns the raw data of a callback without telebot's \f marker.
func callbackData(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return strings.TrimPrefix(cb.Data, "\f")
}
