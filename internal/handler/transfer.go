package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/service"
)

// TransferHandler handles transfer-related commands.
type TransferHandler struct {
	accountService  *service.AccountService
	transferService *service.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(accountService *service.AccountService, transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{
		accountService:  accountService,
		transferService: transferService,
	}
}

// HandlePay handles the /pay command.
// Format: /pay @username amount, or /pay amount as a reply.
func (h *TransferHandler) HandlePay(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	var username string
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		username = args[0]
		args = args[1:]
	}
	if len(args) < 1 {
		return c.Reply("Usage: /pay @username amount")
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		return c.Reply("❌ Amount must be positive!")
	}

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, DisplayName(sender)); err != nil {
		return c.Reply(oopsText)
	}

	target, err := resolveTarget(ctx, h.accountService, c.Message(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			if username == "" {
				return c.Reply("Usage: /pay @username amount")
			}
			return c.Reply("❌ User @" + strings.TrimPrefix(username, "@") + " not found!")
		}
		return c.Reply(oopsText)
	}

	err = h.transferService.Transfer(ctx, sender.ID, target.UserID, amount)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInsufficientBalance):
		return c.Reply("❌ Insufficient coins!")
	case errors.Is(err, service.ErrInvalidAmount):
		return c.Reply("❌ Amount must be positive!")
	case errors.Is(err, service.ErrSelfTransfer):
		return c.Reply("❌ You can't pay yourself!")
	case errors.Is(err, service.ErrUserNotFound):
		return c.Reply("❌ User @" + target.DisplayName + " not found!")
	default:
		log.Error().Err(err).Int64("from", sender.ID).Int64("to", target.UserID).Msg("Transfer failed")
		return c.Reply(oopsText)
	}

	newBalance, _ := h.accountService.GetBalance(ctx, sender.ID)
	return c.Reply(fmt.Sprintf("✅ Transferred %d coins to @%s!\n💰 Your balance: %d coins", amount, target.DisplayName, newBalance))
}
