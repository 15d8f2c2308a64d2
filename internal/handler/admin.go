package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/service"
)

// AdminHandler handles admin-related commands.
type AdminHandler struct {
	accountService *service.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accountService *service.AccountService) *AdminHandler {
	return &AdminHandler{accountService: accountService}
}

// HandleAdminAdd handles the /admin_add command.
// Format: /admin_add <user_id> <amount>
func (h *AdminHandler) HandleAdminAdd(c tele.Context) error {
	return h.adjust(c, "admin_add", 1, model.TxTypeAdminAdd)
}

// HandleAdminSub handles the /admin_sub command.
// Format: /admin_sub <user_id> <amount>
func (h *AdminHandler) HandleAdminSub(c tele.Context) error {
	return h.adjust(c, "admin_sub", -1, model.TxTypeAdminSub)
}

func (h *AdminHandler) adjust(c tele.Context, op string, sign int64, txType string) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amount, err := parseAdminArgs(c.Args(), op)
	if err != nil {
		return c.Reply(err.Error())
	}
	if amount <= 0 {
		return c.Reply("❌ Amount must be positive!")
	}

	desc := fmt.Sprintf("%s by admin %d", op, sender.ID)
	user, err := h.accountService.UpdateBalance(ctx, targetID, sign*amount, txType, &desc)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.Reply(fmt.Sprintf("❌ User %d not found!", targetID))
		case errors.Is(err, service.ErrInsufficientBalance):
			return c.Reply("❌ Balance can't go below zero!")
		}
		return c.Reply(oopsText)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int64("amount", amount).
		Str("operation", op).
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf(
		"✅ Done\n\n"+
			"👤 User: %s (ID: %d)\n"+
			"%s %d coins\n"+
			"💰 Balance: %d coins",
		userLabel(user), targetID, signWord(sign), amount, user.Balance,
	))
}

func signWord(sign int64) string {
	if sign < 0 {
		return "➖ Removed:"
	}
	return "➕ Added:"
}

// parseAdminArgs parses <user_id> <amount>.
func parseAdminArgs(args []string, op string) (int64, int64, error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("Usage: /%s <user_id> <amount>", op)
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("❌ User ID must be a number")
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("❌ Amount must be a whole number")
	}
	return targetID, amount, nil
}
