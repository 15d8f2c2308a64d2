package handler

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/game/wordchain"
)

const (
	// LobbyPrefix is the prefix of every word chain menu and lobby callback.
	LobbyPrefix = "wc_"
	// ChallengePrefix is the prefix of challenge answer callbacks.
	ChallengePrefix = "ch_"
)

// Lobby and challenge callback actions.
const (
	actionDefault     = "default"
	actionCustom      = "custom"
	actionRules       = "rules"
	actionBack        = "back"
	actionJoin        = "join"
	actionStart       = "start"
	actionCancel      = "cancel"
	actionStakeCancel = "stakecancel"
	actionAccept      = "accept"
	actionDecline     = "decline"
)

// EncodeCallback joins a prefix, an action and an optional parameter into
// callback data.
func EncodeCallback(prefix, action, param string) string {
	if param != "" {
		return fmt.Sprintf("%s%s_%s", prefix, action, param)
	}
	return prefix + action
}

// DecodeCallback splits callback data produced by EncodeCallback. It returns
// empty strings when data does not carry prefix.
func DecodeCallback(prefix, data string) (action string, param string) {
	if !strings.HasPrefix(data, prefix) {
		return "", ""
	}
	parts := strings.SplitN(strings.TrimPrefix(data, prefix), "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		param = parts[1]
	}
	return action, param
}

func button(text, prefix, action, param string) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: EncodeCallback(prefix, action, param)}
}

// MenuKeyboard is the /wordchain mode picker.
func MenuKeyboard(defaultStake int64) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{button(fmt.Sprintf("🎯 Default Mode (%d coins)", defaultStake), LobbyPrefix, actionDefault, "")},
		{button("⚙️ Custom Mode", LobbyPrefix, actionCustom, "")},
		{button("📋 Game Rules", LobbyPrefix, actionRules, "")},
	}}
}

// RulesKeyboard leads back to the mode picker.
func RulesKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{button("🔙 Back", LobbyPrefix, actionBack, "")},
	}}
}

// LobbyKeyboard is attached to lobby messages. Start is offered once the
// game has a quorum.
func LobbyKeyboard(players int) *tele.ReplyMarkup {
	row := []tele.InlineButton{button("🎮 Join Game", LobbyPrefix, actionJoin, "")}
	if players >= 2 {
		row = append(row, button("▶️ Start Game", LobbyPrefix, actionStart, ""))
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		row,
		{button("❌ Cancel", LobbyPrefix, actionCancel, "")},
	}}
}

// StakePromptKeyboard cancels a pending custom stake prompt.
func StakePromptKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{button("❌ Cancel", LobbyPrefix, actionStakeCancel, "")},
	}}
}

// ChallengeKeyboard carries the accept and decline buttons of one challenge.
func ChallengeKeyboard(challengeID string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		button("✅ Accept", ChallengePrefix, actionAccept, challengeID),
		button("❌ Decline", ChallengePrefix, actionDecline, challengeID),
	}}}
}

// DisplayName picks the name shown for a Telegram user.
func DisplayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// participant converts a Telegram user to a game participant.
func participant(u *tele.User) wordchain.Participant {
	return wordchain.Participant{UserID: u.ID, DisplayName: DisplayName(u)}
}

// mention renders an HTML link that notifies the user.
func mention(p wordchain.Participant) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, p.UserID, html.EscapeString(p.DisplayName))
}
