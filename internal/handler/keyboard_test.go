package handler

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"wordchain-bot/internal/game/wordchain"
)

// TestCallbackRoundTripProperty checks that every encoded callback decodes
// back to its action and parameter and fits Telegram's 64 byte limit.
func TestCallbackRoundTripProperty(t *testing.T) {
	actions := []string{
		actionDefault, actionCustom, actionRules, actionBack, actionJoin,
		actionStart, actionCancel, actionStakeCancel, actionAccept, actionDecline,
	}
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.SampledFrom([]string{LobbyPrefix, ChallengePrefix}).Draw(t, "prefix")
		action := rapid.SampledFrom(actions).Draw(t, "action")
		param := rapid.StringMatching(`[a-z0-9_-]{0,36}`).Draw(t, "param")

		data := EncodeCallback(prefix, action, param)
		if len(data) > 64 {
			t.Fatalf("callback data too long: %d bytes", len(data))
		}
		gotAction, gotParam := DecodeCallback(prefix, data)
		if gotAction != action || gotParam != param {
			t.Fatalf("decoded (%q, %q), want (%q, %q)", gotAction, gotParam, action, param)
		}
	})
}

func TestDecodeCallback_WrongPrefix(t *testing.T) {
	action, param := DecodeCallback(LobbyPrefix, EncodeCallback(ChallengePrefix, actionAccept, "x"))
	assert.Empty(t, action)
	assert.Empty(t, param)
}

func TestChallengeKeyboard_CarriesID(t *testing.T) {
	id := uuid.NewString()
	markup := ChallengeKeyboard(id)

	action, param := DecodeCallback(ChallengePrefix, markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, actionAccept, action)
	assert.Equal(t, id, param)

	action, param = DecodeCallback(ChallengePrefix, markup.InlineKeyboard[0][1].Data)
	assert.Equal(t, actionDecline, action)
	assert.Equal(t, id, param)
}

func TestMenuKeyboard_ShowsDefaultStake(t *testing.T) {
	markup := MenuKeyboard(10)
	assert.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, "🎯 Default Mode (10 coins)", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "wc_default", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "wc_rules", markup.InlineKeyboard[2][0].Data)
	assert.Equal(t, "wc_back", RulesKeyboard().InlineKeyboard[0][0].Data)
}

func TestGameErrorText(t *testing.T) {
	funds := &wordchain.InsufficientFundsError{
		Player:  wordchain.Participant{UserID: 1, DisplayName: "alice"},
		Need:    50,
		Balance: 20,
	}
	assert.Equal(t, "❌ Need 50 coins! alice has 20.", gameErrorText(fmt.Errorf("join: %w", funds), 1000))
	assert.Equal(t, "❌ Stake must be 1-1000 coins!", gameErrorText(wordchain.ErrInvalidStake, 1000))
	assert.Equal(t, "❌ Enter a number (e.g., 14, 55)!", gameErrorText(wordchain.ErrStakeNotNumber, 1000))
	assert.Equal(t, "⏳ Busy, try again in a moment.", gameErrorText(fmt.Errorf("%w: lock", wordchain.ErrBusy), 1000))
	assert.Equal(t, oopsText, gameErrorText(assert.AnError, 1000))
}
