package handler

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/game/wordchain"
)

// maxWordsShown caps the word list of the game over message.
const maxWordsShown = 60

// Sender is the part of the Telegram API the Renderer needs. *tele.Bot
// satisfies it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Renderer turns game events into chat messages. Challenge messages are
// remembered so their buttons can be replaced once the challenge is answered.
type Renderer struct {
	sender Sender

	mu         sync.Mutex
	challenges map[string]tele.StoredMessage
}

// NewRenderer creates a Renderer that posts through sender.
func NewRenderer(sender Sender) *Renderer {
	return &Renderer{
		sender:     sender,
		challenges: make(map[string]tele.StoredMessage),
	}
}

// Notify implements wordchain.Notifier.
func (r *Renderer) Notify(_ context.Context, ev wordchain.Event) {
	text, markup := Render(ev)
	if text == "" {
		return
	}

	var challengeID string
	switch e := ev.(type) {
	case wordchain.ChallengeAccepted:
		challengeID = e.Challenge.ID
	case wordchain.ChallengeDeclined:
		challengeID = e.Challenge.ID
	case wordchain.ChallengeExpired:
		challengeID = e.Challenge.ID
	}
	if challengeID != "" {
		if stored, ok := r.takeChallenge(challengeID); ok {
			if _, err := r.sender.Edit(stored, text, tele.ModeHTML); err == nil {
				return
			}
			log.Debug().Str("challenge_id", challengeID).Msg("Challenge message edit failed, sending instead")
		}
	}

	opts := []interface{}{tele.ModeHTML, tele.NoPreview}
	if markup != nil {
		opts = append(opts, markup)
	}
	msg, err := r.sender.Send(tele.ChatID(ev.EventChat()), text, opts...)
	if err != nil {
		log.Error().
			Err(err).
			Int64("chat_id", ev.EventChat()).
			Str("event", fmt.Sprintf("%T", ev)).
			Msg("Failed to send game message")
		return
	}

	if issued, ok := ev.(wordchain.ChallengeIssued); ok && msg != nil {
		r.mu.Lock()
		r.challenges[issued.Challenge.ID] = tele.StoredMessage{
			MessageID: strconv.Itoa(msg.ID),
			ChatID:    ev.EventChat(),
		}
		r.mu.Unlock()
	}
}

func (r *Renderer) takeChallenge(id string) (tele.StoredMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.challenges[id]
	delete(r.challenges, id)
	return stored, ok
}

// Render builds the HTML text and optional keyboard for an event. An empty
// text means the event is not shown in chat.
func Render(ev wordchain.Event) (string, *tele.ReplyMarkup) {
	switch e := ev.(type) {
	case wordchain.LobbyOpened:
		return fmt.Sprintf(
			"🎮 <b>Word Chain Game</b>\n\n"+
				"👤 Creator: %s\n"+
				"💰 Entry Fee: %d coins\n"+
				"👥 Players: 1\n\n"+
				"⏰ %ds to join. Need 2+ players!\n"+
				"Use /join or tap Join Game.",
			mention(e.Creator), e.Stake, seconds(e.JoinWindow),
		), LobbyKeyboard(1)

	case wordchain.StakePromptOpened:
		return fmt.Sprintf(
			"⚙️ <b>Custom Game Mode</b>\n\n"+
				"Enter stake amount (1-%d coins, e.g., 14, 55):",
			e.Max,
		), StakePromptKeyboard()

	case wordchain.StakePromptClosed:
		return "❌ Custom game cancelled.", nil

	case wordchain.PlayerJoined:
		return fmt.Sprintf("✅ %s joined. Now %d players.", mention(e.Player), e.Count), LobbyKeyboard(e.Count)

	case wordchain.JoinReminder:
		return fmt.Sprintf("⏰ %ds left to /join. Players: %d", seconds(e.Left), e.Count), nil

	case wordchain.GameStarted:
		var b strings.Builder
		fmt.Fprintf(&b, "🎮 <b>Game starting...</b>\n\n💰 Pot: %d coins\n\nTurn order:\n", e.Pot)
		for i, p := range e.Order {
			fmt.Fprintf(&b, "%d. %s\n", i+1, mention(p))
		}
		return b.String(), nil

	case wordchain.TurnOpened:
		var b strings.Builder
		fmt.Fprintf(&b, "🎯 %s, your turn!\n\n", mention(e.Player))
		if e.LastWord != "" {
			fmt.Fprintf(&b, "📖 Last word: <b>%s</b>\n", html.EscapeString(e.LastWord))
		}
		fmt.Fprintf(&b, "🔤 Start with: <b>%s</b>\n", letterHint(e.Letter))
		fmt.Fprintf(&b, "⏰ %ds\n", seconds(e.Timeout))
		fmt.Fprintf(&b, "📝 Words: %d | 👥 Alive: %d", e.Words, e.Alive)
		if e.Next.UserID != e.Player.UserID {
			fmt.Fprintf(&b, "\n⏭ Next: %s", html.EscapeString(e.Next.DisplayName))
		}
		return b.String(), nil

	case wordchain.TurnReminder:
		return fmt.Sprintf("⏰ %s, %ds left! Start with '%s'", mention(e.Player), seconds(e.Left), letterHint(e.Letter)), nil

	case wordchain.WordAccepted:
		return fmt.Sprintf("✅ <b>%s</b> - Good one, %s!", html.EscapeString(strings.ToUpper(e.Word)), html.EscapeString(e.Player.DisplayName)), nil

	case wordchain.PlayerEliminated:
		prefix := "❌"
		if e.Rule == wordchain.RuleTimeout {
			prefix = "⏰ Time's up!"
		}
		return fmt.Sprintf("%s %s eliminated! (%s)\n👥 %d left", prefix, mention(e.Player), html.EscapeString(e.Reason), e.Alive), nil

	case wordchain.GameFinished:
		return renderFinished(e), nil

	case wordchain.GameAborted:
		switch e.Reason {
		case wordchain.AbortCancelled:
			return "❌ Game cancelled.", nil
		case wordchain.AbortNoQuorum:
			return "❌ Not enough players. Cancelled.", nil
		case wordchain.AbortStartFailed:
			return fmt.Sprintf("❌ Game could not start: %s\nAll stakes were returned.", html.EscapeString(e.Detail)), nil
		}
		return "", nil

	case wordchain.ChallengeIssued:
		c := e.Challenge
		return fmt.Sprintf(
			"⚔️ %s challenges %s to Word Chain!\n\n"+
				"💰 Stake: %d coins each\n"+
				"⏰ Expires in %s\n\n"+
				"Only %s can answer.",
			mention(c.Challenger), mention(c.Challenged), c.Stake,
			c.ExpiresAt.Sub(c.CreatedAt).Round(time.Second), html.EscapeString(c.Challenged.DisplayName),
		), ChallengeKeyboard(c.ID)

	case wordchain.ChallengeAccepted:
		c := e.Challenge
		return fmt.Sprintf("⚔️ %s accepted the challenge from %s! (%d coins each)",
			html.EscapeString(c.Challenged.DisplayName), html.EscapeString(c.Challenger.DisplayName), c.Stake), nil

	case wordchain.ChallengeDeclined:
		return fmt.Sprintf("❌ %s declined. Better luck next time!", html.EscapeString(e.Challenge.Challenged.DisplayName)), nil

	case wordchain.ChallengeExpired:
		if e.Superseded {
			return "❌ Challenge expired! Another game started in this chat.", nil
		}
		return "❌ Challenge expired!", nil

	case wordchain.ErrorNotice:
		return "😵 " + html.EscapeString(e.Reason), nil
	}
	return "", nil
}

func renderFinished(e wordchain.GameFinished) string {
	var b strings.Builder
	b.WriteString("🎉 <b>GAME OVER!</b>\n\n")

	names := make([]string, len(e.Winners))
	for i, w := range e.Winners {
		names[i] = mention(w)
	}
	if len(e.Winners) == 1 {
		fmt.Fprintf(&b, "🏆 Winner: %s\n💰 Prize: %d coins\n", names[0], e.ShareEach)
	} else {
		fmt.Fprintf(&b, "🏆 Winners: %s\n💰 Prize: %d coins each\n", strings.Join(names, ", "), e.ShareEach)
	}
	if e.RoundingLoss > 0 {
		fmt.Fprintf(&b, "🪙 %d coins lost to rounding\n", e.RoundingLoss)
	}
	if e.Forfeited {
		b.WriteString("🏳️ Won by forfeit\n")
	}
	fmt.Fprintf(&b, "📝 Words: %d\n\nStandings:\n", len(e.Words))

	won := make(map[int64]bool, len(e.Winners))
	for _, w := range e.Winners {
		won[w.UserID] = true
	}
	for _, p := range e.Players {
		mark := "❌"
		if won[p.UserID] {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, html.EscapeString(p.DisplayName))
	}

	if len(e.Words) > 0 {
		words := e.Words
		more := ""
		if len(words) > maxWordsShown {
			more = fmt.Sprintf(" … (+%d)", len(words)-maxWordsShown)
			words = words[len(words)-maxWordsShown:]
		}
		fmt.Fprintf(&b, "\n📚 Words Used: %s%s", html.EscapeString(strings.Join(words, " → ")), more)
	}
	return b.String()
}

func letterHint(letter string) string {
	if letter == "" {
		return "any letter"
	}
	return strings.ToUpper(letter)
}

func seconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}
