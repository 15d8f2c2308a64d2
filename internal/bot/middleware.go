package bot

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/config"
	"wordchain-bot/internal/game/wordchain"
)

const panicText = "😵 Oops! Something broke. Try again!"

// GameLookup reports the word chain game of a chat.
type GameLookup interface {
	Snapshot(chatID int64) (*wordchain.Snapshot, bool)
}

// privateAccess remembers users seen in an allowed group. Only they may talk
// to the bot in private when a whitelist is set.
type privateAccess struct {
	users map[int64]struct{}
	mu    sync.RWMutex
}

func newPrivateAccess() *privateAccess {
	return &privateAccess{users: make(map[int64]struct{})}
}

func (a *privateAccess) allow(userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[userID] = struct{}{}
}

func (a *privateAccess) allowed(userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.users[userID]
	return ok
}

// WhitelistMiddleware drops updates from groups outside the whitelist. An
// empty whitelist allows every chat.
func WhitelistMiddleware(cfg *config.Config, access *privateAccess) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if chat.Type == tele.ChatPrivate {
				if len(cfg.Whitelist.Chats) == 0 || access.allowed(sender.ID) {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from user not seen in an allowed group")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring update from non-whitelisted chat")
				return nil
			}

			access.allow(sender.ID)
			return next(c)
		}
	}
}

// AdminMiddleware refuses admin commands from everyone but configured admins.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Admins only!")
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs each handled update with the state of the chat's
// game. Plain group chatter is skipped while no game runs.
func LoggingMiddleware(games GameLookup) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if zerolog.GlobalLevel() > zerolog.DebugLevel {
				return next(c)
			}

			started := time.Now()
			err := next(c)

			kind, payload := updateKind(c)
			chat := c.Chat()
			group := chat != nil && chat.Type != tele.ChatPrivate
			var snap *wordchain.Snapshot
			if group {
				snap, _ = games.Snapshot(chat.ID)
			}
			if kind == "text" && group && snap == nil {
				return err
			}

			ev := log.Debug().
				Str("update", kind).
				Str("payload", payload).
				Dur("took", time.Since(started))
			if sender := c.Sender(); sender != nil {
				ev = ev.Int64("user_id", sender.ID).Str("username", sender.Username)
			}
			if chat != nil {
				ev = ev.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
			}
			if snap != nil {
				ev = ev.Dict("game", gameFields(snap))
			}
			if err != nil {
				ev = ev.AnErr("handler_error", err)
			}
			ev.Msg("Handled update")
			return err
		}
	}
}

func updateKind(c tele.Context) (kind, payload string) {
	if cb := c.Callback(); cb != nil {
		return "callback", strings.TrimPrefix(cb.Data, "\f")
	}
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return "command", text
	}
	return "text", text
}

func gameFields(s *wordchain.Snapshot) *zerolog.Event {
	d := zerolog.Dict().
		Str("id", s.ID).
		Str("kind", string(s.Kind)).
		Str("state", s.State.String()).
		Int("players", len(s.Players)).
		Int("words", len(s.Words))
	if cur, ok := s.CurrentPlayer(); ok {
		d = d.Int64("turn_user_id", cur.UserID)
	}
	return d
}

// RecoveryMiddleware turns a handler panic into an apology. Button presses
// get an alert, messages a reply.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				ev := log.Error().Interface("panic", r)
				if chat := c.Chat(); chat != nil {
					ev = ev.Int64("chat_id", chat.ID)
				}
				kind, payload := updateKind(c)
				ev.Str("update", kind).Str("payload", payload).Msg("Recovered from panic in handler")

				if c.Callback() != nil {
					err = c.Respond(&tele.CallbackResponse{Text: panicText, ShowAlert: true})
					return
				}
				err = c.Reply(panicText)
			}()
			return next(c)
		}
	}
}
