package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"wordchain-bot/internal/config"
	"wordchain-bot/internal/game/wordchain"
)

// fakeContext overrides the parts of tele.Context the middleware reads.
type fakeContext struct {
	tele.Context
	chat      *tele.Chat
	sender    *tele.User
	text      string
	callback  *tele.Callback
	replies   []string
	responses []*tele.CallbackResponse
}

func (c *fakeContext) Chat() *tele.Chat         { return c.chat }
func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }

func (c *fakeContext) Text() string {
	if c.text == "" {
		return "/cmd"
	}
	return c.text
}

func (c *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	c.replies = append(c.replies, what.(string))
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

// fakeGames counts snapshot lookups and returns game for every chat.
type fakeGames struct {
	game    *wordchain.Snapshot
	lookups int
}

func (g *fakeGames) Snapshot(int64) (*wordchain.Snapshot, bool) {
	g.lookups++
	return g.game, g.game != nil
}

func groupContext(chatID, userID int64) *fakeContext {
	return &fakeContext{
		chat:   &tele.Chat{ID: chatID, Type: tele.ChatSuperGroup},
		sender: &tele.User{ID: userID},
	}
}

func privateContext(userID int64) *fakeContext {
	return &fakeContext{
		chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		sender: &tele.User{ID: userID},
	}
}

// run passes c through mw and reports whether the handler was reached.
func run(mw tele.MiddlewareFunc, c tele.Context) bool {
	reached := false
	_ = mw(func(tele.Context) error {
		reached = true
		return nil
	})(c)
	return reached
}

// TestAdminMiddlewareProperty checks that only configured admins reach
// admin handlers and everyone else gets a refusal.
func TestAdminMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000), 1, 10).Draw(t, "adminIDs")
		userID := rapid.Int64Range(1, 1000).Draw(t, "userID")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		c := groupContext(-1, userID)
		reached := run(AdminMiddleware(cfg), c)

		if reached != cfg.IsAdmin(userID) {
			t.Fatalf("user %d reached=%v, admins=%v", userID, reached, adminIDs)
		}
		if !reached && (len(c.replies) != 1 || c.replies[0] != "❌ Admins only!") {
			t.Fatalf("expected a refusal, got %v", c.replies)
		}
	})
}

// TestWhitelistMiddlewareProperty checks that group commands pass only in
// whitelisted chats.
func TestWhitelistMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chats := rapid.SliceOfN(rapid.Int64Range(-1000, -1), 1, 10).Draw(t, "chats")
		chatID := rapid.Int64Range(-1000, -1).Draw(t, "chatID")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chats}}

		want := false
		for _, id := range chats {
			if id == chatID {
				want = true
			}
		}
		if got := run(WhitelistMiddleware(cfg, newPrivateAccess()), groupContext(chatID, 1)); got != want {
			t.Fatalf("chat %d reached=%v, whitelist=%v", chatID, got, chats)
		}
	})
}

func TestWhitelistMiddleware_EmptyWhitelistAllowsAll(t *testing.T) {
	mw := WhitelistMiddleware(&config.Config{}, newPrivateAccess())
	assert.True(t, run(mw, groupContext(-42, 1)))
	assert.True(t, run(mw, privateContext(900001)))
}

func TestWhitelistMiddleware_PrivateChatAfterGroupUse(t *testing.T) {
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-1}}}
	access := newPrivateAccess()
	mw := WhitelistMiddleware(cfg, access)
	const userID = 900002

	assert.False(t, run(mw, privateContext(userID)))
	assert.False(t, run(mw, groupContext(-2, userID)), "other groups are ignored")
	assert.False(t, access.allowed(userID))

	assert.True(t, run(mw, groupContext(-1, userID)))
	assert.True(t, access.allowed(userID))
	assert.True(t, run(mw, privateContext(userID)))

	other := WhitelistMiddleware(cfg, newPrivateAccess())
	assert.False(t, run(other, privateContext(userID)), "access is per bot")
}

func TestWhitelistMiddleware_IgnoresUpdatesWithoutSender(t *testing.T) {
	c := &fakeContext{chat: &tele.Chat{ID: -1, Type: tele.ChatGroup}}
	assert.False(t, run(WhitelistMiddleware(&config.Config{}, newPrivateAccess()), c))
}

func TestRecoveryMiddleware(t *testing.T) {
	c := groupContext(-1, 1)
	err := RecoveryMiddleware()(func(tele.Context) error {
		panic("boom")
	})(c)

	assert.NoError(t, err)
	assert.Equal(t, []string{"😵 Oops! Something broke. Try again!"}, c.replies)
}

func TestRecoveryMiddleware_CallbackGetsAlert(t *testing.T) {
	c := groupContext(-1, 1)
	c.callback = &tele.Callback{Data: "\fwc_join"}
	err := RecoveryMiddleware()(func(tele.Context) error {
		panic("boom")
	})(c)

	assert.NoError(t, err)
	assert.Empty(t, c.replies)
	if assert.Len(t, c.responses, 1) {
		assert.True(t, c.responses[0].ShowAlert)
		assert.Equal(t, panicText, c.responses[0].Text)
	}
}

func TestLoggingMiddleware_PassesResultThrough(t *testing.T) {
	games := &fakeGames{game: &wordchain.Snapshot{ID: "g1", State: wordchain.StateActive, Players: []wordchain.Player{{}}}}
	want := errors.New("handler failed")

	err := LoggingMiddleware(games)(func(tele.Context) error { return want })(groupContext(-1, 1))
	assert.ErrorIs(t, err, want)
	assert.Equal(t, 1, games.lookups)

	private := privateContext(7)
	assert.True(t, run(LoggingMiddleware(games), private))
	assert.Equal(t, 1, games.lookups, "private chats have no game")
}

func TestUpdateKind(t *testing.T) {
	c := groupContext(-1, 1)
	kind, payload := updateKind(c)
	assert.Equal(t, "command", kind)
	assert.Equal(t, "/cmd", payload)

	c.text = "apple"
	kind, _ = updateKind(c)
	assert.Equal(t, "text", kind)

	c.callback = &tele.Callback{Data: "\fch_accept_42"}
	kind, payload = updateKind(c)
	assert.Equal(t, "callback", kind)
	assert.Equal(t, "ch_accept_42", payload)
}
