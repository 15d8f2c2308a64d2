// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"wordchain-bot/internal/config"
	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/handler"
	"wordchain-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	games  GameLookup
	access *privateAccess

	// Handlers
	accountHandler   *handler.AccountHandler
	transferHandler  *handler.TransferHandler
	adminHandler     *handler.AdminHandler
	rankingHandler   *handler.RankingHandler
	wordChainHandler *handler.WordChainHandler
	challengeHandler *handler.ChallengeHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config          *config.Config
	AccountService  *service.AccountService
	TransferService *service.TransferService
	RankingService  *service.RankingService
	History         *service.HistoryRecorder
	Manager         *wordchain.Manager
}

// NewTeleBot creates the telebot client. It is built before the Manager so
// the event renderer can post through it.
func NewTeleBot(cfg *config.Config) (*tele.Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return teleBot, nil
}

// New registers every handler of deps on teleBot.
func New(teleBot *tele.Bot, deps *Dependencies) *Bot {
	b := &Bot{
		bot:    teleBot,
		cfg:    deps.Config,
		games:  deps.Manager,
		access: newPrivateAccess(),
	}

	// Initialize handlers
	b.accountHandler = handler.NewAccountHandler(deps.AccountService, deps.RankingService)
	b.transferHandler = handler.NewTransferHandler(deps.AccountService, deps.TransferService)
	b.adminHandler = handler.NewAdminHandler(deps.AccountService)
	b.rankingHandler = handler.NewRankingHandler(deps.RankingService, deps.History)
	b.wordChainHandler = handler.NewWordChainHandler(deps.AccountService, deps.Manager)
	b.challengeHandler = handler.NewChallengeHandler(deps.AccountService, deps.Manager, deps.Config.Challenge.DefaultStake)

	b.registerMiddleware()
	b.registerHandlers()

	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())

	// Whitelist middleware - check if chat is allowed
	b.bot.Use(WhitelistMiddleware(b.cfg, b.access))

	b.bot.Use(LoggingMiddleware(b.games))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Account handlers
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/help", b.accountHandler.HandleHelp)
	b.bot.Handle("/balance", b.accountHandler.HandleBalance)
	b.bot.Handle("/leaderboard", b.accountHandler.HandleLeaderboard)

	// Transfer handler
	b.bot.Handle("/pay", b.transferHandler.HandlePay)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_add", b.adminHandler.HandleAdminAdd)
	adminGroup.Handle("/admin_sub", b.adminHandler.HandleAdminSub)

	// Ranking handlers
	b.bot.Handle("/daily_top", b.rankingHandler.HandleDailyTop)
	b.bot.Handle("/history", b.rankingHandler.HandleHistory)

	// Word chain handlers
	b.bot.Handle("/wordchain", b.wordChainHandler.HandleWordChain)
	b.bot.Handle("/join", b.wordChainHandler.HandleJoin)
	b.bot.Handle("/w", b.wordChainHandler.HandleWord)
	b.bot.Handle("/challenge", b.challengeHandler.HandleChallenge)
	b.bot.Handle(tele.OnText, b.wordChainHandler.HandleText)

	// Generic callback handler for lobby and challenge buttons
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, handler.ChallengePrefix):
		return b.challengeHandler.HandleCallback(c)
	case strings.HasPrefix(data, handler.LobbyPrefix):
		return b.wordChainHandler.HandleCallback(c)
	}
	return c.Respond(&tele.CallbackResponse{Text: "❌ Unknown button"})
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
