// Package main is the entry point for the Word Chain Bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordchain-bot/internal/bot"
	"wordchain-bot/internal/config"
	"wordchain-bot/internal/dictionary"
	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/handler"
	"wordchain-bot/internal/pkg/db"
	"wordchain-bot/internal/pkg/lock"
	"wordchain-bot/internal/repository"
	"wordchain-bot/internal/service"
)

// CLI holds the command line flags.
type CLI struct {
	Config   string `kong:"default='config',help='Directory containing config.yaml'"`
	Words    string `kong:"help='Word list file, overrides wordchain.word_list'"`
	LogLevel string `kong:"name='log-level',help='Log level (debug, info, warn, error), overrides log.level'"`
	Timezone string `kong:"default='Local',help='Timezone used for daily rankings'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("wordchain-bot"),
		kong.Description("Telegram word chain game bot"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cli.Words != "" {
		cfg.WordChain.WordList = cli.Words
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	setLogLevel(cfg.Log.Level)

	log.Info().Msg("Configuration loaded successfully")

	tz, err := time.LoadLocation(cli.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cli.Timezone).Msg("Unknown timezone")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool, cfg.Ledger.InitialBalance)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)
	gameRepo := repository.NewGameRepository(dbPool.Pool)

	// One lock per user, shared by every balance-changing path
	userLock := lock.NewKeyLock()
	clock := quartz.NewReal()

	// Initialize services
	accountService := service.NewAccountService(userRepo, txRepo, userLock, cfg.Ledger.LockTimeout)
	transferService := service.NewTransferService(userRepo, userLock, cfg.Ledger.LockTimeout)
	rankingService := service.NewRankingService(userRepo, txRepo, clock, tz)
	ledger := service.NewGameLedger(userRepo, txRepo, userLock, cfg.Ledger.CallTimeout, cfg.Ledger.LockTimeout)
	history := service.NewHistoryRecorder(gameRepo, cfg.Ledger.CallTimeout)

	dict := dictionary.Load(cfg.WordChain.WordList)

	teleBot, err := bot.NewTeleBot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	renderer := handler.NewRenderer(teleBot)

	manager := wordchain.NewManager(ledger, dict, wordchain.Notifiers{history, renderer}, clock, engineOptions(cfg))
	defer manager.Close()
	sweeper := manager.StartSweeper(ctx)

	log.Info().
		Int("words", dict.Len()).
		Bool("fallback_words", dict.IsFallback()).
		Int64("default_stake", cfg.WordChain.DefaultStake).
		Dur("turn_timeout", cfg.WordChain.TurnTimeout).
		Msg("Word chain engine ready")

	telegramBot := bot.New(teleBot, &bot.Dependencies{
		Config:          cfg,
		AccountService:  accountService,
		TransferService: transferService,
		RankingService:  rankingService,
		History:         history,
		Manager:         manager,
	})

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	telegramBot.Stop()
	cancel()
	if err := sweeper.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("Challenge sweeper stopped with error")
	}
	log.Info().Msg("Bot stopped gracefully")
}

func engineOptions(cfg *config.Config) wordchain.Options {
	wc := cfg.WordChain
	return wordchain.Options{
		DefaultStake:   wc.DefaultStake,
		MaxCustomStake: wc.MaxCustomStake,
		JoinWindow:     wc.JoinWindow,
		JoinReminders:  wc.JoinReminders,
		TurnTimeout:    wc.TurnTimeout,
		TurnReminder:   wc.TurnReminder,
		MinWordLength:  wc.MinWordLength,
		LockTimeout:    wc.LockTimeout,
		ChallengeTTL:   cfg.Challenge.TTL,
		ChallengeSweep: cfg.Challenge.SweepInterval,
	}
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
