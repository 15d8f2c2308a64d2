// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	WordChain WordChainConfig `mapstructure:"wordchain"`
	Challenge ChallengeConfig `mapstructure:"challenge"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// LedgerConfig holds coin ledger configuration.
type LedgerConfig struct {
	InitialBalance int64         `mapstructure:"initial_balance"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout"`
}

// WordChainConfig holds word chain game configuration.
type WordChainConfig struct {
	DefaultStake   int64           `mapstructure:"default_stake"`
	MaxCustomStake int64           `mapstructure:"max_custom_stake"`
	JoinWindow     time.Duration   `mapstructure:"join_window"`
	JoinReminders  []time.Duration `mapstructure:"join_reminders"`
	TurnTimeout    time.Duration   `mapstructure:"turn_timeout"`
	TurnReminder   time.Duration   `mapstructure:"turn_reminder"`
	WordList       string          `mapstructure:"word_list"`
	MinWordLength  int             `mapstructure:"min_word_length"`
	LockTimeout    time.Duration   `mapstructure:"lock_timeout"`
}

// ChallengeConfig holds head-to-head challenge configuration.
type ChallengeConfig struct {
	DefaultStake  int64         `mapstructure:"default_stake"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g., BOT_TOKEN, DATABASE_HOST, WORDCHAIN_TURN_TIMEOUT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional - env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Registered so BOT_TOKEN and DATABASE_PASSWORD are picked up from env
	v.SetDefault("bot.token", "")
	v.SetDefault("database.password", "")
	v.SetDefault("log.level", "info")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wordchain")
	v.SetDefault("database.name", "wordchain")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Ledger defaults
	v.SetDefault("ledger.initial_balance", 100)
	v.SetDefault("ledger.call_timeout", "3s")
	v.SetDefault("ledger.lock_timeout", "5s")

	// Word chain defaults
	v.SetDefault("wordchain.default_stake", 10)
	v.SetDefault("wordchain.max_custom_stake", 1000)
	v.SetDefault("wordchain.join_window", "60s")
	v.SetDefault("wordchain.join_reminders", []string{"30s", "15s"})
	v.SetDefault("wordchain.turn_timeout", "60s")
	v.SetDefault("wordchain.turn_reminder", "20s")
	v.SetDefault("wordchain.word_list", "words.txt")
	v.SetDefault("wordchain.min_word_length", 3)
	v.SetDefault("wordchain.lock_timeout", "5s")

	// Challenge defaults
	v.SetDefault("challenge.default_stake", 10)
	v.SetDefault("challenge.ttl", "5m")
	v.SetDefault("challenge.sweep_interval", "30s")
}

// Validate checks the timing and stake settings for consistency.
func (c *Config) Validate() error {
	wc := c.WordChain
	if wc.DefaultStake <= 0 || wc.MaxCustomStake < wc.DefaultStake {
		return fmt.Errorf("invalid wordchain stakes: default=%d max=%d", wc.DefaultStake, wc.MaxCustomStake)
	}
	if wc.TurnTimeout <= 0 || wc.JoinWindow <= 0 {
		return fmt.Errorf("wordchain turn_timeout and join_window must be positive")
	}
	if wc.TurnReminder >= wc.TurnTimeout {
		return fmt.Errorf("wordchain turn_reminder (%s) must be shorter than turn_timeout (%s)", wc.TurnReminder, wc.TurnTimeout)
	}
	for _, left := range wc.JoinReminders {
		if left <= 0 || left >= wc.JoinWindow {
			return fmt.Errorf("wordchain join reminder %s outside join window %s", left, wc.JoinWindow)
		}
	}
	if c.Challenge.DefaultStake <= 0 || c.Challenge.TTL <= 0 || c.Challenge.SweepInterval <= 0 {
		return fmt.Errorf("challenge default_stake, ttl and sweep_interval must be positive")
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
