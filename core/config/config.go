package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN" validate:"required"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE" validate:"oneof=webhook longpoll"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS" validate:"gte=0"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// CatalogConfig points at the resource catalog document.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
}

// FavoritesConfig selects the favorites persistence backend.
type FavoritesConfig struct {
	Backend   string `yaml:"backend" envconfig:"FAVORITES_BACKEND" validate:"oneof=file postgres badger"`
	Path      string `yaml:"path" envconfig:"FAVORITES_PATH"`
	BadgerDir string `yaml:"badger_dir" envconfig:"FAVORITES_BADGER_DIR"`
}

// DatabaseConfig holds postgres settings used by the postgres favorites backend.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// KeepAliveConfig configures the liveness responder and the self-ping loop.
// An empty URL disables self-ping; the responder always listens on Port.
type KeepAliveConfig struct {
	Port     int           `yaml:"port" envconfig:"PORT" validate:"gte=0,lte=65535"`
	URL      string        `yaml:"url" envconfig:"RENDER_EXTERNAL_URL"`
	Interval time.Duration `yaml:"interval" envconfig:"KEEPALIVE_INTERVAL"`
	Disabled bool          `yaml:"disabled" envconfig:"KEEPALIVE_DISABLED"`
}

// DeliveryConfig sizes the outbound queue used for document delivery.
type DeliveryConfig struct {
	Workers   int `yaml:"workers" envconfig:"DELIVERY_WORKERS" validate:"gte=0"`
	QueueSize int `yaml:"queue_size" envconfig:"DELIVERY_QUEUE_SIZE" validate:"gte=0"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// FavoritesFile keeps favorites in a single JSON document.
	FavoritesFile = "file"
	// FavoritesPostgres keeps favorites in a postgres table.
	FavoritesPostgres = "postgres"
	// FavoritesBadger keeps favorites in an embedded badger database, one key per user.
	FavoritesBadger = "badger"
)

const (
	defaultCatalogPath       = "data.json"
	defaultFavoritesPath     = "users.json"
	defaultBadgerDir         = "favorites.db"
	defaultKeepAlivePort     = 8080
	defaultKeepAliveInterval = 14 * time.Minute
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	Burst          int      `yaml:"burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES" validate:"dive,oneof=callback message"`
}

// Config aggregates the bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Database  DatabaseConfig  `yaml:"database"`
	KeepAlive KeepAliveConfig `yaml:"keepalive"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
}

// CoreConfig satisfies cmd.ConfigCarrier.
func (c *Config) CoreConfig() *Config { return c }

// Load reads configuration from an optional YAML file and environment variables.
// A missing file is not an error: the environment alone may carry the whole config.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLenient is Load without the token requirement, for offline CLI commands.
func LoadLenient(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		cfg.Catalog.Path = defaultCatalogPath
	}
	cfg.Favorites.Backend = strings.ToLower(strings.TrimSpace(cfg.Favorites.Backend))
	if cfg.Favorites.Backend == "" {
		cfg.Favorites.Backend = FavoritesFile
	}
	if strings.TrimSpace(cfg.Favorites.Path) == "" {
		cfg.Favorites.Path = defaultFavoritesPath
	}
	if strings.TrimSpace(cfg.Favorites.BadgerDir) == "" {
		cfg.Favorites.BadgerDir = defaultBadgerDir
	}
	if cfg.KeepAlive.Port <= 0 {
		cfg.KeepAlive.Port = defaultKeepAlivePort
	}
	if cfg.KeepAlive.Interval <= 0 {
		cfg.KeepAlive.Interval = defaultKeepAliveInterval
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 4
	}
}

// Normalize fills defaults, canonicalizes enumerated values and validates cfg.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	applyDefaults(cfg)

	switch rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode)); rm {
	case "", "polling":
		cfg.Telegram.RunMode = RunModeLongpoll
	default:
		cfg.Telegram.RunMode = rm
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		cfg.RateLimit.ExcludeUpdates[i] = strings.ToLower(strings.TrimSpace(v))
	}
	cfg.RateLimit.ExcludeUpdates = slices.DeleteFunc(cfg.RateLimit.ExcludeUpdates, func(s string) bool { return s == "" })

	return validateConfig(cfg)
}
