package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	VariantsFile string `env:"VARIANTS_FILE"`

	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	Bot      BotConfig      `envPrefix:"BOT_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DB_"`
}

type HTTPConfig struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
}

// TelegramConfig: an empty token disables the bot.
type TelegramConfig struct {
	Token string `env:"TOKEN"`
	Debug bool   `env:"DEBUG" envDefault:"false"`
}

type BotConfig struct {
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}

// RedisConfig: an empty address disables the report cache.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"1h"`
}

// DatabaseConfig: an empty host disables the report archive.
type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads the environment, after applying a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.Enabled() && (cfg.Database.User == "" || cfg.Database.Name == "") {
		return nil, fmt.Errorf("DB_USER and DB_NAME are required when DB_HOST is set")
	}
	if cfg.Redis.TTL <= 0 {
		return nil, fmt.Errorf("REDIS_TTL must be positive, got %s", cfg.Redis.TTL)
	}

	return &cfg, nil
}
