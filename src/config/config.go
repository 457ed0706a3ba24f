package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stake-plus/castlotto/src/data"
	"github.com/stake-plus/castlotto/src/neynar"
	"github.com/stake-plus/castlotto/src/webclient"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config holds everything a castlotto process needs. It is built once at
// startup and passed to the components that use it.
type Config struct {
	NeynarAPIKey   string
	NeynarEndpoint string
	CastHash       string
	MaxPages       int
	RequestTimeout time.Duration

	Port           string
	AllowedOrigins []string
	RateLimit      int
	SnapshotPath   string

	MySQLDSN string
	RedisURL string

	DiscordToken     string
	DiscordChannelID string
}

// Load reads configuration from the environment. When db is non-nil the
// settings table is consulted first and the environment is the fallback.
func Load(db *gorm.DB, logger *zap.Logger) Config {
	if db != nil {
		if err := data.LoadSettings(db); err != nil && logger != nil {
			logger.Warn("Failed to load settings, using environment only", zap.Error(err))
		}
	}

	return Config{
		NeynarAPIKey:     GetSetting("neynar_api_key", "NEYNAR_API_KEY", ""),
		NeynarEndpoint:   GetSetting("neynar_endpoint", "NEYNAR_ENDPOINT", neynar.DefaultEndpoint),
		CastHash:         GetSetting("cast_hash", "CAST_HASH", ""),
		MaxPages:         getIntSetting("max_pages", "MAX_PAGES", neynar.DefaultMaxPages),
		RequestTimeout:   time.Duration(getIntSetting("request_timeout_seconds", "REQUEST_TIMEOUT_SECONDS", int(webclient.DefaultTimeout/time.Second))) * time.Second,
		Port:             GetSetting("port", "PORT", "3000"),
		AllowedOrigins:   splitList(GetSetting("cors_origins", "CORS_ORIGINS", "")),
		RateLimit:        getIntSetting("rate_limit_per_minute", "RATE_LIMIT_PER_MINUTE", 30),
		SnapshotPath:     GetSetting("snapshot_path", "SNAPSHOT_PATH", data.DefaultSnapshotPath),
		MySQLDSN:         MySQLDSN(),
		RedisURL:         GetSetting("redis_url", "REDIS_URL", ""),
		DiscordToken:     GetSetting("discord_token", "DISCORD_TOKEN", ""),
		DiscordChannelID: GetSetting("discord_channel_id", "DISCORD_CHANNEL_ID", ""),
	}
}

// Validate reports the settings the reply pipeline cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.NeynarAPIKey == "" {
		errs = append(errs, errors.New("NEYNAR_API_KEY is not set"))
	}
	if c.CastHash == "" {
		errs = append(errs, errors.New("CAST_HASH is not set"))
	}
	if c.MaxPages <= 0 {
		errs = append(errs, errors.New("MAX_PAGES must be positive"))
	}
	return errors.Join(errs...)
}

// NeynarOptions builds the client options for the configured root cast.
func (c Config) NeynarOptions(logger *zap.Logger) neynar.Options {
	return neynar.Options{
		Endpoint: c.NeynarEndpoint,
		APIKey:   c.NeynarAPIKey,
		CastHash: c.CastHash,
		Timeout:  c.RequestTimeout,
		MaxPages: c.MaxPages,
		Logger:   logger,
	}
}

// MySQLDSN returns the settings database DSN. It only comes from the
// environment since it is needed before settings can be read.
func MySQLDSN() string {
	return strings.TrimSpace(os.Getenv("MYSQL_DSN"))
}

// GetSetting retrieves a setting with env fallback
func GetSetting(name, envKey, defaultValue string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = os.Getenv(envKey)
	}
	if val == "" {
		val = defaultValue
	}
	return strings.TrimSpace(val)
}

func getIntSetting(name, envKey string, defaultValue int) int {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
