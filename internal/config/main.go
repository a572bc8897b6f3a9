//nolint:mnd //no magic number
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/xdoubleu/essentia/v2/pkg/config"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"github.com/xhit/go-str2duration/v2"
)

type Config struct {
	Env             string
	Port            int
	Throttle        bool
	WebURL          string
	SentryDsn       string
	SampleRate      float64
	AccessExpiry    string
	RefreshExpiry   string
	DBDsn           string
	Release         string
	SupabaseUserID  string
	SupabaseProjRef string
	SupabaseAPIKey  string
	Calendar        CalendarConfig
}

type CalendarConfig struct {
	DefaultTimezone        string
	WeekStart              string
	ScanPaddingDays        int
	ConflictPadding        time.Duration
	FeedHorizon            time.Duration
	StaleExceptionInterval time.Duration
}

func New(logger *slog.Logger) Config {
	// .env is only present during development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", logging.ErrAttr(err))
	}

	var cfg Config

	parser := config.New(logger)

	cfg.Env = parser.EnvStr("ENV", config.ProdEnv)
	cfg.Port = parser.EnvInt("PORT", 8000)
	cfg.Throttle = parser.EnvBool("THROTTLE", true)
	cfg.WebURL = parser.EnvStr("WEB_URL", "http://localhost:8000")
	cfg.SentryDsn = parser.EnvStr("SENTRY_DSN", "")
	cfg.SampleRate = parser.EnvFloat("SAMPLE_RATE", 1.0)
	cfg.AccessExpiry = parser.EnvStr("ACCESS_EXPIRY", "1h")
	cfg.RefreshExpiry = parser.EnvStr("REFRESH_EXPIRY", "7d")
	cfg.DBDsn = parser.EnvStr("DB_DSN", "postgres://postgres@localhost/postgres")
	cfg.Release = parser.EnvStr("RELEASE", config.DevEnv)

	cfg.SupabaseUserID = parser.EnvStr("SUPABASE_USER_ID", "")
	cfg.SupabaseProjRef = parser.EnvStr("SUPABASE_PROJ_REF", "")
	cfg.SupabaseAPIKey = parser.EnvStr("SUPABASE_API_KEY", "")

	cfg.Calendar.DefaultTimezone = parser.EnvStr("DEFAULT_TIMEZONE", "UTC")
	cfg.Calendar.WeekStart = parser.EnvStr("WEEK_START", "monday")

	scanPadding := parseDuration(
		logger,
		"SCAN_PADDING",
		parser.EnvStr("SCAN_PADDING", "365d"),
		365*24*time.Hour,
	)
	cfg.Calendar.ScanPaddingDays = int(scanPadding / (24 * time.Hour))

	cfg.Calendar.ConflictPadding = parseDuration(
		logger,
		"CONFLICT_PADDING",
		parser.EnvStr("CONFLICT_PADDING", "1d"),
		24*time.Hour,
	)
	cfg.Calendar.FeedHorizon = parseDuration(
		logger,
		"FEED_HORIZON",
		parser.EnvStr("FEED_HORIZON", "12w"),
		12*7*24*time.Hour,
	)
	cfg.Calendar.StaleExceptionInterval = parseDuration(
		logger,
		"STALE_EXCEPTION_INTERVAL",
		parser.EnvStr("STALE_EXCEPTION_INTERVAL", "24h"),
		24*time.Hour,
	)

	return cfg
}

func parseDuration(
	logger *slog.Logger,
	key string,
	value string,
	fallback time.Duration,
) time.Duration {
	duration, err := str2duration.ParseDuration(value)
	if err != nil || duration <= 0 {
		logger.Warn(
			"invalid duration, using default",
			slog.String("key", key),
			slog.String("value", value),
			slog.Duration("default", fallback),
		)
		return fallback
	}

	return duration
}
