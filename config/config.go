package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	gconfig "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/marcus-crane/spotilocal/shared"
)

type Config struct {
	Pushover   PushoverConfig
	Spotilocal SpotilocalConfig
	Webhelper  WebhelperConfig
}

type PushoverConfig struct {
	Recipient string `env:"PUSHOVER_RECIPIENT"`
	Token     string `env:"PUSHOVER_TOKEN"`
}

type SpotilocalConfig struct {
	AllowedOrigins        string `env:"ALLOWED_ORIGINS"` // comma separated
	BackgroundJobsEnabled bool   `env:"BACKGROUND_JOBS_ENABLED"`
	DbPath                string `env:"DB_PATH"`
	HistoryRetentionDays  int    `env:"HISTORY_RETENTION_DAYS"`
	ListenAddr            string `env:"LISTEN_ADDR"`
	LogLevel              string `env:"LOG_LEVEL"`
	StorageDir            string `env:"STORAGE_DIR"`
	SuperSecretToken      string `env:"SUPER_SECRET_TOKEN"`
}

type WebhelperConfig struct {
	CheckProcesses bool   `env:"WEBHELPER_CHECK_PROCESSES"`
	LocalURL       string `env:"WEBHELPER_LOCAL_URL"`
	PollIntervalMs int    `env:"WEBHELPER_POLL_INTERVAL_MS"`
	PortEnd        int    `env:"WEBHELPER_PORT_END"`
	PortStart      int    `env:"WEBHELPER_PORT_START"`
	TokenURL       string `env:"WEBHELPER_TOKEN_URL"`
}

// Load reads configuration from a .env file, when present, and then the
// environment. Anything left unset falls back to a default.
func Load() (Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(dotEnvPath string) (Config, error) {
	cfg := Config{}
	c := gconfig.New()
	if _, err := os.Stat(dotEnvPath); err == nil {
		c.AddFeeder(feeder.DotEnv{Path: dotEnvPath})
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	c.AddFeeder(feeder.Env{})
	if err := c.AddStruct(&cfg).Feed(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Spotilocal.DbPath == "" {
		c.Spotilocal.DbPath = "spotilocal.db"
	}
	if c.Spotilocal.StorageDir == "" {
		c.Spotilocal.StorageDir = os.TempDir()
	}
	if c.Spotilocal.ListenAddr == "" {
		c.Spotilocal.ListenAddr = ":8080"
	}
	if c.Spotilocal.HistoryRetentionDays <= 0 {
		c.Spotilocal.HistoryRetentionDays = 90
	}
	if c.Webhelper.PortStart == 0 {
		c.Webhelper.PortStart = shared.PORT_START
	}
	if c.Webhelper.PortEnd == 0 {
		c.Webhelper.PortEnd = shared.PORT_END
	}
	if c.Webhelper.PollIntervalMs <= 0 {
		c.Webhelper.PollIntervalMs = shared.DEFAULT_POLL_INTERVAL_MS
	}
	if c.Webhelper.TokenURL == "" {
		c.Webhelper.TokenURL = shared.TOKEN_URL
	}
	if c.Webhelper.LocalURL == "" {
		c.Webhelper.LocalURL = shared.LOCAL_URL
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Webhelper.PollIntervalMs) * time.Millisecond
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Spotilocal.HistoryRetentionDays) * 24 * time.Hour
}

// Origins returns the CORS allow list, defaulting to local development hosts.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Spotilocal.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:8080", "http://localhost:1313"}
	}
	return origins
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Spotilocal.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
