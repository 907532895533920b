package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type RuntimeConfig struct {
	DBPath      string
	HistoryDays int
	NotifyTTL   time.Duration
	Demo        bool
	FixtureFile string
	LogFile     string
	MetricsAddr string
	Theme       string
	// Seed drives fixture history and new-habit colors; zero means time-based.
	Seed int64
}

func Default() RuntimeConfig {
	return RuntimeConfig{
		DBPath:      "habitd.db",
		HistoryDays: 7,
		NotifyTTL:   3 * time.Second,
		Demo:        true,
		LogFile:     "habitd.log",
		Theme:       ThemeLight,
	}
}

// LoadDotEnv reads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func FromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("HABITD_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvInt("HABITD_HISTORY_DAYS"); ok && v > 0 {
		cfg.HistoryDays = v
	}
	if v, ok := getEnvInt("HABITD_NOTIFY_SECONDS"); ok && v > 0 {
		cfg.NotifyTTL = time.Duration(v) * time.Second
	}
	if v, ok := getEnvBool("HABITD_DEMO"); ok {
		cfg.Demo = v
	}
	if v, ok := getEnvString("HABITD_FIXTURE_FILE"); ok {
		cfg.FixtureFile = v
	}
	if v, ok := getEnvString("HABITD_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("HABITD_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := getEnvString("HABITD_THEME"); ok {
		if theme, valid := NormalizeTheme(v); valid {
			cfg.Theme = theme
		}
	}
	if v, ok := getEnvInt64("HABITD_SEED"); ok {
		cfg.Seed = v
	}
	return cfg
}

// NormalizeTheme maps user input onto ThemeLight or ThemeDark.
func NormalizeTheme(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

func (c RuntimeConfig) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db path is required")
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("config: history days must be positive, got %d", c.HistoryDays)
	}
	if c.NotifyTTL <= 0 {
		return fmt.Errorf("config: notification ttl must be positive, got %s", c.NotifyTTL)
	}
	if _, ok := NormalizeTheme(c.Theme); !ok {
		return fmt.Errorf("config: unknown theme %q", c.Theme)
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvInt64(name string) (int64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
