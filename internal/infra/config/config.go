package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string
	HTTPAddr    string
	APIToken    string // Bearer token for profile changes over HTTP; empty disables them

	DatabaseDriver string // "postgres" or "sqlite3"
	DatabaseURL    string // Optional; the env profile is used alone when empty

	TelegramToken   string // Optional; the bot is disabled when empty
	TelegramChatID  int64  // Chat receiving payday notices
	TelegramAdminID int64  // User allowed to manage profiles from chat; 0 disables

	CronSpecPoll       string
	CronSpecCacheReset string // Drops cached holidays at local midnight

	HolidaySource       string // "nager" or "builtin"
	HolidayAPIURL       string
	HolidayFetchTimeout time.Duration

	CacheBackend  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TodayPolicy payday.TodayPolicy

	// DefaultProfile is built from the PAYDAY_* variables.
	DefaultProfile payday.Params
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist; existing env variables win.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.APIToken = os.Getenv("API_TOKEN")

	cfg.DatabaseDriver = strings.ToLower(getEnv("DATABASE_DRIVER", "postgres"))
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite3" {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want postgres or sqlite3", cfg.DatabaseDriver)
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}
	if adminID := os.Getenv("TELEGRAM_ADMIN_ID"); adminID != "" {
		cfg.TelegramAdminID, err = strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	cfg.CronSpecPoll = getEnv("CRON_SPEC_POLL", "*/5 * * * *")              // Default: every 5 minutes
	cfg.CronSpecCacheReset = getEnv("CRON_SPEC_CACHE_RESET", "0 0 * * *") // Default: local midnight

	cfg.HolidaySource = strings.ToLower(getEnv("HOLIDAY_SOURCE", "nager"))
	if cfg.HolidaySource != "nager" && cfg.HolidaySource != "builtin" {
		return nil, fmt.Errorf("invalid HOLIDAY_SOURCE %q: want nager or builtin", cfg.HolidaySource)
	}
	cfg.HolidayAPIURL = getEnv("HOLIDAY_API_URL", "https://date.nager.at/api/v3")
	cfg.HolidayFetchTimeout, err = time.ParseDuration(getEnv("HOLIDAY_FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOLIDAY_FETCH_TIMEOUT: %w", err)
	}
	if cfg.HolidayFetchTimeout <= 0 {
		return nil, fmt.Errorf("invalid HOLIDAY_FETCH_TIMEOUT: must be positive")
	}

	cfg.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", "memory"))
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory or redis", cfg.CacheBackend)
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.TodayPolicy, err = payday.ParseTodayPolicy(os.Getenv("PAYDAY_TODAY_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYDAY_TODAY_POLICY: %w", err)
	}

	cfg.DefaultProfile, err = loadDefaultProfile()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDefaultProfile reads the PAYDAY_* variables. Defaults: Denmark, monthly,
// last bank day, no offset.
func loadDefaultProfile() (payday.Params, error) {
	p := payday.Params{
		Country:     getEnv("PAYDAY_COUNTRY", "DK"),
		Frequency:   getEnv("PAYDAY_FREQUENCY", string(payday.FrequencyMonthly)),
		MonthlyRule: getEnv("PAYDAY_MONTHLY_RULE", string(payday.RuleLastBankDay)),
		AnchorDate:  os.Getenv("PAYDAY_LAST_PAY_DATE"),
	}

	day, err := strconv.Atoi(getEnv("PAYDAY_SPECIFIC_DAY", "31"))
	if err != nil {
		return p, fmt.Errorf("invalid PAYDAY_SPECIFIC_DAY: %w", err)
	}
	p.SpecificDay = &day

	offset, err := strconv.Atoi(getEnv("PAYDAY_BANK_OFFSET", "0"))
	if err != nil {
		return p, fmt.Errorf("invalid PAYDAY_BANK_OFFSET: %w", err)
	}
	p.BankOffset = &offset

	if raw := os.Getenv("PAYDAY_WEEKDAY"); raw != "" {
		wd, err := payday.ParseWeekday(raw)
		if err != nil {
			return p, fmt.Errorf("invalid PAYDAY_WEEKDAY: %w", err)
		}
		idx := payday.WeekdayIndex(wd)
		p.Weekday = &idx
	}

	if _, err := p.Config(); err != nil {
		return p, fmt.Errorf("invalid default payday profile: %w", err)
	}
	return p, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
