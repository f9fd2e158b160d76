package main

import (
	"context"
	"fmt"
	"net/http"

	"isitpayday/internal/domain/payday"
	"isitpayday/internal/infra/config"
	idb "isitpayday/internal/infra/database"
	"isitpayday/internal/infra/holidays"
	"isitpayday/internal/infra/logger"

	"github.com/redis/go-redis/v9"
)

// holidayStack is the configured holiday source behind its cache.
type holidayStack struct {
	Cached    *holidays.CachedSource
	Countries interface {
		AvailableCountries(ctx context.Context) ([]holidays.Country, error)
	}
	redis *redis.Client
}

func (s *holidayStack) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
}

func buildHolidayStack(ctx context.Context, cfg *config.AppConfig, recorder holidays.LookupRecorder) *holidayStack {
	log := logger.Component("holidays")
	stack := &holidayStack{}

	var source payday.HolidaySource
	switch cfg.HolidaySource {
	case "builtin":
		builtin := holidays.NewBuiltinSource()
		source, stack.Countries = builtin, builtin
	default:
		nager := holidays.NewNagerClient(cfg.HolidayAPIURL, http.DefaultClient, cfg.HolidayFetchTimeout)
		source, stack.Countries = nager, nager
	}

	var store holidays.Store = holidays.NewMemoryStore()
	if cfg.CacheBackend == "redis" {
		client, err := holidays.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Running without a shared cache only costs extra fetches.
			log.WithError(err).Warn("Redis cache unavailable, using in-memory holiday cache")
		} else {
			stack.redis = client
			store = holidays.NewRedisStore(client, log)
			log.WithField("addr", cfg.RedisAddr).Info("Redis holiday cache initialized")
		}
	}

	stack.Cached = holidays.NewCachedSource(source, store, recorder, log)
	return stack
}

// buildProfileRepository returns the SQL repository when DATABASE_URL is set, seeded with
// the env profile when empty, or a read-only repository holding only the env profile.
func buildProfileRepository(ctx context.Context, cfg *config.AppConfig) (payday.ProfileRepository, func(), error) {
	log := logger.Component("database")

	defaultCfg, err := cfg.DefaultProfile.Config()
	if err != nil {
		return nil, nil, fmt.Errorf("default payday profile: %w", err)
	}
	defaultProfile := &payday.Profile{ID: 1, Name: "default", Config: defaultCfg}

	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL is not set, tracking the default profile only.")
		return idb.NewStaticProfileRepository(defaultProfile), func() {}, nil
	}

	db, err := idb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closeDB := func() { db.Close() }

	repo, err := idb.NewSQLProfileRepository(ctx, db, cfg.DatabaseDriver)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	existing, err := repo.List(ctx)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if len(existing) == 0 {
		defaultProfile.ID = 0
		if err := repo.Create(ctx, defaultProfile); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("seed default profile: %w", err)
		}
		log.WithField("profile_id", defaultProfile.ID).Info("Seeded default payday profile.")
	}

	log.WithField("driver", cfg.DatabaseDriver).Info("Database connection established successfully.")
	return repo, closeDB, nil
}
