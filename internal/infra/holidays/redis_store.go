// internal/infra/holidays/redis_store.go
package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// KeyPrefix namespaces the holiday entries in Redis.
const KeyPrefix = "isitpayday:holidays:"

// RedisStore shares cached holiday sets between instances. Redis failures are logged and
// reported as misses, so a broken Redis only costs extra fetches.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Entry
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, logger *logrus.Entry) *RedisStore {
	return &RedisStore{client: client, logger: logger, now: time.Now}
}

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (payday.HolidaySet, bool) {
	data, err := s.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return payday.HolidaySet{}, false
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Redis get failed, treating as cache miss")
		return payday.HolidaySet{}, false
	}

	var set payday.HolidaySet
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Discarding malformed cached holiday set")
		return payday.HolidaySet{}, false
	}
	return set, true
}

func (s *RedisStore) Set(ctx context.Context, key string, set payday.HolidaySet, expiresAt time.Time) {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(set)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to encode holiday set")
		return
	}
	if err := s.client.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Redis set failed")
	}
}

// Purge deletes every holiday entry using SCAN rather than KEYS.
func (s *RedisStore) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan holiday keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete holiday keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
