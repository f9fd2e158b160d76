// internal/infra/holidays/cache.go
package holidays

import (
	"context"
	"fmt"
	"strings"
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Store keeps fetched holiday sets until they expire.
type Store interface {
	Get(ctx context.Context, key string) (payday.HolidaySet, bool)
	Set(ctx context.Context, key string, set payday.HolidaySet, expiresAt time.Time)
	Purge(ctx context.Context) error
}

// LookupRecorder receives one observation per cache lookup: "hit", "miss" or "error".
type LookupRecorder interface {
	RecordHolidayLookup(result string)
}

// CachedSource wraps a HolidaySource with a per (country, year) cache that is valid until
// the next local midnight. Concurrent misses for the same key share a single fetch.
type CachedSource struct {
	source   payday.HolidaySource
	store    Store
	recorder LookupRecorder
	logger   *logrus.Entry
	now      func() time.Time
	group    singleflight.Group
}

func NewCachedSource(source payday.HolidaySource, store Store, recorder LookupRecorder, logger *logrus.Entry) *CachedSource {
	return &CachedSource{
		source:   source,
		store:    store,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock used to compute expiry, for tests.
func (c *CachedSource) SetClock(now func() time.Time) {
	c.now = now
}

func (c *CachedSource) Holidays(ctx context.Context, country string, year int) (payday.HolidaySet, error) {
	country = strings.ToUpper(country)
	key := cacheKey(country, year)

	if set, ok := c.store.Get(ctx, key); ok {
		c.record("hit")
		return set, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The shared fetch must not fail because the first caller went away.
		fetchCtx := context.WithoutCancel(ctx)
		set, err := c.source.Holidays(fetchCtx, country, year)
		if err != nil {
			return nil, err
		}
		c.store.Set(fetchCtx, key, set, nextMidnight(c.now()))
		c.logger.WithFields(logrus.Fields{
			"country":  country,
			"year":     year,
			"holidays": set.Len(),
		}).Debug("Holiday set cached")
		return set, nil
	})

	select {
	case <-ctx.Done():
		return payday.HolidaySet{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.record("error")
			return payday.HolidaySet{}, res.Err
		}
		c.record("miss")
		return res.Val.(payday.HolidaySet), nil
	}
}

// Purge drops every cached entry.
func (c *CachedSource) Purge(ctx context.Context) error {
	if err := c.store.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge holiday cache: %w", err)
	}
	c.logger.Info("Holiday cache purged")
	return nil
}

func (c *CachedSource) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordHolidayLookup(result)
	}
}

func cacheKey(country string, year int) string {
	return fmt.Sprintf("%s:%d", country, year)
}

// nextMidnight returns the start of the day after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
