package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recorder) add(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.err
}

func (r *recorder) Refresh(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh without deadline")
	}
	return r.add("refresh")
}

func (r *recorder) Purge(context.Context) error { return r.add("purge") }

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestStart_RefreshesImmediately(t *testing.T) {
	rec := &recorder{}
	s := NewPaydayScheduler(rec, rec, quietLogger(), "@every 1h", "0 0 * * *")

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, []string{"refresh"}, rec.snapshot())
	assert.Len(t, s.cronEngine.Entries(), 2)
}

func TestStart_WithoutPurger(t *testing.T) {
	rec := &recorder{}
	s := NewPaydayScheduler(rec, nil, quietLogger(), "@every 1h", "0 0 * * *")

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cronEngine.Entries(), 1)
}

func TestStart_InvalidSpec(t *testing.T) {
	rec := &recorder{}
	s := NewPaydayScheduler(rec, rec, quietLogger(), "every five minutes", "0 0 * * *")
	assert.ErrorContains(t, s.Start(), "payday poll job")

	s = NewPaydayScheduler(rec, rec, quietLogger(), "@every 1h", "midnight")
	assert.ErrorContains(t, s.Start(), "holiday cache reset job")
	assert.Empty(t, rec.snapshot())
}

func TestCacheResetJob_PurgesThenRefreshes(t *testing.T) {
	rec := &recorder{}
	s := NewPaydayScheduler(rec, rec, quietLogger(), "@every 1h", "0 0 * * *")
	require.NoError(t, s.Start())
	defer s.Stop()

	entry := s.cronEngine.Entry(s.resetEntry)
	require.True(t, entry.Valid())
	entry.Job.Run()

	assert.Equal(t, []string{"refresh", "purge", "refresh"}, rec.snapshot())
}

func TestRefreshErrorsAreLogged(t *testing.T) {
	rec := &recorder{err: errors.New("db down")}
	s := NewPaydayScheduler(rec, nil, quietLogger(), "@every 1h", "0 0 * * *")
	require.NoError(t, s.Start())
	s.Stop()
	assert.Equal(t, []string{"refresh"}, rec.snapshot())
}
