package app

import (
	"context"
	"errors"
	"testing"

	"isitpayday/internal/domain/payday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepository struct {
	fakeProfiles
	nextID    int64
	createErr error
	deleteErr error
	deleted   []int64
}

func (r *recordingRepository) Create(_ context.Context, p *payday.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	r.profiles = append(r.profiles, p)
	return nil
}

func (r *recordingRepository) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

type countingRefresher struct {
	calls int
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls++
	return c.err
}

func TestProfileService_AddProfile(t *testing.T) {
	repo := &recordingRepository{}
	refresher := &countingRefresher{}
	svc := NewProfileService(repo, refresher, 0, testLogger())
	ctx := context.Background()

	p, err := svc.AddProfile(ctx, "  weekly ", payday.Params{Country: "se", Frequency: "weekly", Weekday: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "weekly", p.Name)
	assert.Equal(t, "SE", p.Config.Country)
	assert.Equal(t, 1, refresher.calls)

	_, err = svc.AddProfile(ctx, " ", payday.Params{Country: "SE", Frequency: "weekly", Weekday: intPtr(4)})
	assert.ErrorIs(t, err, ErrProfileNameRequired)

	_, err = svc.AddProfile(ctx, "bi", payday.Params{Country: "SE", Frequency: "14_days"})
	assert.ErrorIs(t, err, payday.ErrValidation)

	repo.createErr = payday.ErrDuplicateProfileName
	_, err = svc.AddProfile(ctx, "weekly", payday.Params{Country: "SE", Frequency: "weekly", Weekday: intPtr(4)})
	assert.ErrorIs(t, err, payday.ErrDuplicateProfileName)

	repo.createErr = errors.New("disk full")
	_, err = svc.AddProfile(ctx, "other", payday.Params{Country: "SE", Frequency: "weekly", Weekday: intPtr(4)})
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, 1, refresher.calls)
}

func TestProfileService_RemoveProfile(t *testing.T) {
	repo := &recordingRepository{}
	refresher := &countingRefresher{err: errors.New("holiday API down")}
	svc := NewProfileService(repo, refresher, 0, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.RemoveProfile(ctx, 3), "refresh failures are logged only")
	assert.Equal(t, []int64{3}, repo.deleted)
	assert.Equal(t, 1, refresher.calls)

	repo.deleteErr = payday.ErrProfileNotFound
	assert.ErrorIs(t, svc.RemoveProfile(ctx, 4), payday.ErrProfileNotFound)
	assert.Equal(t, 1, refresher.calls)
}

func TestProfileService_AdminGate(t *testing.T) {
	repo := &recordingRepository{}
	ctx := context.Background()

	disabled := NewProfileService(repo, nil, 0, testLogger())
	assert.False(t, disabled.IsAdmin(0))
	_, err := disabled.AddProfileAsAdmin(ctx, 0, "x", payday.Params{})
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	svc := NewProfileService(repo, nil, 42, testLogger())
	assert.True(t, svc.IsAdmin(42))
	assert.ErrorIs(t, svc.RemoveProfileAsAdmin(ctx, 7, 1), ErrAdminNotAuthorized)
	assert.Empty(t, repo.deleted)

	p, err := svc.AddProfileAsAdmin(ctx, 42, "salary", payday.Params{Country: "DK", Frequency: "monthly", MonthlyRule: "last_bank_day"})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveProfileAsAdmin(ctx, 42, p.ID))
	assert.Equal(t, []int64{p.ID}, repo.deleted)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
