package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
)

// Application-level errors for profile management.
var (
	ErrAdminNotAuthorized  = errors.New("performing user is not authorized as an admin")
	ErrProfileNameRequired = errors.New("profile name is required")
)

// Refresher recomputes the published payday states.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ProfileService validates profile changes, stores them and refreshes the tracker so the
// change is visible right away.
type ProfileService struct {
	profiles  payday.ProfileRepository
	refresher Refresher // may be nil
	adminID   int64     // Telegram user allowed to manage profiles; 0 disables chat admin
	logger    *logrus.Entry
}

func NewProfileService(profiles payday.ProfileRepository, refresher Refresher, adminID int64, logger *logrus.Entry) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		refresher: refresher,
		adminID:   adminID,
		logger:    logger,
	}
}

// IsAdmin reports whether a Telegram user may manage profiles.
func (s *ProfileService) IsAdmin(telegramID int64) bool {
	return s.adminID != 0 && telegramID == s.adminID
}

func (s *ProfileService) List(ctx context.Context) ([]*payday.Profile, error) {
	return s.profiles.List(ctx)
}

// AddProfile validates params and stores them under name.
func (s *ProfileService) AddProfile(ctx context.Context, name string, params payday.Params) (*payday.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProfileNameRequired
	}
	cfg, err := params.Config()
	if err != nil {
		return nil, err
	}

	p := &payday.Profile{Name: name, Config: cfg}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, payday.ErrDuplicateProfileName) || errors.Is(err, payday.ErrProfilesReadOnly) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create profile in repository: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"profile_id": p.ID, "name": p.Name}).Info("Payday profile added")
	s.refresh(ctx)
	return p, nil
}

// RemoveProfile deletes a profile by ID.
func (s *ProfileService) RemoveProfile(ctx context.Context, id int64) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		if errors.Is(err, payday.ErrProfileNotFound) || errors.Is(err, payday.ErrProfilesReadOnly) {
			return err
		}
		return fmt.Errorf("failed to delete profile from repository: %w", err)
	}

	s.logger.WithField("profile_id", id).Info("Payday profile removed")
	s.refresh(ctx)
	return nil
}

// AddProfileAsAdmin is AddProfile gated on the configured Telegram admin.
func (s *ProfileService) AddProfileAsAdmin(ctx context.Context, performingAdminID int64, name string, params payday.Params) (*payday.Profile, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	return s.AddProfile(ctx, name, params)
}

// RemoveProfileAsAdmin is RemoveProfile gated on the configured Telegram admin.
func (s *ProfileService) RemoveProfileAsAdmin(ctx context.Context, performingAdminID int64, id int64) error {
	if !s.IsAdmin(performingAdminID) {
		return ErrAdminNotAuthorized
	}
	return s.RemoveProfile(ctx, id)
}

func (s *ProfileService) refresh(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).Warn("Tracker refresh after profile change failed")
	}
}
