// internal/domain/payday/profile.go
package payday

import (
	"context"
	"errors"
	"time"
)

// Profile is a named payday configuration tracked by the poller.
type Profile struct {
	ID        int64
	Name      string
	Config    Config
	CreatedAt time.Time
}

// ProfileRepository defines the operations for persisting and retrieving profiles.
type ProfileRepository interface {
	List(ctx context.Context) ([]*Profile, error)
	Get(ctx context.Context, id int64) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, id int64) error
}

var (
	ErrProfileNotFound      = errors.New("payday profile not found")
	ErrDuplicateProfileName = errors.New("payday profile with this name already exists")
	ErrProfilesReadOnly     = errors.New("payday profiles are read-only")
)
