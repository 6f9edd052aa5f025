package store

import (
	"context"
	"errors"

	"switchboard/internal/types"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileExists    = errors.New("profile already exists")
	ErrDefaultImmutable = errors.New("default profile cannot be modified this way")
)

// ProfileStore owns all credential profile records. Sessions hold only ids;
// a deleted profile degrades to the default on lookup.
type ProfileStore interface {
	List(ctx context.Context) ([]*types.Profile, error)
	Get(ctx context.Context, id string) (*types.Profile, bool, error)
	Add(ctx context.Context, profile *types.Profile) (*types.Profile, error)
	Update(ctx context.Context, profile *types.Profile) (*types.Profile, error)
	Delete(ctx context.Context, id string) error
	GetActive(ctx context.Context) (*types.Profile, error)
	SetActive(ctx context.Context, id string) error
	// SetToken reports false, not an error, when the profile id is unknown.
	SetToken(ctx context.Context, id, token, email string) (bool, error)
	GetToken(ctx context.Context, id string) (string, bool, error)
	// MarkUsed is a no-op for unknown ids.
	MarkUsed(ctx context.Context, id string) error
}

// RateLimitStore appends rate-limit history. Records are kept even for
// profile ids that do not (yet) exist, to preserve observability.
type RateLimitStore interface {
	Record(ctx context.Context, profileID, resetTime string) (*types.RateLimitRecord, error)
	ListForProfile(ctx context.Context, profileID string) ([]*types.RateLimitRecord, error)
	LatestForProfile(ctx context.Context, profileID string) (*types.RateLimitRecord, bool, error)
}

type SettingsStore interface {
	AutoSwitch(ctx context.Context) (types.AutoSwitchSettings, error)
	SetAutoSwitch(ctx context.Context, settings types.AutoSwitchSettings) error
}

// ClaudeSessionStore persists captured Claude session ids per working
// directory so conversations can be resumed after a restart.
type ClaudeSessionStore interface {
	Upsert(ctx context.Context, record *types.ClaudeSessionRecord) (*types.ClaudeSessionRecord, error)
	UpdateSessionID(ctx context.Context, cwd, terminalID, sessionID string) (*types.ClaudeSessionRecord, error)
	Get(ctx context.Context, cwd, terminalID string) (*types.ClaudeSessionRecord, bool, error)
	ListForCwd(ctx context.Context, cwd string) ([]*types.ClaudeSessionRecord, error)
	MostRecent(ctx context.Context, cwd string) (*types.ClaudeSessionRecord, bool, error)
	Delete(ctx context.Context, cwd, terminalID string) error
}

type Repository interface {
	Profiles() ProfileStore
	RateLimits() RateLimitStore
	Settings() SettingsStore
	Close() error
}
