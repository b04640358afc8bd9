package auth

import (
	"context"
	"time"
)

// Store describes persistence required by the auth subsystem.
type Store interface {
	Users(ctx context.Context) UserStore
	RefreshTokens(ctx context.Context) RefreshTokenStore
}

// UserStore manages accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenStore manages refresh token records. Consume is the only
// mutation allowed to race: it must revoke the record if and only if it is
// not revoked yet, and report whether this call did the revoking.
type RefreshTokenStore interface {
	Create(ctx context.Context, tok *RefreshToken) error
	Find(ctx context.Context, id string) (*RefreshToken, error)
	Consume(ctx context.Context, id string) (bool, error)
	RevokeChain(ctx context.Context, chainID string) error
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
