package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/Aviat-at/mapleCMS/internal/ids"
)

const defaultRefreshTTL = 7 * 24 * time.Hour

// ReuseHandler is invoked when a rotation is attempted on an already-consumed
// token. By that point the whole chain has been revoked; the handler exists
// so the caller can raise a security event.
type ReuseHandler func(ctx context.Context, userID, chainID string)

// RefreshTokens implements the single-use rotation protocol over a
// RefreshTokenStore. Raw tokens have the form "<id>.<secret>"; only the
// SHA-256 of the secret half is ever persisted.
type RefreshTokens struct {
	store   RefreshTokenStore
	ttl     time.Duration
	now     func() time.Time
	onReuse ReuseHandler
}

// RefreshOption configures RefreshTokens.
type RefreshOption func(*RefreshTokens)

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) RefreshOption {
	return func(r *RefreshTokens) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRefreshClock overrides the time source (useful for tests).
func WithRefreshClock(fn func() time.Time) RefreshOption {
	return func(r *RefreshTokens) {
		if fn != nil {
			r.now = fn
		}
	}
}

// WithReuseHandler installs a callback fired on reuse detection.
func WithReuseHandler(fn ReuseHandler) RefreshOption {
	return func(r *RefreshTokens) {
		r.onReuse = fn
	}
}

// NewRefreshTokens constructs the rotation unit.
func NewRefreshTokens(store RefreshTokenStore, opts ...RefreshOption) *RefreshTokens {
	r := &RefreshTokens{
		store: store,
		ttl:   defaultRefreshTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create mints a fresh token at the head of a new chain and returns the raw
// value. The raw value is not retrievable again.
func (r *RefreshTokens) Create(ctx context.Context, userID string) (string, *RefreshToken, error) {
	return r.mint(ctx, userID, ids.New())
}

// Rotate exchanges a live raw token for its single successor. Exactly one
// Rotate per raw value can ever succeed: the record is consumed with a
// compare-and-set, so concurrent rotations on the same token cannot both
// mint successors. A rotation attempt on an already-consumed token is
// treated as theft and revokes the entire chain.
func (r *RefreshTokens) Rotate(ctx context.Context, raw string) (string, *RefreshToken, error) {
	id, secret, err := splitRawToken(raw)
	if err != nil {
		return "", nil, ErrUnknownToken
	}
	rec, err := r.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrUnknownToken
		}
		return "", nil, err
	}
	if !secretMatches(rec.TokenHash, secret) {
		// Valid id with a wrong secret half: burn the record.
		_, _ = r.store.Consume(ctx, rec.ID)
		return "", nil, ErrUnknownToken
	}
	if rec.Revoked {
		return "", nil, r.handleReuse(ctx, rec)
	}
	if r.now().After(rec.ExpiresAt) {
		return "", nil, ErrTokenExpired
	}
	consumed, err := r.store.Consume(ctx, rec.ID)
	if err != nil {
		return "", nil, err
	}
	if !consumed {
		// Lost the race against a concurrent rotation of the same raw value;
		// a double-spend attempt by definition.
		return "", nil, r.handleReuse(ctx, rec)
	}
	return r.mint(ctx, rec.UserID, rec.ChainID)
}

// Revoke marks the token revoked. Idempotent, and deliberately silent about
// whether the raw value was ever valid.
func (r *RefreshTokens) Revoke(ctx context.Context, raw string) error {
	id, secret, err := splitRawToken(raw)
	if err != nil {
		return nil
	}
	rec, err := r.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !secretMatches(rec.TokenHash, secret) {
		return nil
	}
	_, err = r.store.Consume(ctx, rec.ID)
	return err
}

// Sweep garbage-collects records expired before now. Safe to run on any
// cadence concurrently with live traffic: it only removes already-invalid
// records.
func (r *RefreshTokens) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return r.store.Sweep(ctx, now)
}

func (r *RefreshTokens) handleReuse(ctx context.Context, rec *RefreshToken) error {
	if err := r.store.RevokeChain(ctx, rec.ChainID); err != nil {
		return err
	}
	if r.onReuse != nil {
		r.onReuse(ctx, rec.UserID, rec.ChainID)
	}
	return ErrTokenRevoked
}

func (r *RefreshTokens) mint(ctx context.Context, userID, chainID string) (string, *RefreshToken, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", nil, err
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)
	sum := sha256.Sum256([]byte(secret))
	now := r.now().UTC()
	rec := &RefreshToken{
		ID:        ids.New(),
		UserID:    userID,
		ChainID:   chainID,
		TokenHash: hex.EncodeToString(sum[:]),
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	if err := r.store.Create(ctx, rec); err != nil {
		return "", nil, err
	}
	return rec.ID + "." + secret, rec, nil
}

func splitRawToken(raw string) (id, secret string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("invalid refresh token format")
	}
	return parts[0], parts[1], nil
}

func secretMatches(expectedHash, secret string) bool {
	sum := sha256.Sum256([]byte(secret))
	actual := hex.EncodeToString(sum[:])
	if len(expectedHash) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedHash), []byte(actual)) == 1
}
