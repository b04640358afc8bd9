package auth

import (
	"context"
	"strings"
	"time"
)

// Sessions orchestrates login, refresh and logout over the credential hasher,
// the access token issuer and the refresh token rotation unit.
type Sessions struct {
	store   Store
	issuer  *TokenIssuer
	refresh *RefreshTokens
}

// NewSessions wires the session manager.
func NewSessions(store Store, issuer *TokenIssuer, refresh *RefreshTokens) *Sessions {
	return &Sessions{store: store, issuer: issuer, refresh: refresh}
}

// Login authenticates an identifier/secret pair and mints a token pair.
// Unknown identifier and wrong password yield the identical error; an
// inactive account is rejected regardless of credential validity.
func (s *Sessions) Login(ctx context.Context, email, password string) (TokenPair, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	user, err := s.store.Users(ctx).FindByEmail(ctx, email)
	if err != nil {
		burnPasswordCheck(password)
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return TokenPair{}, nil, ErrAccountInactive
	}
	pair, err := s.mintPair(ctx, user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// Refresh rotates the presented refresh token and issues a new access token
// for the same principal.
func (s *Sessions) Refresh(ctx context.Context, rawRefreshToken string) (TokenPair, error) {
	raw, rec, err := s.refresh.Rotate(ctx, rawRefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.store.Users(ctx).Find(ctx, rec.UserID)
	if err != nil {
		_ = s.refresh.Revoke(ctx, raw)
		return TokenPair{}, ErrUnknownToken
	}
	if !user.Active {
		// The successor is the chain's only live token; revoking it ends
		// the chain for the disabled account.
		_ = s.refresh.Revoke(ctx, raw)
		return TokenPair{}, ErrAccountInactive
	}
	access, accessExp, err := s.issuer.Issue(user)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     raw,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

// Logout revokes the refresh token. Always succeeds, even for garbage input,
// to avoid leaking validity state.
func (s *Sessions) Logout(ctx context.Context, rawRefreshToken string) error {
	return s.refresh.Revoke(ctx, rawRefreshToken)
}

// Register creates a new author-role account.
func (s *Sessions) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" {
		return nil, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAuthor,
		Active:       true,
	}
	if err := s.store.Users(ctx).Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Sweep garbage-collects expired refresh token records.
func (s *Sessions) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return s.refresh.Sweep(ctx, now)
}

// Users exposes the account store for the admin surface.
func (s *Sessions) Users(ctx context.Context) UserStore {
	return s.store.Users(ctx)
}

func (s *Sessions) mintPair(ctx context.Context, user *User) (TokenPair, error) {
	access, accessExp, err := s.issuer.Issue(user)
	if err != nil {
		return TokenPair{}, err
	}
	rawRefresh, rec, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     rawRefresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}
