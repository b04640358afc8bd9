package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultAccessTTL = 15 * time.Minute

// iatSkewTolerance bounds how far in the future an issued-at claim may sit
// before the token is rejected outright.
const iatSkewTolerance = 30 * time.Second

// Claims are the JWT claims embedded in every access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies stateless, signed access tokens. The signing
// key is injected at construction; there is no hidden process-wide state.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithIssuer overrides the iss claim.
func WithIssuer(issuer string) TokenOption {
	return func(t *TokenIssuer) {
		if s := strings.TrimSpace(issuer); s != "" {
			t.issuer = s
		}
	}
}

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(t *TokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokenIssuer constructs a TokenIssuer signing with the given HS256 secret.
func NewTokenIssuer(secret []byte, opts ...TokenOption) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	t := &TokenIssuer{
		secret: secret,
		issuer: "maplecms",
		ttl:    defaultAccessTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the configured access token lifetime.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a fresh access token for the user. Stateless: nothing is
// persisted anywhere.
func (t *TokenIssuer) Issue(user *User) (string, time.Time, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return "", time.Time{}, ErrInvalidInput
	}
	if !user.Role.Valid() {
		return "", time.Time{}, ErrInvalidInput
	}
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks the signature and claims of an access token and returns the
// identity it asserts. Verification never consults a store, so a revoked
// account stays nominally valid until the token's natural expiry.
func (t *TokenIssuer) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMalformedToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrMalformedToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrMalformedToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrMalformedToken
	}
	return t.validateClaims(claims)
}

func (t *TokenIssuer) validateClaims(claims *Claims) (Identity, error) {
	if claims.Issuer != t.issuer {
		return Identity{}, ErrMalformedToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrMalformedToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return Identity{}, ErrMalformedToken
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, ErrMalformedToken
	}
	now := t.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return Identity{}, ErrExpiredToken
	}
	if claims.IssuedAt.Time.After(now.Add(iatSkewTolerance)) {
		return Identity{}, ErrClockSkew
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return Identity{}, ErrMalformedToken
	}
	return Identity{UserID: claims.Subject, Role: role}, nil
}
