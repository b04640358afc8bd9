package auth

import "time"

// Role is the fixed, ordered set of account roles. Higher roles subsume the
// capabilities of lower ones.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer: 0,
	RoleAuthor: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above other in the hierarchy.
// Unknown roles rank below everything.
func (r Role) AtLeast(other Role) bool {
	ra, ok := roleRank[r]
	if !ok {
		return false
	}
	rb, ok := roleRank[other]
	if !ok {
		return false
	}
	return ra >= rb
}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidInput
	}
	return r, nil
}

// User represents an account able to authenticate against the platform.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the verified assertion carried by an access token.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// RefreshToken is the persisted record behind a raw refresh token. Only the
// hash of the secret half is stored; the raw value is returned to the caller
// exactly once. ChainID links every successor minted from the same login.
type RefreshToken struct {
	ID        string
	UserID    string
	ChainID   string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
