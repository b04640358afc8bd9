package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the account lookup misses so that a
// probe for an unknown email costs the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plaintext secret using bcrypt. The salt is generated
// per call and embedded in the output.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext secret with a stored hash. A mismatch
// is an error value, never a panic.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidInput
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// burnPasswordCheck runs a bcrypt comparison whose result is discarded.
// Called on the unknown-identifier path to keep its latency in the same
// class as a real verification.
func burnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
