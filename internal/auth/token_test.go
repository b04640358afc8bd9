package auth

import (
	"testing"
	"time"
)

func testUser() *User {
	return &User{ID: "user-1", Role: RoleAuthor, Active: true}
}

func TestTokenRoundtrip(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	token, exp, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}
	id, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "user-1" || id.Role != RoleAuthor {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(nil); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestTokenWrongKeyRejected(t *testing.T) {
	a, _ := NewTokenIssuer([]byte("key-a"))
	b, _ := NewTokenIssuer([]byte("key-b"))
	token, _, err := a.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(token); err != ErrMalformedToken {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	issued, _ := NewTokenIssuer([]byte("k"),
		WithAccessTTL(time.Minute),
		WithTokenClock(func() time.Time { return now }))
	token, _, err := issued.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	later, _ := NewTokenIssuer([]byte("k"),
		WithTokenClock(func() time.Time { return now.Add(2 * time.Minute) }))
	if _, err := later.Verify(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenClockSkew(t *testing.T) {
	now := time.Now()
	// Minted on a clock running a minute fast.
	fast, _ := NewTokenIssuer([]byte("k"),
		WithTokenClock(func() time.Time { return now.Add(time.Minute) }))
	token, _, err := fast.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	local, _ := NewTokenIssuer([]byte("k"),
		WithTokenClock(func() time.Time { return now }))
	if _, err := local.Verify(token); err != ErrClockSkew {
		t.Fatalf("expected ErrClockSkew, got %v", err)
	}
}

func TestTokenSkewWithinTolerance(t *testing.T) {
	now := time.Now()
	fast, _ := NewTokenIssuer([]byte("k"),
		WithTokenClock(func() time.Time { return now.Add(10 * time.Second) }))
	token, _, err := fast.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	local, _ := NewTokenIssuer([]byte("k"),
		WithTokenClock(func() time.Time { return now }))
	if _, err := local.Verify(token); err != nil {
		t.Fatalf("token within tolerance rejected: %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	issuer, _ := NewTokenIssuer([]byte("k"))
	for _, raw := range []string{"", "garbage", "a.b.c", "  "} {
		if _, err := issuer.Verify(raw); err != ErrMalformedToken {
			t.Fatalf("Verify(%q): expected ErrMalformedToken, got %v", raw, err)
		}
	}
}

func TestTokenWrongIssuerRejected(t *testing.T) {
	minted, _ := NewTokenIssuer([]byte("k"), WithIssuer("other-service"))
	token, _, err := minted.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	verifier, _ := NewTokenIssuer([]byte("k"))
	if _, err := verifier.Verify(token); err != ErrMalformedToken {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestTokenIssueRejectsBadInput(t *testing.T) {
	issuer, _ := NewTokenIssuer([]byte("k"))
	if _, _, err := issuer.Issue(nil); err != ErrInvalidInput {
		t.Fatalf("nil user: got %v", err)
	}
	if _, _, err := issuer.Issue(&User{ID: "", Role: RoleAuthor}); err != ErrInvalidInput {
		t.Fatalf("empty id: got %v", err)
	}
	if _, _, err := issuer.Issue(&User{ID: "u", Role: Role("superuser")}); err != ErrInvalidInput {
		t.Fatalf("unknown role: got %v", err)
	}
}
