package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPGConsumeWinsOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewPGStore(db).RefreshTokens(context.Background())
	q := regexp.QuoteMeta(`update refresh_tokens set revoked=true where id=$1 and revoked=false`)

	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := store.Consume(context.Background(), "tok-1")
	if err != nil || !won {
		t.Fatalf("first consume: won=%v err=%v", won, err)
	}
	won, err = store.Consume(context.Background(), "tok-1")
	if err != nil || won {
		t.Fatalf("second consume: won=%v err=%v", won, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGFindRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewPGStore(db).RefreshTokens(context.Background())
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "chain_id", "token_hash", "expires_at", "revoked", "created_at"}).
		AddRow("tok-1", "user-1", "chain-1", "abc123", now.Add(time.Hour), false, now)
	mock.ExpectQuery(`select id, user_id, chain_id, token_hash, expires_at, revoked, created_at`).
		WithArgs("tok-1").WillReturnRows(rows)

	tok, err := store.Find(context.Background(), "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if tok.ChainID != "chain-1" || tok.Revoked {
		t.Fatalf("unexpected record: %+v", tok)
	}

	mock.ExpectQuery(`select id, user_id, chain_id, token_hash, expires_at, revoked, created_at`).
		WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGRevokeChainAndSweep(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewPGStore(db).RefreshTokens(context.Background())
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`update refresh_tokens set revoked=true where chain_id=$1 and revoked=false`)).
		WithArgs("chain-1").WillReturnResult(sqlmock.NewResult(0, 3))
	if err := store.RevokeChain(context.Background(), "chain-1"); err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`delete from refresh_tokens where expires_at < $1`)).
		WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 2))
	removed, err := store.Sweep(context.Background(), now)
	if err != nil || removed != 2 {
		t.Fatalf("sweep: removed=%d err=%v", removed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

type fakePGError struct{ code string }

func (e fakePGError) Error() string    { return "pg error " + e.code }
func (e fakePGError) SQLState() string { return e.code }

func TestPGCreateUserDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewPGStore(db).Users(context.Background())
	mock.ExpectExec(regexp.QuoteMeta(`insert into users(id, username, email, password_hash, role, active) values($1,$2,$3,$4,$5,$6)`)).
		WillReturnError(fakePGError{code: "23505"})

	err = store.Create(context.Background(), &User{
		ID: "user-1", Username: "dup", Email: "dup@example.com",
		PasswordHash: "x", Role: RoleAuthor, Active: true,
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGSetActiveMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewPGStore(db).Users(context.Background())
	mock.ExpectExec(regexp.QuoteMeta(`update users set active=$2, updated_at=now() where id=$1`)).
		WithArgs("ghost", false).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SetActive(context.Background(), "ghost", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fakePGError{code: "23505"}) {
		t.Fatal("unique violation not detected")
	}
	if isUniqueViolation(fakePGError{code: "40001"}) {
		t.Fatal("wrong SQLSTATE detected as unique violation")
	}
	if isUniqueViolation(errors.New("plain")) {
		t.Fatal("plain error detected as unique violation")
	}
}
