package main

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func newAuthTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed creating users table: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestEnsureAdminUserIsIdempotent(t *testing.T) {
	db := newAuthTestDB(t)
	auth := newAuthService(db, "test-secret")

	if err := auth.ensureAdminUser("admin@venki.com", "secreto"); err != nil {
		t.Fatalf("ensureAdminUser returned error: %v", err)
	}
	if err := auth.ensureAdminUser("admin@venki.com", "otro-secreto"); err != nil {
		t.Fatalf("second ensureAdminUser returned error: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}

	// The original password still works: a re-run never rewrites credentials.
	valid, err := auth.validateCredentials("admin@venki.com", "secreto")
	if err != nil {
		t.Fatalf("validateCredentials returned error: %v", err)
	}
	if !valid {
		t.Fatal("expected original password to remain valid")
	}
}

func TestValidateCredentialsRejectsWrongPassword(t *testing.T) {
	db := newAuthTestDB(t)
	auth := newAuthService(db, "test-secret")

	if err := auth.ensureAdminUser("admin@venki.com", "secreto"); err != nil {
		t.Fatalf("ensureAdminUser returned error: %v", err)
	}

	valid, err := auth.validateCredentials("admin@venki.com", "incorrecto")
	if err != nil {
		t.Fatalf("validateCredentials returned error: %v", err)
	}
	if valid {
		t.Fatal("expected wrong password to be rejected")
	}

	valid, err = auth.validateCredentials("nadie@venki.com", "secreto")
	if err != nil {
		t.Fatalf("validateCredentials for unknown user returned error: %v", err)
	}
	if valid {
		t.Fatal("expected unknown user to be rejected")
	}
}

func TestUpdatePassword(t *testing.T) {
	db := newAuthTestDB(t)
	auth := newAuthService(db, "test-secret")

	if err := auth.ensureAdminUser("admin@venki.com", "secreto"); err != nil {
		t.Fatalf("ensureAdminUser returned error: %v", err)
	}
	if err := auth.updatePassword("admin@venki.com", "nuevo-secreto"); err != nil {
		t.Fatalf("updatePassword returned error: %v", err)
	}

	valid, err := auth.validateCredentials("admin@venki.com", "secreto")
	if err != nil {
		t.Fatalf("validateCredentials returned error: %v", err)
	}
	if valid {
		t.Fatal("expected old password to be rejected after change")
	}

	valid, err = auth.validateCredentials("admin@venki.com", "nuevo-secreto")
	if err != nil {
		t.Fatalf("validateCredentials returned error: %v", err)
	}
	if !valid {
		t.Fatal("expected new password to be accepted")
	}

	if err := auth.updatePassword("nadie@venki.com", "x"); err == nil {
		t.Fatal("expected error updating password of unknown user")
	}
}

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newAuthService(nil, "test-secret")

	value := auth.createSessionValue("admin@venki.com")
	email, ok := auth.verifySessionValue(value)
	if !ok {
		t.Fatal("expected session value to verify")
	}
	if email != "admin@venki.com" {
		t.Fatalf("expected admin@venki.com, got %q", email)
	}
}

func TestSessionValueRejectsTampering(t *testing.T) {
	auth := newAuthService(nil, "test-secret")
	other := newAuthService(nil, "otro-secreto")

	value := auth.createSessionValue("admin@venki.com")

	if _, ok := other.verifySessionValue(value); ok {
		t.Fatal("expected session signed with another secret to fail")
	}
	if _, ok := auth.verifySessionValue("garbage"); ok {
		t.Fatal("expected malformed session value to fail")
	}
	if _, ok := auth.verifySessionValue(value + "ff"); ok {
		t.Fatal("expected altered signature to fail")
	}
}
