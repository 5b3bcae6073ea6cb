package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
)

func createTestAdmin(t *testing.T, db *DB, email string) *model.Admin {
	t.Helper()
	a := &model.Admin{
		FullName:     "Test Admin",
		Email:        email,
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := db.CreateAdmin(context.Background(), a); err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

func TestCreateAdmin(t *testing.T) {
	db := newTestDB(t)
	a := createTestAdmin(t, db, "a@example.com")

	if a.ID == "" {
		t.Error("CreateAdmin() did not set ID")
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreateAdmin() did not set CreatedAt")
	}

	found, err := db.GetAdminByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAdminByID() error = %v", err)
	}
	if found.Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "a@example.com")
	}
	if found.PasswordHash != a.PasswordHash {
		t.Errorf("PasswordHash not persisted")
	}
}

func TestCreateAdmin_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestAdmin(t, db, "dup@example.com")

	err := db.CreateAdmin(context.Background(), &model.Admin{
		FullName:     "Other",
		Email:        "dup@example.com",
		PasswordHash: "x",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateAdmin() error = %v, want ErrConflict", err)
	}
}

func TestGetAdminByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestAdmin(t, db, "find@example.com")

	found, err := db.GetAdminByEmail(context.Background(), "find@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = db.GetAdminByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetAdminByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAdminByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminByID() error = %v, want ErrNotFound", err)
	}
}
