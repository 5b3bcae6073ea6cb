package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/repository"
)

// compile-time check that *DB implements repository.AdminRepository
var _ repository.AdminRepository = (*DB)(nil)

// CreateAdmin inserts a new administrator. The email column is UNIQUE, so a
// second registration with the same address fails with apperror.Conflict.
func (db *DB) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.ID = xid.New().String()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (id, fullname, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		admin.ID,
		admin.FullName,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("admin", admin.Email)
		}
		return fmt.Errorf("sqlite: inserting admin (email=%s): %w", admin.Email, err)
	}

	return nil
}

// GetAdminByEmail looks an admin up by email (the login name).
func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a, err := db.getAdmin(ctx, `WHERE email = ?`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("admin", email)
		}
		return nil, fmt.Errorf("sqlite: getting admin by email: %w", err)
	}
	return a, nil
}

// GetAdminByID retrieves an admin by internal ID (the JWT subject).
func (db *DB) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	a, err := db.getAdmin(ctx, `WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("admin", id)
		}
		return nil, fmt.Errorf("sqlite: getting admin %s: %w", id, err)
	}
	return a, nil
}

func (db *DB) getAdmin(ctx context.Context, where string, arg any) (*model.Admin, error) {
	var a model.Admin
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, fullname, email, password_hash, created_at FROM admins `+where,
		arg,
	).Scan(
		&a.ID,
		&a.FullName,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
