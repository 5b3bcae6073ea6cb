// Package repository declares the storage contracts the services depend on.
//
// Two implementations live in sub-packages (sqlite, postgres). Both must
// enforce the uniqueness invariants at the storage level: the services'
// "does it already exist?" pre-checks are only there to produce a friendly
// error quickly, and two concurrent requests can both pass them.
package repository

import (
	"context"

	"github.com/sakif/portfolio-api/internal/model"
)

type ProjectRepository interface {
	// List returns every project, oldest first.
	List(ctx context.Context) ([]model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.Project, error)
	// Create assigns the ID and inserts. A duplicate GitHubID fails with
	// apperror.ErrConflict and leaves the store unchanged.
	Create(ctx context.Context, project *model.Project) error
	// Update merges patch over the stored record and returns the result.
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every project and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

type AdminRepository interface {
	// CreateAdmin assigns the ID and inserts. A duplicate email fails with
	// apperror.ErrConflict.
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*model.Admin, error)
}
