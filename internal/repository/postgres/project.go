package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/rs/xid"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/repository"
)

var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, github_id, name, description, html_url, pushed_at,
	created_at, updated_at, languages, languages_url, image_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*model.Project, error) {
	var (
		p           model.Project
		description sql.NullString
		imageURL    sql.NullString
		languages   pq.StringArray
	)

	err := s.Scan(
		&p.ID,
		&p.GitHubID,
		&p.Name,
		&description,
		&p.HTMLURL,
		&p.PushedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&languages,
		&p.LanguagesURL,
		&imageURL,
	)
	if err != nil {
		return nil, err
	}

	p.Description = stringPtr(description)
	p.ImageURL = stringPtr(imageURL)
	p.Languages = []string(languages)
	if p.Languages == nil {
		p.Languages = []string{}
	}
	return &p, nil
}

func (db *DB) List(ctx context.Context) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating projects: %w", err)
	}
	return projects, nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("postgres: getting project %s: %w", id, err)
	}
	return p, nil
}

func (db *DB) GetByGitHubID(ctx context.Context, githubID int64) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE github_id = $1`, githubID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", strconv.FormatInt(githubID, 10))
		}
		return nil, fmt.Errorf("postgres: getting project by github_id %d: %w", githubID, err)
	}
	return p, nil
}

func (db *DB) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}
	if project.Languages == nil {
		project.Languages = []string{}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		project.ID,
		project.GitHubID,
		project.Name,
		nullString(project.Description),
		project.HTMLURL,
		project.PushedAt,
		project.CreatedAt,
		project.UpdatedAt,
		pq.Array(project.Languages),
		project.LanguagesURL,
		nullString(project.ImageURL),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("project", strconv.FormatInt(project.GitHubID, 10))
		}
		return fmt.Errorf("postgres: creating project (github_id=%d): %w", project.GitHubID, err)
	}
	return nil
}

// Update applies patch in a single statement. RETURNING hands back the merged
// row, and no row at all means the id did not exist.
func (db *DB) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now().UTC()
	}
	languages := patch.Languages
	if languages == nil {
		languages = []string{}
	}

	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`UPDATE projects
		 SET name        = COALESCE($1, name),
		     description = COALESCE($2, description),
		     image_url   = COALESCE($3, image_url),
		     languages   = $4,
		     updated_at  = $5
		 WHERE id = $6
		 RETURNING `+projectColumns,
		nullString(patch.Name),
		nullString(patch.Description),
		nullString(patch.ImageURL),
		pq.Array(languages),
		patch.UpdatedAt,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("postgres: updating project %s: %w", id, err)
	}
	return p, nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting project %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("project", id)
	}
	return nil
}

func (db *DB) DeleteAll(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("postgres: deleting all projects: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	return n, nil
}
