package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y stops implementing X.
var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, github_id, name, description, html_url, pushed_at,
	created_at, updated_at, languages, languages_url, image_url`

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so one scan
// function serves single-row and multi-row queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProject reads one projects row.
//
// LANGUAGES AS JSON:
// SQLite has no array type, so the ordered language list is stored as a
// JSON array in a TEXT column (`["Python","JavaScript"]`). JSON keeps the
// order, which matters: it is the order GitHub returned.
func scanProject(s rowScanner) (*model.Project, error) {
	var (
		p           model.Project
		description sql.NullString
		imageURL    sql.NullString
		languages   string
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

	p.Languages = []string{}
	if err := json.Unmarshal([]byte(languages), &p.Languages); err != nil {
		return nil, fmt.Errorf("decoding languages of project %s: %w", p.ID, err)
	}

	return &p, nil
}

func encodeLanguages(langs []string) (string, error) {
	if langs == nil {
		langs = []string{}
	}
	b, err := json.Marshal(langs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// List returns every project, oldest first.
func (db *DB) List(ctx context.Context) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// GetByID retrieves a project by its internal ID.
// Returns apperror.ErrNotFound if no project exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

// GetByGitHubID retrieves a project by its GitHub repository ID.
func (db *DB) GetByGitHubID(ctx context.Context, githubID int64) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE github_id = ?`, githubID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", strconv.FormatInt(githubID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting project by github_id %d: %w", githubID, err)
	}
	return p, nil
}

// Create inserts a new project.
//
// The ID is generated here with xid (20 chars, URL-safe, time-sortable).
// Timestamps are normally set by the service; if the caller left them zero
// we fill them in so the NOT NULL columns are always meaningful.
//
// A second project with the same github_id hits the UNIQUE constraint; we
// translate that into apperror.Conflict and nothing is written.
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

	languages, err := encodeLanguages(project.Languages)
	if err != nil {
		return fmt.Errorf("sqlite: encoding languages: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.GitHubID,
		project.Name,
		nullString(project.Description),
		project.HTMLURL,
		project.PushedAt,
		project.CreatedAt,
		project.UpdatedAt,
		languages,
		project.LanguagesURL,
		nullString(project.ImageURL),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("project", strconv.FormatInt(project.GitHubID, 10))
		}
		return fmt.Errorf("sqlite: creating project (github_id=%d): %w", project.GitHubID, err)
	}

	return nil
}

// Update merges patch over the stored project and returns the new state.
//
// COALESCE(?, column) keeps the stored value when the parameter is NULL,
// which is how an absent optional field (nil pointer) is expressed.
// Languages and updated_at are always overwritten.
//
// The UPDATE and the read-back share a transaction so the returned record
// is exactly what this call wrote.
func (db *DB) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now().UTC()
	}

	languages, err := encodeLanguages(patch.Languages)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding languages: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning update of project %s: %w", id, err)
	}
	defer tx.Rollback() // no-op after Commit

	result, err := tx.ExecContext(ctx,
		`UPDATE projects
		 SET name        = COALESCE(?, name),
		     description = COALESCE(?, description),
		     image_url   = COALESCE(?, image_url),
		     languages   = ?,
		     updated_at  = ?
		 WHERE id = ?`,
		nullString(patch.Name),
		nullString(patch.Description),
		nullString(patch.ImageURL),
		languages,
		patch.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating project %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("project", id)
	}

	p, err := scanProject(tx.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading back project %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing update of project %s: %w", id, err)
	}

	return p, nil
}

// Delete removes a single project.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", id)
	}

	return nil
}

// DeleteAll removes every project. An empty table is not an error.
func (db *DB) DeleteAll(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting all projects: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return n, nil
}
