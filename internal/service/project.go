// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → decodes + validates requests, writes responses
//	Service (business layer) → enforces rules, orchestrates fetch + store
//	Repository (data layer)  → reads/writes the database
//
// Services take interfaces (repository.ProjectRepository, LanguageFetcher)
// rather than concrete types, so tests pass in-memory fakes and main.go
// decides between sqlite and postgres without this package knowing.
//
// Services return apperror values, never HTTP status codes. The handler
// package owns the single mapping from error kind to status.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/repository"
)

// LanguageFetcher resolves a repository's languages URL into the ordered list
// of language names. *github.Client implements it.
type LanguageFetcher interface {
	FetchLanguages(ctx context.Context, url string) ([]string, error)
}

// ProjectService runs the create / read / update / delete workflow for
// portfolio projects.
type ProjectService struct {
	repo    repository.ProjectRepository
	fetcher LanguageFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewProjectService wires a ProjectService. Timestamps come from the wall
// clock in UTC; tests replace it with WithClock.
func NewProjectService(repo repository.ProjectRepository, fetcher LanguageFetcher, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:    repo,
		fetcher: fetcher,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source and returns the service for chaining.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// Create registers a new project.
//
// The steps run strictly in order and stop at the first failure:
//
//  1. pre-check: a project with this GitHub ID already exists → Conflict
//  2. fetch languages from LanguagesURL (upstream errors pass through, nothing is written)
//  3. build the record with the fetched languages and created_at = updated_at = now
//  4. insert
//  5. return the stored record, ID included
//
// The pre-check and the insert are not atomic. Two concurrent requests for the
// same repository can both get past step 1; the store's UNIQUE constraint then
// rejects the second insert, and that Conflict is returned unchanged.
func (s *ProjectService) Create(ctx context.Context, in model.ProjectCreate) (*model.Project, error) {
	ghID := strconv.FormatInt(in.GitHubID, 10)

	existing, err := s.repo.GetByGitHubID(ctx, in.GitHubID)
	if err == nil && existing != nil {
		return nil, apperror.Conflict("project", ghID)
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/project: checking github_id %s: %w", ghID, err)
	}

	languages, err := s.fetcher.FetchLanguages(ctx, in.LanguagesURL)
	if err != nil {
		s.logger.Warn("language fetch failed",
			slog.String("github_id", ghID),
			slog.String("url", in.LanguagesURL),
			slog.Any("error", err),
		)
		return nil, err
	}

	now := s.now()
	project := &model.Project{
		GitHubID:     in.GitHubID,
		Name:         in.Name,
		Description:  in.Description,
		HTMLURL:      in.HTMLURL,
		PushedAt:     in.PushedAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Languages:    languages,
		LanguagesURL: in.LanguagesURL,
		ImageURL:     in.ImageURL,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/project: creating project (github_id=%s): %w", ghID, err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("github_id", ghID),
		slog.Int("languages", len(project.Languages)),
	)

	return project, nil
}

// GetByID returns the project with the given internal ID.
func (s *ProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "id is required")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("getting project "+id, err)
	}
	return p, nil
}

// GetByGitHubID returns the project for a GitHub repository ID.
func (s *ProjectService) GetByGitHubID(ctx context.Context, githubID int64) (*model.Project, error) {
	if githubID <= 0 {
		return nil, apperror.ValidationFailed("github_id", "github_id must be a positive integer")
	}

	p, err := s.repo.GetByGitHubID(ctx, githubID)
	if err != nil {
		return nil, s.wrap("getting project by github_id", err)
	}
	return p, nil
}

// List returns all projects, oldest first. An empty store gives an empty slice.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/project: listing projects: %w", err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// Update applies a partial update.
//
// Languages are always re-fetched from the URL stored at creation time, so
// they stay derived data even if nothing visible changed. updated_at is
// always bumped. If the fetch fails the stored record is left as it was.
func (s *ProjectService) Update(ctx context.Context, id string, in model.ProjectUpdate) (*model.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "id is required")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperror.ValidationFailed("name", "name must not be blank")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("loading project "+id, err)
	}

	languages, err := s.fetcher.FetchLanguages(ctx, current.LanguagesURL)
	if err != nil {
		s.logger.Warn("language re-fetch failed",
			slog.String("id", id),
			slog.String("url", current.LanguagesURL),
			slog.Any("error", err),
		)
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, model.ProjectPatch{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Languages:   languages,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return nil, s.wrap("updating project "+id, err)
	}

	s.logger.Info("project updated", slog.String("id", id))
	return updated, nil
}

// Delete removes one project.
func (s *ProjectService) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, s.wrap("deleting project "+id, err)
	}

	s.logger.Info("project deleted", slog.String("id", id))
	return &model.DeleteResult{
		Message: "Project deleted successfully",
		Count:   1,
		ID:      id,
	}, nil
}

// DeleteAll removes every project. An empty store is not an error.
func (s *ProjectService) DeleteAll(ctx context.Context) (*model.DeleteResult, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/project: deleting all projects: %w", err)
	}

	s.logger.Info("all projects deleted", slog.Int64("count", n))
	return &model.DeleteResult{
		Message: fmt.Sprintf("%d projects deleted successfully", n),
		Count:   n,
	}, nil
}

// wrap passes NotFound through as-is and adds context to anything else.
func (s *ProjectService) wrap(op string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	return fmt.Errorf("service/project: %s: %w", op, err)
}
