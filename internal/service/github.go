package service

import (
	"context"
	"log/slog"

	"github.com/sakif/portfolio-api/internal/model"
)

// RepoLister lists the authenticated user's repositories upstream.
// *github.Client implements it.
type RepoLister interface {
	ListRepos(ctx context.Context) ([]model.GitHubRepo, error)
}

// GitHubService exposes the upstream repository list so an admin can pick
// which repositories to turn into projects.
type GitHubService struct {
	lister RepoLister
	logger *slog.Logger
}

func NewGitHubService(lister RepoLister, logger *slog.Logger) *GitHubService {
	return &GitHubService{lister: lister, logger: logger}
}

// ListRepos passes upstream errors through unchanged so the handler can
// report the upstream status.
func (s *GitHubService) ListRepos(ctx context.Context) ([]model.GitHubRepo, error) {
	repos, err := s.lister.ListRepos(ctx)
	if err != nil {
		s.logger.Warn("listing upstream repositories failed", slog.Any("error", err))
		return nil, err
	}
	if repos == nil {
		repos = []model.GitHubRepo{}
	}
	return repos, nil
}
