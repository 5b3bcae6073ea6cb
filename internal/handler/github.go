package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-api/internal/service"
)

type GitHubHandler struct {
	github *service.GitHubService
	logger *slog.Logger
}

func NewGitHubHandler(github *service.GitHubService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{github: github, logger: logger}
}

// HandleListRepos serves GET /github/repos.
func (h *GitHubHandler) HandleListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.github.ListRepos(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleHealth serves GET /.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
}
