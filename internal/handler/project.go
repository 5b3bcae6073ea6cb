package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/service"
)

// ProjectHandler exposes ProjectService over HTTP.
//
// Each method follows the same three steps:
//  1. decode + validate input (422 on failure, before the service runs)
//  2. call the service
//  3. writeJSON on success, writeError otherwise
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// HandleList serves GET /projects.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleGet serves GET /projects/{id}.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetByGitHubID serves GET /projects/github/{githubID}.
func (h *ProjectHandler) HandleGetByGitHubID(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "githubID")
	githubID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("github_id", "github_id must be an integer"))
		return
	}

	p, err := h.projects.GetByGitHubID(r.Context(), githubID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCreate serves POST /projects.
//
// REQUEST BODY:
//
//	{"github_id": 123456, "name": "hello", "html_url": "https://github.com/octo/hello",
//	 "pushed_at": "2023-03-01T12:00:00Z",
//	 "languages_url": "https://api.github.com/repos/octo/hello/languages"}
//
// A "languages" key in the body is ignored: ProjectCreate has no field for it.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectCreate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.projects.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleUpdate serves PUT /projects/{id}. Absent fields keep their value.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.projects.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete serves DELETE /projects/{id}.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.projects.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleDeleteAll serves DELETE /projects.
func (h *ProjectHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.projects.DeleteAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
