// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. They are similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Project is a portfolio entry backed by a GitHub repository.
//
// Two identifiers:
//   - ID is ours (an xid generated by the store). It never changes.
//   - GitHubID is GitHub's numeric repository id. It is the natural key:
//     the stores put a UNIQUE constraint on it, so at most one project
//     exists per repository.
//
// Languages is DERIVED data. It is never read from a request body; the
// service recomputes it from LanguagesURL on every create and update.
type Project struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"github_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	HTMLURL      string    `json:"html_url"`
	PushedAt     time.Time `json:"pushed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Languages    []string  `json:"languages"`
	LanguagesURL string    `json:"languages_url"`
	ImageURL     *string   `json:"image_url"`
}

// ProjectCreate is the request body for POST /projects.
//
// The `validate` tags are read by go-playground/validator in the handler,
// so a malformed body is rejected (422) before the service is ever called.
// Notice there is no Languages field: a client can send one, but the JSON
// decoder has nowhere to put it.
type ProjectCreate struct {
	GitHubID     int64     `json:"github_id"     validate:"required,gt=0"`
	Name         string    `json:"name"          validate:"required,max=200"`
	Description  *string   `json:"description"   validate:"omitempty,max=2000"`
	HTMLURL      string    `json:"html_url"      validate:"required,url"`
	PushedAt     time.Time `json:"pushed_at"     validate:"required"`
	LanguagesURL string    `json:"languages_url" validate:"required,url"`
	ImageURL     *string   `json:"image_url"     validate:"omitempty,url"`
}

// ProjectUpdate is the request body for PUT /projects/{id}.
//
// Only these three fields are writable after creation. A nil pointer means
// "not provided, keep the stored value". LanguagesURL is deliberately absent:
// languages are always re-derived from the URL stored at creation time.
type ProjectUpdate struct {
	Name        *string `json:"name"        validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,url"`
}

// ProjectPatch is what the service hands to the store for an update.
// Pointer fields follow ProjectUpdate (nil = untouched); Languages and
// UpdatedAt are always written.
type ProjectPatch struct {
	Name        *string
	Description *string
	ImageURL    *string
	Languages   []string
	UpdatedAt   time.Time
}

// DeleteResult is the response body of both delete endpoints.
// ID is only set when a single project was removed.
type DeleteResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
	ID      string `json:"id,omitempty"`
}
