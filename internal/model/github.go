package model

import "time"

// GitHubRepo is the portion of the GitHub "list repositories" response we
// expose through GET /github/repos. GitHub returns a much larger object; we
// only unmarshal the fields a client needs to build a ProjectCreate.
//
// GitHub API docs: https://docs.github.com/en/rest/repos/repos#list-repositories-for-the-authenticated-user
type GitHubRepo struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	HTMLURL      string    `json:"html_url"`
	PushedAt     time.Time `json:"pushed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LanguagesURL string    `json:"languages_url"`
}
