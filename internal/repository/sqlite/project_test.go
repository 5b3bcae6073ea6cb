package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
)

// newTestDB opens a fresh in-memory database. Each test gets its own, and
// t.Cleanup closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

// createTestProject inserts a project with sensible defaults and fails the
// test if that does not work.
func createTestProject(t *testing.T, db *DB, githubID int64, name string) *model.Project {
	t.Helper()
	now := time.Now().UTC()
	p := &model.Project{
		GitHubID:     githubID,
		Name:         name,
		HTMLURL:      "https://github.com/octo/" + name,
		PushedAt:     now.Add(-time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
		Languages:    []string{"Go"},
		LanguagesURL: "https://api.github.com/repos/octo/" + name + "/languages",
	}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)

	p := &model.Project{
		GitHubID:     123456,
		Name:         "hello",
		Description:  strPtr("a greeting"),
		HTMLURL:      "https://github.com/octo/hello",
		PushedAt:     time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
		Languages:    []string{"Python", "JavaScript"},
		LanguagesURL: "https://api.github.com/repos/octo/hello/languages",
	}

	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" {
		t.Error("Create() did not set ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Create() did not default the timestamps")
	}

	found, err := db.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "hello" {
		t.Errorf("Name = %q, want %q", found.Name, "hello")
	}
	if found.Description == nil || *found.Description != "a greeting" {
		t.Errorf("Description = %v, want %q", found.Description, "a greeting")
	}
	if found.ImageURL != nil {
		t.Errorf("ImageURL = %v, want nil", *found.ImageURL)
	}
	if !found.PushedAt.Equal(p.PushedAt) {
		t.Errorf("PushedAt = %v, want %v", found.PushedAt, p.PushedAt)
	}
}

func TestCreate_LanguagesKeepOrder(t *testing.T) {
	db := newTestDB(t)

	p := createTestProject(t, db, 1, "ordered")
	_, err := db.Update(context.Background(), p.ID, model.ProjectPatch{
		Languages: []string{"Python", "JavaScript", "C"},
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	want := []string{"Python", "JavaScript", "C"}
	if len(found.Languages) != len(want) {
		t.Fatalf("Languages = %v, want %v", found.Languages, want)
	}
	for i := range want {
		if found.Languages[i] != want[i] {
			t.Errorf("Languages[%d] = %q, want %q", i, found.Languages[i], want[i])
		}
	}
}

func TestCreate_DuplicateGitHubID(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, 42, "first")

	dup := &model.Project{
		GitHubID:     42,
		Name:         "second",
		HTMLURL:      "https://github.com/octo/second",
		PushedAt:     time.Now().UTC(),
		LanguagesURL: "https://api.github.com/repos/octo/second/languages",
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}

	all, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d projects after rejected insert, want 1", len(all))
	}
}

// =========================================================================
// READ
// =========================================================================

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetByGitHubID(t *testing.T) {
	db := newTestDB(t)
	created := createTestProject(t, db, 777, "lucky")

	found, err := db.GetByGitHubID(context.Background(), 777)
	if err != nil {
		t.Fatalf("GetByGitHubID() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = db.GetByGitHubID(context.Background(), 778)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByGitHubID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	projects, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if projects == nil {
		t.Error("List() returned nil, want empty slice")
	}
	if len(projects) != 0 {
		t.Errorf("List() returned %d projects, want 0", len(projects))
	}
}

func TestList_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order; List must sort by created_at.
	for i, name := range []string{"b", "c", "a"} {
		offset := []time.Duration{time.Hour, 2 * time.Hour, 0}[i]
		p := &model.Project{
			GitHubID:     int64(i + 1),
			Name:         name,
			HTMLURL:      "https://github.com/octo/" + name,
			PushedAt:     base,
			CreatedAt:    base.Add(offset),
			UpdatedAt:    base.Add(offset),
			LanguagesURL: "https://api.github.com/repos/octo/" + name + "/languages",
		}
		if err := db.Create(context.Background(), p); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	projects, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := make([]string, len(projects))
	for i, p := range projects {
		got[i] = p.Name
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() order = %v, want %v", got, want)
		}
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdate_PartialKeepsAbsentFields(t *testing.T) {
	db := newTestDB(t)
	p := createTestProject(t, db, 5, "before")

	later := p.UpdatedAt.Add(time.Minute)
	updated, err := db.Update(context.Background(), p.ID, model.ProjectPatch{
		ImageURL:  strPtr("https://img.example.com/x.png"),
		Languages: []string{"Go", "Shell"},
		UpdatedAt: later,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "before" {
		t.Errorf("Name = %q, want unchanged %q", updated.Name, "before")
	}
	if updated.ImageURL == nil || *updated.ImageURL != "https://img.example.com/x.png" {
		t.Errorf("ImageURL = %v, want the new URL", updated.ImageURL)
	}
	if len(updated.Languages) != 2 || updated.Languages[1] != "Shell" {
		t.Errorf("Languages = %v, want [Go Shell]", updated.Languages)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", p.CreatedAt, updated.CreatedAt)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Update(context.Background(), "nonexistent-id", model.ProjectPatch{
		Name: strPtr("x"),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	p := createTestProject(t, db, 9, "doomed")

	if err := db.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), p.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	// Second delete has nothing to remove.
	err = db.Delete(context.Background(), p.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAll(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, 1, "one")
	createTestProject(t, db, 2, "two")
	createTestProject(t, db, 3, "three")

	n, err := db.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteAll() = %d, want 3", n)
	}

	n, err = db.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("DeleteAll() on empty table error = %v", err)
	}
	if n != 0 {
		t.Errorf("DeleteAll() on empty table = %d, want 0", n)
	}
}
