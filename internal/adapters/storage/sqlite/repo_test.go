package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/evanschultz/achiever/internal/app"
	"github.com/evanschultz/achiever/internal/domain"
)

func TestRepository_DocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "achiever.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.LoadDocument(ctx, "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.SaveDocument(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	now = now.Add(time.Minute)
	if err := repo.SaveDocument(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("SaveDocument() overwrite error = %v", err)
	}
	body, err := repo.LoadDocument(ctx, "k")
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if string(body) != `{"a":2}` {
		t.Fatalf("unexpected body %s", body)
	}
	updated, err := repo.DocumentUpdatedAt(ctx, "k")
	if err != nil {
		t.Fatalf("DocumentUpdatedAt() error = %v", err)
	}
	if !updated.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, updated)
	}
	if err := repo.SaveDocument(ctx, " ", nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestRepository_OpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRepository_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "achiever.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	clock := func() time.Time { return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC) }
	store, err := app.Open(ctx, repo, app.WithClock(clock))
	if err != nil {
		t.Fatalf("app.Open() error = %v", err)
	}
	user := store.RegisterUser(domain.User{ID: "u1", Email: "ada@example.com", Password: "pw"})
	target, err := domain.NewTarget(domain.TargetInput{ID: "t1", UserID: user.ID, Title: "Learn Go"}, clock())
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if err := store.AddTarget(target); err != nil {
		t.Fatalf("AddTarget() error = %v", err)
	}
	action, err := domain.NewAction(domain.ActionInput{ID: "a1", Title: "Read the tour"})
	if err != nil {
		t.Fatalf("NewAction() error = %v", err)
	}
	if err := store.AddAction("t1", action); err != nil {
		t.Fatalf("AddAction() error = %v", err)
	}
	step, err := domain.NewStep("s1", "Basics")
	if err != nil {
		t.Fatalf("NewStep() error = %v", err)
	}
	if err := store.AddStep("t1", "a1", step); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
	due := clock().Add(72 * time.Hour)
	task, err := domain.NewTask(domain.TaskInput{ID: "k1", Description: "Slices", Deadline: &due})
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := store.AddTask("t1", "a1", "s1", task); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := app.Open(ctx, repo, app.WithClock(clock))
	if err != nil {
		t.Fatalf("app.Open() reopen error = %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	if diff := cmp.Diff(store.Targets(), reopened.Targets()); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if current, ok := reopened.CurrentUser(); !ok || current.ID != "u1" {
		t.Fatalf("expected current user u1, got %#v %v", current, ok)
	}
}

func TestRepository_InMemory(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	if err := repo.SaveDocument(ctx, app.DefaultNamespace, []byte(`{}`)); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if _, err := repo.LoadDocument(ctx, app.DefaultNamespace); err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
}

func TestRepository_InMemoryDatabasesAreIsolated(t *testing.T) {
	ctx := context.Background()
	first, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = first.Close()
	})
	second, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	if err := first.SaveDocument(ctx, app.DefaultNamespace, []byte(`"from-first"`)); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if _, err := second.LoadDocument(ctx, app.DefaultNamespace); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from second database, got %v", err)
	}
}
