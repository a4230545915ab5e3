package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".kardex"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "decks", "languages")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if found != root {
		t.Errorf("expected %s, got %s", root, found)
	}
}

func TestFindRootMissing(t *testing.T) {
	if _, err := FindRoot(t.TempDir()); err == nil {
		t.Error("expected error when no indicator exists")
	}
}

func TestOpenCreatesDeckDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks")

	repo, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if repo == nil {
		t.Fatal("expected repository")
	}
	if _, err := os.Stat(filepath.Join(path, ".kardex")); err != nil {
		t.Errorf("system dir not created: %v", err)
	}
}

func TestOpenMustExist(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope"), WithMustExist(true))
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewBuildsWorkingService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks")
	deck := `{"name": "caps", "cards": [{"front": "Capital of France?", "back": "Paris"}]}`
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "caps.json"), []byte(deck), 0644); err != nil {
		t.Fatal(err)
	}

	svc, err := New(context.Background(), path,
		WithBoxConfig(leitner.DefaultBoxConfig()),
		WithThreshold(0.8, 0.05),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess, err := svc.Start(context.Background(), "caps", time.Now())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Remaining() != 1 {
		t.Errorf("expected 1 due card, got %d", sess.Remaining())
	}
}

func TestNewRejectsBadBoxConfig(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "decks"),
		WithBoxConfig(leitner.BoxConfig{Boxes: 0}))
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
