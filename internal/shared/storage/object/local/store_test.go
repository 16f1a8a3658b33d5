package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"legal-backend/internal/shared/storage/object"
)

func TestSaveAndOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, err := store.Save(ctx, "guest:1", "nda.txt", "text/plain", strings.NewReader("mutual nda"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("mutual nda")) {
		t.Fatalf("expected size %d, got %d", len("mutual nda"), size)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "mutual nda" {
		t.Fatalf("expected stored content, got %q", got)
	}
}

func TestOpenRejectsTraversalAndMissing(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Open(ctx, "../outside.txt"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.Open(ctx, "missing/file.txt"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveHonorsCanceledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := store.Save(ctx, "guest:1", "nda.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
