package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-review/internal/shared/storage/object"
)

func TestSaveThenOpen(t *testing.T) {
	store := New(t.TempDir())
	data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2048)...)

	key, size, mimeType, err := store.Save(context.Background(), "client:abc", "My Resume.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected sniffed application/pdf, got %q", mimeType)
	}
	if !strings.HasSuffix(key, "_My Resume.pdf") || strings.Contains(key, "client:abc") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round-tripped content differs")
	}
}

func TestSaveRejectsTraversalName(t *testing.T) {
	store := New(t.TempDir())
	if _, _, _, err := store.Save(context.Background(), "c", "../etc/passwd", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}

func TestOpenErrors(t *testing.T) {
	store := New(t.TempDir())

	if _, err := store.Open(context.Background(), "abc/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, key := range []string{"../outside.pdf", "/abs/path.pdf", ""} {
		if _, err := store.Open(context.Background(), key); err == nil || errors.Is(err, object.ErrNotFound) {
			t.Fatalf("expected invalid key error for %q, got %v", key, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Open(ctx, "abc/file.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := New(t.TempDir())
	key, _, _, err := store.Save(context.Background(), "client:abc", "cv.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(context.Background(), key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if err := store.Delete(context.Background(), "../outside.pdf"); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
