package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	body := "%PDF-1.4\n" + strings.Repeat("x", 600)
	key, size, mimeType, err := store.Save(ctx, "session-1", "my cv.pdf", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(body)) {
		t.Fatalf("expected size %d, got %d", len(body), size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mimeType)
	}
	if !strings.HasSuffix(key, "_my cv.pdf") {
		t.Fatalf("unexpected key: %s", key)
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
	if string(got) != body {
		t.Fatalf("round trip mismatch")
	}
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.SaveWithKey(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.Open(context.Background(), "../escape.txt"); err == nil {
		t.Fatalf("expected traversal to be rejected on open")
	}
}

func TestSaveRejectsCanceledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := store.Save(ctx, "session-1", "cv.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected canceled context error")
	}
}
