package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	sse     map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = body
		b.types[r.URL.Path] = r.Header.Get("Content-Type")
		b.sse[r.URL.Path] = r.Header.Get("X-Amz-Server-Side-Encryption")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := b.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code></Error>`)
			return
		}
		w.Header().Set("Content-Type", b.types[r.URL.Path])
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T, prefix string) (*Store, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		sse:     make(map[string]string),
	}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	cfg := aws.Config{
		Region:                     "us-east-1",
		Credentials:                aws.AnonymousCredentials{},
		HTTPClient:                 srv.Client(),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	store, err := NewFromConfig(cfg, Options{
		Bucket:       "resumes",
		Prefix:       prefix,
		Endpoint:     srv.URL,
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	return store, bucket
}

func TestSaveNormalizesPDFSentAsOctetStream(t *testing.T) {
	store, bucket := newTestStore(t, "/archive/")
	ctx := context.Background()

	// No %PDF magic, so sniffing yields octet-stream and the extension decides.
	body := "\x00\x01binary resume payload"
	key, size, mimeType, err := store.Save(ctx, "6d1f0c1e-7e0e-4f43-9d1b-1d4f0f6a2b11", "cv.pdf", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mimeType)
	}
	if size != int64(len(body)) {
		t.Fatalf("expected size %d, got %d", len(body), size)
	}
	if !strings.HasPrefix(key, "uploads/") || !strings.HasSuffix(key, "_cv.pdf") {
		t.Fatalf("unexpected key %q", key)
	}

	objectPath := "/resumes/archive/" + key
	if got := string(bucket.objects[objectPath]); got != body {
		t.Fatalf("stored body mismatch at %s: %q", objectPath, got)
	}
	if got := bucket.types[objectPath]; got != "application/pdf" {
		t.Fatalf("expected stored content type application/pdf, got %q", got)
	}
	if got := bucket.sse[objectPath]; got != "AES256" {
		t.Fatalf("expected AES256 encryption, got %q", got)
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
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestSaveWithKeyWritesExtractedText(t *testing.T) {
	store, bucket := newTestStore(t, "")

	n, err := store.SaveWithKey(context.Background(), "uploads/abc/cv.txt", "text/plain; charset=utf-8", strings.NewReader("Go engineer"))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != int64(len("Go engineer")) {
		t.Fatalf("unexpected size %d", n)
	}
	if got := bucket.types["/resumes/uploads/abc/cv.txt"]; got != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestOpenMissingKey(t *testing.T) {
	store, _ := newTestStore(t, "")
	if _, err := store.Open(context.Background(), "uploads/missing.pdf"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}

func TestNewFromConfigRequiresBucket(t *testing.T) {
	if _, err := NewFromConfig(aws.Config{Region: "us-east-1"}, Options{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
