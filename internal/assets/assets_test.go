package assets_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"ojboot/internal/assets"

	"github.com/klauspost/compress/gzip"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestCollectCopiesTree(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(src, "css", "site.css"), "body { margin: 0 }")
	writeFile(t, filepath.Join(src, "img", "logo.png"), "not-really-png")

	collector := &assets.Collector{SourceDirs: []string{src}, Root: root}
	summary, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if summary.Copied != 2 {
		t.Fatalf("expected 2 copied, got %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(root, "css", "site.css"))
	if err != nil {
		t.Fatalf("read copied asset failed: %v", err)
	}
	if string(data) != "body { margin: 0 }" {
		t.Fatalf("unexpected copied content: %q", data)
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(src, "site.js"), "console.log(1)")

	collector := &assets.Collector{SourceDirs: []string{src}, Root: root}
	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("first collect failed: %v", err)
	}

	summary, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("second collect failed: %v", err)
	}
	if summary.Copied != 0 || summary.Skipped != 1 {
		t.Fatalf("expected second run to skip everything, got %+v", summary)
	}
}

func TestCollectRecopiesModifiedSource(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	path := filepath.Join(src, "site.js")
	writeFile(t, path, "v1")

	collector := &assets.Collector{SourceDirs: []string{src}, Root: root}
	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("first collect failed: %v", err)
	}

	writeFile(t, path, "v2-longer")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	summary, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("second collect failed: %v", err)
	}
	if summary.Copied != 1 {
		t.Fatalf("expected modified file to be recopied, got %+v", summary)
	}

	data, _ := os.ReadFile(filepath.Join(root, "site.js"))
	if string(data) != "v2-longer" {
		t.Fatalf("expected updated content, got %q", data)
	}
}

func TestCollectWritesGzipCompanions(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(src, "app.css"), "body { color: red }")
	writeFile(t, filepath.Join(src, "logo.png"), "binary")

	collector := &assets.Collector{SourceDirs: []string{src}, Root: root, Compress: true}
	summary, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if summary.Compressed != 1 {
		t.Fatalf("expected one gzip companion, got %+v", summary)
	}

	gz, err := os.Open(filepath.Join(root, "app.css.gz"))
	if err != nil {
		t.Fatalf("expected app.css.gz: %v", err)
	}
	defer gz.Close()
	gr, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatalf("gzip reader failed: %v", err)
	}
	content, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if string(content) != "body { color: red }" {
		t.Fatalf("unexpected decompressed content: %q", content)
	}

	if _, err := os.Stat(filepath.Join(root, "logo.png.gz")); !os.IsNotExist(err) {
		t.Fatalf("expected no companion for binary asset")
	}
}

type fakeObjectStore struct {
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		buckets: make(map[string]bool),
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *fakeObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	s.buckets[bucket] = true
	return nil
}

func (s *fakeObjectStore) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	s.objects[key] = buf.Bytes()
	s.types[key] = contentType
	return nil
}

func TestUploaderMirrorsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "css", "site.css"), "body{}")
	writeFile(t, filepath.Join(root, "css", "site.css.gz"), "gz-bytes")

	store := newFakeObjectStore()
	uploader := &assets.Uploader{Store: store, Bucket: "static"}

	uploaded, err := uploader.Mirror(context.Background(), root)
	if err != nil {
		t.Fatalf("mirror failed: %v", err)
	}
	if uploaded != 2 {
		t.Fatalf("expected 2 uploads, got %d", uploaded)
	}
	if !store.buckets["static"] {
		t.Fatalf("expected bucket to be ensured")
	}

	var keys []string
	for k := range store.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if keys[0] != "css/site.css" || keys[1] != "css/site.css.gz" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if ct := store.types["css/site.css.gz"]; ct != store.types["css/site.css"] {
		t.Fatalf("expected companion to keep the original content type, got %q", ct)
	}
}
