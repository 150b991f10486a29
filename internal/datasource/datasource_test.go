package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSourceFetchExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &FileSource{}
	got, err := f.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestFileSourceFetchMissingFileIsNotFound(t *testing.T) {
	f := &FileSource{}
	_, err := f.Fetch(context.Background(), "/nonexistent/path/data.csv")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var fe *FetchError
	if !(func() bool { var ok bool; fe, ok = err.(*FetchError); return ok }()) {
		t.Fatalf("expected a *FetchError, got %T", err)
	}
	if !fe.NotFound {
		t.Error("expected NotFound to be true")
	}
}

func TestBackoffDurationCapsAtMax(t *testing.T) {
	max := 2 * time.Second
	for attempt := 0; attempt < 10; attempt++ {
		if got := backoffDuration(100*time.Millisecond, attempt, max); got > max {
			t.Errorf("attempt %d: backoff %v exceeds max %v", attempt, got, max)
		}
	}
}

func TestIsRetryableStatus(t *testing.T) {
	cases := map[int]bool{200: false, 404: false, 429: true, 500: true, 503: true, 301: false}
	for code, want := range cases {
		if got := isRetryableStatus(code); got != want {
			t.Errorf("isRetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	dir := t.TempDir()
	cache, cleanup, err := NewCache(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if err := cache.Store("http://example.org/data.csv", "/tmp/whatever.cache"); err != nil {
		t.Fatal(err)
	}
	path, ok := cache.Lookup("http://example.org/data.csv")
	if !ok || path != "/tmp/whatever.cache" {
		t.Errorf("expected cached path to round-trip, got %q, %v", path, ok)
	}

	if _, ok := cache.Lookup("http://example.org/other.csv"); ok {
		t.Error("expected a lookup miss for an unstored URL")
	}
}

func TestCacheResolvedURLMismatch(t *testing.T) {
	dir := t.TempDir()
	cache, cleanup, err := NewCache(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if err := cache.Store("http://example.org/data.csv", "/tmp/a.cache"); err != nil {
		t.Fatal(err)
	}
	if _, mismatched := cache.ResolvedURLMismatch("http://example.org/data.csv"); mismatched {
		t.Error("expected no mismatch when resolved URL equals the requested URL")
	}

	if err := cache.StoreResolved("http://example.org/moved.csv", "http://example.org/final.csv", "/tmp/b.cache"); err != nil {
		t.Fatal(err)
	}
	resolved, mismatched := cache.ResolvedURLMismatch("http://example.org/moved.csv")
	if !mismatched || resolved != "http://example.org/final.csv" {
		t.Errorf("expected a mismatch resolving to final.csv, got %q, %v", resolved, mismatched)
	}
}
