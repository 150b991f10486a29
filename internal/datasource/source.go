// Package datasource resolves a table's CSV (or metadata) URL to a local
// file path: "fetch(url) -> Result<LocalPath, FetchError>". A file:// URL
// is opened directly; any other scheme is fetched over HTTP into a cache
// keyed by URL hash, so a repeated fetch of the same URL returns the same
// local path. The validator fetches each table's URL once and reads that
// local file in both validation passes.
package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Source resolves a URL to a local, readable file path.
type Source interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// MismatchChecker is implemented by a Source that can report whether a
// prior fetch of a URL settled on a different final URL than the one
// requested (source_url_mismatch). Not every Source needs this (file://
// URLs never redirect), so it is a narrow optional interface rather than a
// Source method.
type MismatchChecker interface {
	ResolvedURLMismatch(rawURL string) (resolvedURL string, mismatched bool)
}

// FetchError wraps a failure to resolve a URL to local bytes, carrying
// enough detail for the table pipeline to decide between
// csv_cannot_be_downloaded and file_not_found.
type FetchError struct {
	URL        string
	NotFound   bool
	Underlying error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.URL, e.Underlying)
}

func (e *FetchError) Unwrap() error { return e.Underlying }

// Resolver dispatches to FileSource or an HTTP-backed Source depending on
// the URL scheme.
type Resolver struct {
	File *FileSource
	HTTP Source // nil if no remote source is configured
}

func NewResolver(http Source) *Resolver {
	return &Resolver{File: &FileSource{}, HTTP: http}
}

func (r *Resolver) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		return r.File.Fetch(ctx, rawURL)
	}
	if r.HTTP == nil {
		return "", &FetchError{URL: rawURL, Underlying: fmt.Errorf("no HTTP source configured for scheme %q", u.Scheme)}
	}
	return r.HTTP.Fetch(ctx, rawURL)
}

// ResolvedURLMismatch delegates to the HTTP source when it implements
// MismatchChecker; a file:// URL never redirects, so there is nothing to
// check in that case.
func (r *Resolver) ResolvedURLMismatch(rawURL string) (string, bool) {
	if mc, ok := r.HTTP.(MismatchChecker); ok {
		return mc.ResolvedURLMismatch(rawURL)
	}
	return "", false
}

// stripFileScheme drops a leading "file://" so the remainder can be
// treated as a plain filesystem path.
func stripFileScheme(rawURL string) string {
	return strings.TrimPrefix(rawURL, "file://")
}
