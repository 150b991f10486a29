package datasource

import (
	"context"
	"os"
)

// FileSource resolves file:// and bare local paths directly, with no
// caching (the path is already local).
type FileSource struct{}

func (f *FileSource) Fetch(_ context.Context, rawURL string) (string, error) {
	path := stripFileScheme(rawURL)
	if _, err := os.Stat(path); err != nil {
		return "", &FetchError{URL: rawURL, NotFound: true, Underlying: err}
	}
	return path, nil
}
