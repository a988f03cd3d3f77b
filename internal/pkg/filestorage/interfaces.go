package filestorage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for URLs that do not belong to the store
var ErrInvalidPath = errors.New("invalid file path")

// FileStorage saves uploads under a directory and hands back a URL that
// reaches them. Delete accepts the URL returned by Save.
type FileStorage interface {
	Save(ctx context.Context, dir, filename, contentType string, r io.ReadSeeker, size int64) (string, error)
	Delete(ctx context.Context, url string) error
}

// objectKey builds "<dir>/<uuid><ext>" from the client-supplied filename.
// Only the extension of the original name survives.
func objectKey(dir, filename string) string {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// keyFromURL strips base from url and rejects anything that escapes it
func keyFromURL(url, base string) (string, error) {
	base = strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", ErrInvalidPath
	}
	key := strings.TrimPrefix(url, base)
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.TrimPrefix(clean, "/") != key {
		return "", ErrInvalidPath
	}
	return key, nil
}
