package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when the named image does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidName is returned for names that cannot address a stored image.
var ErrInvalidName = errors.New("invalid object name")

type ObjectInfo struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified *time.Time
}

// PutOptions conveys metadata of an upload.
type PutOptions struct {
	ContentType string
	Size        int64
}

// Service stores uploaded images.
type Service interface {
	Put(ctx context.Context, name string, body io.Reader, opts PutOptions) (ObjectInfo, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StoredName derives a unique, path-safe object name from an uploaded file name.
func StoredName(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	return uuid.NewString() + "-" + base
}

// ValidateName rejects names that would escape the image namespace.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	return nil
}
