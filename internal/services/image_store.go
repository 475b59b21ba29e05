package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ImageUpload is an image received from a form, not yet stored.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore is a flat blob namespace for post images.
type ImageStore interface {
	Save(ctx context.Context, upload *ImageUpload) (key string, err error)
	Remove(key string) error
}

// LocalImageStore keeps blobs as files in one directory.
type LocalImageStore struct {
	dir      string
	maxBytes int64
}

func NewLocalImageStore(dir string, maxBytes int64) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, maxBytes: maxBytes}, nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	validExt            = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

// SanitizeFilename drops directory components and anything that is not a
// plain ASCII letter, digit, dot, dash or underscore.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}

// MaxOriginalNameLength matches the posts.image_original_name column.
const MaxOriginalNameLength = 255

// originalName is the sanitized upload name, shortened to fit its column.
// The extension survives truncation when it is short enough.
func originalName(filename string) string {
	name := SanitizeFilename(filename)
	if len(name) <= MaxOriginalNameLength {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	return name[:MaxOriginalNameLength-len(ext)] + ext
}

// Save writes the upload under a fresh UUID key. A partially written file is
// removed on any failure.
func (s *LocalImageStore) Save(ctx context.Context, upload *ImageUpload) (key string, err error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", newError(ErrValidation, "Only image files can be uploaded")
	}
	if upload.Size > s.maxBytes {
		return "", newError(ErrValidation, fmt.Sprintf("Images must be smaller than %d MB", s.maxBytes>>20))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = uuid.NewString()
	if ext := strings.ToLower(filepath.Ext(SanitizeFilename(upload.Filename))); validExt.MatchString(ext) {
		key += ext
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	// Read one byte past the limit so oversized bodies with a lying Size are caught.
	n, err := io.Copy(tmp, io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if n > s.maxBytes {
		err = newError(ErrValidation, fmt.Sprintf("Images must be smaller than %d MB", s.maxBytes>>20))
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// Remove deletes a stored blob. Unknown keys are ignored.
func (s *LocalImageStore) Remove(key string) error {
	if key == "" || key != filepath.Base(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
