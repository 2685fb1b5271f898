// Package media stores uploaded images below a media root directory.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("upload a valid image; the file is either not an image or a corrupted image")
	ErrTooLarge        = errors.New("uploaded file is too large")
	ErrInvalidPath     = errors.New("invalid media path")
)

// Image types accepted for upload.
var imageTypes = []string{"image/gif", "image/png", "image/jpeg", "image/webp"}

// PostsDir is the directory under the media root that post images go to.
const PostsDir = "posts"

// Storage writes files below Root and serves them under URLPrefix.
type Storage struct {
	Root      string
	URLPrefix string
	MaxBytes  int64
}

// New creates the media root if needed.
func New(root, urlPrefix string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Storage{Root: root, URLPrefix: urlPrefix, MaxBytes: maxBytes}, nil
}

// SaveImage checks that r holds an image and stores it under dir. It
// returns the slash-separated path relative to the root, e.g.
// "posts/5f0c...gif".
func (s *Storage) SaveImage(dir string, r io.Reader) (string, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return "", ErrUnsupportedType
	}

	rel := path.Join(dir, uuid.NewString()+mtype.Extension())
	full, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := writeFile(full, data); err != nil {
		return "", err
	}
	return rel, nil
}

func isImage(mtype *mimetype.MIME) bool {
	for _, t := range imageTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

func writeFile(full string, data []byte) error {
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write media file: %w", err)
	}
	return f.Close()
}

// Path maps a relative media path to a file path under the root.
func (s *Storage) Path(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(local) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, local), nil
}

// Exists reports whether rel is stored.
func (s *Storage) Exists(rel string) bool {
	full, err := s.Path(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// Open opens a stored file.
func (s *Storage) Open(rel string) (*os.File, error) {
	full, err := s.Path(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a stored file. Missing files are not an error.
func (s *Storage) Delete(rel string) error {
	full, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL is the public address of rel.
func (s *Storage) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.URLPrefix + rel
}

// Handler serves the media root under URLPrefix.
func (s *Storage) Handler() http.Handler {
	return http.StripPrefix(s.URLPrefix, http.FileServer(http.Dir(s.Root)))
}
