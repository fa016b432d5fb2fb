// Package storage keeps uploaded images on local disk and hands back their public URLs.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "spotly/internal/errors"
	"spotly/internal/logging"
)

// Upload folders.
const (
	FolderSpots   = "spots"
	FolderReviews = "reviews"
	FolderAvatars = "avatars"
)

// URLPrefix is the path the upload directory is served under.
const URLPrefix = "/uploads"

// ImageStore saves uploaded images.
type ImageStore interface {
	Save(folder string, fh *multipart.FileHeader) (string, error)
	SaveAll(folder string, fhs []*multipart.FileHeader) ([]string, error)
	Remove(urls ...string)
	MaxFiles() int
}

// Config configures a LocalStore.
type Config struct {
	Dir           string
	PublicBaseURL string
	MaxBytes      int64
	MaxFiles      int
}

// LocalStore writes images under Dir/<folder>/<uuid><ext>.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	maxFiles int
}

// NewLocalStore creates the upload directory when missing.
func NewLocalStore(cfg Config) (*LocalStore, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 * 1024 * 1024
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 5
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes: cfg.MaxBytes,
		maxFiles: cfg.MaxFiles,
	}, nil
}

func (s *LocalStore) MaxFiles() int { return s.maxFiles }

// Save checks size and content type, then stores the file.
func (s *LocalStore) Save(folder string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", tooLarge(s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperrors.BadRequest("Could not read uploaded file")
	}
	defer src.Close()

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", apperrors.Internal("Image upload failed", err)
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", apperrors.BadRequest("Only image files are allowed")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.Internal("Image upload failed", err)
	}

	name := uuid.NewString() + mime.Extension()
	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Internal("Image upload failed", err)
	}

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperrors.Internal("Image upload failed", err)
	}
	// The header size is client supplied; the copy enforces the limit for real.
	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil || n > s.maxBytes {
		_ = os.Remove(filepath.Join(dir, name))
		if err != nil {
			return "", apperrors.Internal("Image upload failed", err)
		}
		return "", tooLarge(s.maxBytes)
	}

	return s.baseURL + path.Join(URLPrefix, folder, name), nil
}

// SaveAll stores every file or none of them.
func (s *LocalStore) SaveAll(folder string, fhs []*multipart.FileHeader) ([]string, error) {
	if len(fhs) > s.maxFiles {
		return nil, apperrors.BadRequest(fmt.Sprintf("Too many files. Maximum is %d", s.maxFiles))
	}
	urls := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		u, err := s.Save(folder, fh)
		if err != nil {
			s.Remove(urls...)
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Remove deletes stored files by URL. Unknown URLs are ignored.
func (s *LocalStore) Remove(urls ...string) {
	for _, u := range urls {
		rel := strings.TrimPrefix(u, s.baseURL)
		if !strings.HasPrefix(rel, URLPrefix+"/") {
			continue
		}
		p := filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(rel, URLPrefix+"/")))
		if !strings.HasPrefix(p, filepath.Clean(s.dir)+string(os.PathSeparator)) {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", p).Msg("failed to remove upload")
		}
	}
}

func tooLarge(limit int64) error {
	size := fmt.Sprintf("%d bytes", limit)
	if limit%(1<<20) == 0 {
		size = fmt.Sprintf("%dMB", limit>>20)
	}
	return apperrors.BadRequest("File too large. Maximum size is " + size)
}
