// Package media stores uploaded images on local disk, normalizing them
// to bounded JPEGs before writing. URLs returned by the store are served
// by the HTTP layer under the public base path.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// maxDimension bounds the longer image side after resize.
	maxDimension = 1200
	jpegQuality  = 80
)

// Upload is one incoming file.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Store persists uploaded images and returns their public URLs.
type Store interface {
	// Save writes one image and returns its URL.
	Save(ctx context.Context, upload Upload) (string, error)
	// SaveAll writes a batch. If any file fails, files already written in
	// this batch are removed so a failed request leaves nothing behind.
	SaveAll(ctx context.Context, uploads []Upload) ([]string, error)
	// Remove deletes a previously saved image by its URL. Unknown URLs
	// are ignored.
	Remove(ctx context.Context, url string) error
}

// LocalStore writes images under Dir and serves them under BaseURL.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

func NewLocalStore(dir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("media directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL, logger: logger}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	img, err := imaging.Decode(upload.Reader, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image %q: %w", upload.Filename, err)
	}

	// Downscale only; small images pass through untouched.
	if img.Bounds().Dx() > maxDimension || img.Bounds().Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	name := uuid.NewString() + ".jpg"
	dst := filepath.Join(s.dir, name)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to save image %q: %w", upload.Filename, err)
	}

	url := path.Join(s.baseURL, name)
	s.logger.InfoContext(ctx, "Image saved", slog.String("file", name), slog.String("source", upload.Filename))
	return url, nil
}

func (s *LocalStore) SaveAll(ctx context.Context, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.Save(ctx, upload)
		if err != nil {
			for _, saved := range urls {
				if rmErr := s.Remove(ctx, saved); rmErr != nil {
					s.logger.WarnContext(ctx, "Failed to remove image during batch rollback",
						slog.String("url", saved), slog.String("error", rmErr.Error()))
				}
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *LocalStore) Remove(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image %q: %w", name, err)
	}
	return nil
}
