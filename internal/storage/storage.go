// Package storage provides durable key-addressed blob storage for uploaded
// documents. Callers replace a blob by storing the new one, swapping the
// persisted reference, then deleting the old key as best-effort cleanup.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore is the durable store behind resume and profile-picture uploads.
type BlobStore interface {
	// Store writes the blob under a fresh key derived from the given prefix
	// and filename and returns that key.
	Store(ctx context.Context, prefix, filename string, r io.Reader) (string, error)

	// Open returns the blob's contents.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a retrievable URL for the key.
	URL(key string) string

	// KeyFromURL maps a previously issued URL back to its storage key.
	KeyFromURL(url string) string
}

// FileStore keeps blobs on the local filesystem under a media root, the
// layout the original deployment used (resumes/<user>/<file>).
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore creates the media root if needed.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &FileStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FileStore) Store(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	key := path.Join(prefix, uuid.NewString()+"_"+sanitizeFilename(filename))

	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	// Write to a temp file first so a crash mid-write never leaves a
	// half-written blob under the final key.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	return key, nil
}

func (s *FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *FileStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, s.baseURL+"/")
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
