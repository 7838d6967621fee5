// Package media stores uploaded KYC media on the local filesystem.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/layer-3/trustgate/ports"
)

// FileStore writes media under root and serves them under baseURL
type FileStore struct {
	root    string
	baseURL string
}

var _ ports.MediaStore = (*FileStore)(nil)

func NewFileStore(root, baseURL string) *FileStore {
	return &FileStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Root is the directory the HTTP layer serves media from.
func (s *FileStore) Root() string { return s.root }

// Save writes r to folder under a fresh name keeping the original extension.
func (s *FileStore) Save(ctx context.Context, folder, name string, r io.Reader) (string, error) {
	folder = filepath.Base(filepath.Clean("/" + folder))
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("media: mkdir: %w", err)
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	f, err := os.OpenFile(filepath.Join(dir, filename), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("media: create: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("media: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("media: close: %w", err)
	}

	return path.Join(s.baseURL, folder, filename), nil
}

// Remove deletes the file behind a URL returned by Save.
func (s *FileStore) Remove(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil
	}
	// Only folder/file pairs written by Save are touched
	folder, file := path.Split(path.Clean("/" + rel))
	folder = path.Base(folder)
	if folder == "/" || file == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, folder, file))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: remove: %w", err)
	}
	return nil
}
