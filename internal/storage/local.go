package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists uploaded file blobs and hands back a storage path that is
// recorded on the attachment row.
type Store interface {
	Save(tenantID uuid.UUID, fileName string, r io.Reader) (string, int64, error)
	Open(storagePath string) (io.ReadCloser, error)
	Remove(storagePath string) error
}

// LocalStore keeps blobs on the local filesystem under a root directory,
// partitioned per tenant and month.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(tenantID uuid.UUID, fileName string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.root, tenantID.String(), time.Now().Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Random prefix avoids collisions and path guessing
	name := uuid.NewString() + "_" + sanitizeFileName(fileName)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	written, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	return path, written, nil
}

func (s *LocalStore) Open(storagePath string) (io.ReadCloser, error) {
	if !strings.HasPrefix(filepath.Clean(storagePath), filepath.Clean(s.root)) {
		return nil, fmt.Errorf("storage path outside upload root")
	}
	return os.Open(storagePath)
}

func (s *LocalStore) Remove(storagePath string) error {
	if !strings.HasPrefix(filepath.Clean(storagePath), filepath.Clean(s.root)) {
		return fmt.Errorf("storage path outside upload root")
	}
	return os.Remove(storagePath)
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
