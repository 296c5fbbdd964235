package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
)

// FileStore keeps each record as "<record>.json" under a directory, matching
// the original deployment's on-disk layout.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, record string) ([]byte, error) {
	data, err := os.ReadFile(s.path(record))
	if os.IsNotExist(err) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", record, err)
	}
	return data, nil
}

func (s *FileStore) Set(_ context.Context, record string, data []byte) error {
	if err := os.WriteFile(s.path(record), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", record, err)
	}
	return nil
}

func (s *FileStore) path(record string) string {
	return filepath.Join(s.dir, record+".json")
}

var _ domain.StateStore = (*FileStore)(nil)
