package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileBackend persists the snapshot as a JSON file, replacing it through a
// temporary file and rename so readers never observe a partial write.
type FileBackend struct {
	path   string
	logger *zap.Logger
}

// NewFileBackend creates the parent directory when missing.
func NewFileBackend(path string, logger *zap.Logger) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("snapshot file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	logger.Info("using file snapshot backend", zap.String("path", path))
	return &FileBackend{path: path, logger: logger}, nil
}

func (f *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoSnapshot
	}
	return data, nil
}

func (f *FileBackend) Save(ctx context.Context, payload []byte) error {
	tmp := f.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (f *FileBackend) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}
