// Package store holds the small persistent blobs the uploaders depend on:
// OAuth tokens and browser cookie jars. Implementations are injected so the
// same uploader works against local files in development and S3 in the
// deployed worker.
package store

import (
	"context"
	"os"
)

// Store persists one opaque blob under a fixed name.
type Store interface {
	// Load returns the blob and whether it exists. A missing blob is not an
	// error.
	Load(ctx context.Context) ([]byte, bool, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FileStore keeps the blob in a single local file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load(_ context.Context) ([]byte, bool, error) {
	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileStore) Save(_ context.Context, data []byte) error {
	return os.WriteFile(f.Path, data, 0o600)
}

func (f *FileStore) Clear(_ context.Context) error {
	err := os.Remove(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
