package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes assets under a directory and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Root: dir, BaseURL: baseURL}
}

// Put writes data atomically via a temp file and rename.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := CleanPath(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".asset-*")
	if err != nil {
		return "", fmt.Errorf("create temp asset: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close asset: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename asset: %w", err)
	}
	if s.BaseURL == "" {
		return "file://" + filepath.ToSlash(dst), nil
	}
	return joinURL(s.BaseURL, key), nil
}
