package blobstore

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store persists opaque binary content (blog images, avatars) and returns a
// reference that the content service stores alongside the entity. The service
// never interprets the reference.
type Store interface {
	Save(ctx context.Context, content io.Reader, ext string) (string, error)
	Delete(ctx context.Context, ref string) error
}

type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create blob directory: %w", err)
	}

	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, content io.Reader, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	name := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes) + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(f, content)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return name, nil
}

func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// refuse references that escape the blob directory
	if ref != filepath.Base(ref) || ref == "" {
		return fmt.Errorf("invalid blob reference: %q", ref)
	}

	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
