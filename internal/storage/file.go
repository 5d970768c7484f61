// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File stores the blob in a plain file. Writes replace the file atomically.
type File struct {
	path string
}

// NewFile returns a File backend for the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the path of the backing file.
func (f *File) Path() string {
	return f.path
}

// Read returns the content of the file. A missing file reads as the empty string.
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", persistenceErr("read", err)
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", persistenceErr("read", err)
	}
	return string(data), nil
}

// Write replaces the content of the file. The data is written to a temporary file in the same
// directory first and then renamed over the target, so readers never see a partial write.
func (f *File) Write(ctx context.Context, data string) (err error) {
	if err = ctx.Err(); err != nil {
		return persistenceErr("write", err)
	}
	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return persistenceErr("write", fmt.Errorf("failed to create directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return persistenceErr("write", fmt.Errorf("failed to create temporary file: %w", err))
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return persistenceErr("write", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return persistenceErr("write", err)
	}
	if err = tmp.Close(); err != nil {
		return persistenceErr("write", err)
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return persistenceErr("write", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *File) Close() error {
	return nil
}
