package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultFileMode os.FileMode = 0o644

// File is a session.Persistence backed by a file on disk.
type File struct {
	path string
	mode os.FileMode
}

// NewFile returns a File for path. Writes keep the existing file's
// permissions, or 0644 for a new file.
func NewFile(path string) *File {
	return &File{path: path, mode: defaultFileMode}
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Read returns the file content.
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.path, err)
	}
	return string(b), nil
}

// Write replaces the file content atomically: the text goes to a temp file
// in the same directory which is synced and then renamed over the target.
func (f *File) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mode := f.mode
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, mode)

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	// Best effort: sync the parent so the rename survives a crash.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
