package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned when a stream exceeds the byte ceiling passed to
// WriteLimited.
var ErrTooLarge = errors.New("file exceeds size limit")

// WriteLimited streams r into path, failing with ErrTooLarge once more than
// limit bytes arrive. A limit <= 0 disables the ceiling. The partially
// written file is removed on any failure.
func WriteLimited(path string, r io.Reader, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create parent dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	cleanup := func(err error) (int64, error) {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, err
	}

	src := r
	if limit > 0 {
		// One extra byte distinguishes "exactly limit" from "over limit".
		src = io.LimitReader(r, limit+1)
	}
	written, err := io.Copy(out, src)
	if err != nil {
		return cleanup(fmt.Errorf("write file: %w", err))
	}
	if limit > 0 && written > limit {
		return cleanup(fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("close file: %w", err)
	}
	return written, nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
