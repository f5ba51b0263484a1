// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package compdoc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgryski/go-farm"
)

const outputPerm = 0644

// WriteFile encodes data and stores the container at path.  The output is
// written to a temporary file next to path and renamed into place once it
// is complete, so path never holds a partial container.  Failures are
// returned to the caller; nothing is retried.
func WriteFile(path string, data []byte, opts ...Option) error {
	o := newOptions(opts)
	out, err := encode(data, o)
	if err != nil {
		return err
	}

	// we want to write to a new file and do an atomic rename when we're done on disk
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "compdoc.*.tmp")
	if err != nil {
		return fmt.Errorf("CreateTemp failed (may need permissions for dir %q): %w", dir, err)
	}
	tmpPath := f.Name()

	if n, err := f.Write(out); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("f.Write(%s): %w", tmpPath, err)
	} else if n != len(out) {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("f.Write(%s): short write of %d (wanted %d)", tmpPath, n, len(out))
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("f.Sync: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("f.Close: %w", err)
	}
	if err := os.Chmod(tmpPath, outputPerm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Chmod(%o): %w", outputPerm, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Rename: %w", err)
	}

	o.logger.Info("wrote compound document",
		slog.String("path", path),
		slog.Int("bytes", len(out)),
		slog.String("fingerprint", Fingerprint(out)),
	)

	return nil
}

// Fingerprint returns a stable 64-bit farmhash fingerprint of b, formatted
// as hex.  It is what WriteFile logs and what the compdoc tool prints, so
// two containers can be compared at a glance.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", farm.Fingerprint64(b))
}
