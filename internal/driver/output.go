package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write stores the header and the source in dir. Each file is replaced
// atomically, so a failed run leaves the previous output in place.
func (r *Result) Write(dir string) error {
	if r == nil {
		return ErrNoOutput
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, r.HeaderName), r.Header); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, r.SourceName), r.Source)
}

// Paths returns where Write puts the files.
func (r *Result) Paths(dir string) (header, src string) {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, r.HeaderName), filepath.Join(dir, r.SourceName)
}

func writeAtomic(path, text string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.WriteString(text); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	// #nosec G302 -- generated sources are meant to be readable
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}
