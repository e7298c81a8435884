package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// =============================================================================
// File Operations
// =============================================================================

// outputFileMode is the permission given to written images.
const outputFileMode = 0644

// writeFileAtomic writes data to dir/name through a temporary file in the
// same directory followed by a rename, so an interrupted run never leaves a
// half-written image behind. An existing file at dir/name is replaced.
// Every failure is reported as ErrWrite.
func writeFileAtomic(dir, name string, data []byte) error {
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure below.
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}

	ok = true
	return nil
}
