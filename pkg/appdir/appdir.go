// Package appdir locates the per-user data directory (~/.bitfeistel).
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const dirName = ".bitfeistel"

var (
	appDirOnce  sync.Once
	appDirCache string
	appDirErr   error
)

// AppDir returns the data directory path without creating it.
func AppDir() (string, error) {
	appDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			appDirErr = fmt.Errorf("appdir: no home directory: %w", err)
			return
		}
		appDirCache = filepath.Join(home, dirName)
	})
	return appDirCache, appDirErr
}

// Path returns the path of file inside the data directory, creating the
// directory if needed.
func Path(file string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("appdir: failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, file), nil
}
