package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "sfcc.toml"

// ConfigEnv names a configuration file that overrides discovery.
const ConfigEnv = "SFCC_CONFIG"

// FindConfig looks for sfcc.toml in startDir and its parents. The search
// stops after the first directory holding .git so a component tree never
// picks up the configuration of an enclosing checkout.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		found, err := exists(candidate)
		if err != nil || found {
			return candidate, found, err
		}
		if isRepoRoot, err := exists(filepath.Join(dir, ".git")); err != nil || isRepoRoot {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
}
