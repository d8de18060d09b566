// Package project locates and loads the testimport configuration of a workspace.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirName is the name of the testimport configuration directory.
const ConfigDirName = ".testimport"

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.json"

// ErrNoProjectRoot is returned when .testimport/config.json is not found.
var ErrNoProjectRoot = errors.New(".testimport/config.json not found: not a testimport workspace (or any parent up to the root)")

// FindRoot walks up from the current working directory until it finds .testimport/config.json.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds .testimport/config.json.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		configPath := filepath.Join(dir, ConfigDirName, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
