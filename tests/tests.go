// Package tests provides shared helpers for the integration test suites.
package tests

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrProjectRootNotFound is returned when no go.mod is found in any parent
// directory of the working directory.
var ErrProjectRootNotFound = errors.New("project root not found")

// FindProjectRoot walks up from the working directory until it finds the
// directory containing go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrProjectRootNotFound
		}
		dir = parent
	}
}
