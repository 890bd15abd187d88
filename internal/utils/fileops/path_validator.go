package fileops

import (
	"os"
	"path/filepath"

	"github.com/maliboot/colaup/internal/errors"
)

// PathValidator cleans and checks the paths the migration reads and writes.
type PathValidator struct{}

func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// Clean rejects empty paths and returns the lexically cleaned form. The path
// does not need to exist.
func (pv *PathValidator) Clean(path string) (string, error) {
	if path == "" {
		return "", errors.FileSystemError("validate", path, "path cannot be empty")
	}

	return filepath.Clean(path), nil
}

// IsDir reports whether path is an existing directory
func (pv *PathValidator) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Resolve joins path onto base unless it is already absolute, and returns
// the absolute form.
func (pv *PathValidator) Resolve(base, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	cleanPath, err := pv.Clean(path)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", NewErrorWrapper().WrapPathResolutionError(cleanPath, err)
	}
	return absPath, nil
}
