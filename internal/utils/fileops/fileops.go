// Package fileops reads and writes the source files a migration touches.
package fileops

import (
	"os"
	"path/filepath"

	"github.com/maliboot/colaup/internal/errors"
)

// FileOps combines path validation and error wrapping for source file IO.
type FileOps struct {
	pathValidator *PathValidator
	errorWrapper  *ErrorWrapper
}

func NewFileOps() *FileOps {
	return &FileOps{
		pathValidator: NewPathValidator(),
		errorWrapper:  NewErrorWrapper(),
	}
}

// ReadFile returns the contents of a regular file together with its
// permission bits.
func (fo *FileOps) ReadFile(filePath string) (string, os.FileMode, error) {
	cleanPath, err := fo.pathValidator.Clean(filePath)
	if err != nil {
		return "", 0, err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", 0, fo.errorWrapper.WrapFileReadError(cleanPath, err)
	}
	if !info.Mode().IsRegular() {
		return "", 0, errors.FileSystemError("read", cleanPath, "not a regular file")
	}
	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", 0, fo.errorWrapper.WrapFileReadError(cleanPath, err)
	}
	return string(content), info.Mode().Perm(), nil
}

// WriteFile replaces the contents of filePath. The new contents go to a
// temporary file in the same directory first, so a failed write never leaves
// a truncated source behind.
func (fo *FileOps) WriteFile(filePath string, content []byte, perm os.FileMode) error {
	cleanPath, err := fo.pathValidator.Clean(filePath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(cleanPath), "."+filepath.Base(cleanPath)+".*")
	if err != nil {
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}
	if err := os.Rename(tmpName, cleanPath); err != nil {
		os.Remove(tmpName)
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}
	return nil
}

// IsDir reports whether path is an existing directory
func (fo *FileOps) IsDir(path string) bool {
	return fo.pathValidator.IsDir(path)
}
