package fileops

import (
	"github.com/maliboot/colaup/internal/errors"
)

// ErrorWrapper turns os errors into FileSystemErrors naming the operation
type ErrorWrapper struct{}

func NewErrorWrapper() *ErrorWrapper {
	return &ErrorWrapper{}
}

// WrapFileReadError wraps file reading errors with context
func (ew *ErrorWrapper) WrapFileReadError(filePath string, err error) error {
	return errors.WrapFileSystemError("read", filePath, err)
}

// WrapFileWriteError wraps file writing errors with context
func (ew *ErrorWrapper) WrapFileWriteError(filePath string, err error) error {
	return errors.WrapFileSystemError("write", filePath, err).
		WithSuggestion("check that the file is writable")
}

// WrapDirectoryWalkError wraps errors met while walking a directory tree
func (ew *ErrorWrapper) WrapDirectoryWalkError(dirPath string, err error) error {
	return errors.WrapFileSystemError("walk directory", dirPath, err)
}

// WrapPathResolutionError wraps path resolution errors with context
func (ew *ErrorWrapper) WrapPathResolutionError(path string, err error) error {
	return errors.WrapFileSystemError("resolve path", path, err)
}
