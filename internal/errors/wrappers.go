package errors

import "fmt"

// Common error wrapping patterns used by the engine collaborators

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// Convenience functions for common operations

// FileSystemError creates a file system error
func FileSystemError(operation, path, message string) *BaseError {
	fullMessage := fmt.Sprintf("failed to %s file '%s': %s", operation, path, message)
	return New(FileSystemErrorCode, fullMessage).
		WithContext("operation", operation).
		WithContext("path", path)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// Error collection helpers

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err error) {
	if err == nil {
		return
	}
	if *multiple == nil {
		*multiple = &MultipleErrors{}
	}
	(*multiple).Add(err)
}
