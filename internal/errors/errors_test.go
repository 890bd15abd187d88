package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation(t *testing.T) {
	tests := []struct {
		loc  SourceLocation
		want string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "a.php"}, "a.php"},
		{SourceLocation{File: "a.php", Line: 3}, "a.php:3"},
		{SourceLocation{File: "a.php", Line: 3, Column: 7}, "a.php:3:7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
}

func TestSyntaxError(t *testing.T) {
	err := NewSyntaxErrorAt(SourceLocation{File: "a.php", Line: 2, Column: 5}, "}", "unexpected '}'")

	assert.Equal(t, "a.php:2:5: unexpected '}' (near token '}')", err.Error())
	assert.Equal(t, SyntaxErrorCode, err.ErrorCode())
	assert.Equal(t, "}", err.Token)

	wrapped := fmt.Errorf("transform: %w", err)
	var se *SyntaxError
	require.True(t, As(wrapped, &se))
	assert.Equal(t, 2, se.Location().Line)
	assert.Equal(t, SyntaxErrorCode, CodeOf(wrapped))
}

func TestDuplicateFieldError(t *testing.T) {
	err := NewDuplicateFieldError(`App\Foo`, []string{"name", "id"})

	assert.Equal(t, []string{"id", "name"}, err.Fields)
	assert.Contains(t, err.Error(), `App\Foo`)
	assert.Contains(t, err.Error(), "id, name")
	assert.Equal(t, `App\Foo`, err.Context()["class"])
	assert.NotEmpty(t, err.Suggestions())
	assert.Equal(t, DuplicateFieldErrorCode, CodeOf(err))
}

func TestUnsupportedConstructError(t *testing.T) {
	err := NewUnsupportedConstructError("Column", "name", "expression \"'a' . 'b'\"").
		WithLocation(SourceLocation{File: "a.php", Line: 9})

	assert.Equal(t, "Column", err.Attribute)
	assert.Equal(t, "name", err.Argument)
	assert.Contains(t, err.Error(), "a.php:9")
	assert.Equal(t, UnsupportedConstructErrorCode, CodeOf(err))
}

func TestWrapFileSystemError(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapFileSystemError("write", "/tmp/a.php", cause)

	assert.True(t, Is(err, cause))
	assert.Equal(t, "failed to write file '/tmp/a.php': permission denied", err.Error())
	assert.Equal(t, "/tmp/a.php", err.Context()["path"])
	assert.Equal(t, FileSystemErrorCode, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
	assert.Equal(t, "UnknownError", CodeOf(nil).String())
}

func TestMultipleErrors(t *testing.T) {
	var multi *MultipleErrors
	AddToMultiple(&multi, nil)
	assert.Nil(t, multi)
	assert.NoError(t, multi.ErrOrNil())

	syntax := NewSyntaxError("bad token")
	AddToMultiple(&multi, syntax)
	AddToMultiple(&multi, NewDuplicateFieldError("A", []string{"x"}))
	require.NotNil(t, multi)

	assert.Equal(t, 2, multi.Count())
	assert.True(t, multi.HasCode(SyntaxErrorCode))
	assert.True(t, multi.HasCode(DuplicateFieldErrorCode))
	assert.False(t, multi.HasCode(FileSystemErrorCode))
	assert.Contains(t, multi.Error(), "multiple errors (2 total)")

	err := multi.ErrOrNil()
	require.Error(t, err)
	var se *SyntaxError
	assert.True(t, As(err, &se))
	assert.Same(t, syntax, se)
}

func TestConfigurationErrors(t *testing.T) {
	err := ConfigurationError("dir", "cannot be blank")
	assert.Equal(t, "configuration error in 'dir': cannot be blank", err.Error())
	assert.Equal(t, ConfigurationErrorCode, CodeOf(err))

	cause := stderrors.New("yaml: bad indent")
	wrapped := WrapConfigurationError("colaup.yml", "read", cause)
	assert.True(t, Is(wrapped, cause))
	assert.Equal(t, "read", wrapped.Context()["operation"])
}

func TestWrapWithOperation(t *testing.T) {
	cause := stderrors.New("boom")
	err := WrapWithOperation("diff", "a.php", cause)
	assert.Equal(t, "failed to diff a.php: boom", err.Error())
	assert.Equal(t, UnknownErrorCode, CodeOf(err))
}
