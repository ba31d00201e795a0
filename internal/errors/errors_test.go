package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("unexpected token")
	err := NewParseError("123 main st", "unterminated quote").WithCause(cause)

	assert.Contains(t, err.Error(), "123 main st")
	assert.Contains(t, err.Error(), "unterminated quote")
	assert.Contains(t, err.Error(), "unexpected token")
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestParseErrorWithoutCauseOmitsTrailer(t *testing.T) {
	err := NewParseError("q", "bad")
	assert.Equal(t, `parse error for query "q": bad`, err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestIndexErrorAndSearchErrorMessages(t *testing.T) {
	idx := NewIndexError("commit", "disk full")
	assert.Contains(t, idx.Error(), "commit")
	assert.Contains(t, idx.Error(), "disk full")

	srch := NewSearchError("moes tavern", "index closed")
	assert.Contains(t, srch.Error(), "moes tavern")
	assert.Contains(t, srch.Error(), "index closed")
}

func TestDirectoryErrorAndAdminErrorMessages(t *testing.T) {
	dir := NewDirectoryError("chunks/000042", "checksum mismatch")
	assert.Contains(t, dir.Error(), "chunks/000042")
	assert.Contains(t, dir.Error(), "checksum mismatch")

	admin := NewAdminError(77, "no polygon covers this cell")
	assert.Contains(t, admin.Error(), "77")
	assert.Contains(t, admin.Error(), "no polygon covers this cell")
}

func TestConfigErrorMessage(t *testing.T) {
	err := NewConfigError("admin.max_cell_level", "must be between 0 and 30")
	assert.Equal(t, `config error for field "admin.max_cell_level": must be between 0 and 30`, err.Error())
}

func TestMultiErrorOrNilReturnsNilWhenEmpty(t *testing.T) {
	var multi MultiError
	require.Nil(t, multi.ErrorOrNil())
	assert.False(t, multi.HasErrors())
}

func TestMultiErrorAggregatesAndFormats(t *testing.T) {
	var multi MultiError
	multi.Add(nil)
	multi.Add(NewConfigError("a", "bad a"))
	multi.Add(NewConfigError("b", "bad b"))

	require.True(t, multi.HasErrors())
	err := multi.ErrorOrNil()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "bad a")
	assert.Contains(t, err.Error(), "bad b")
}

func TestMultiErrorSingleErrorUnwrapsToItsMessage(t *testing.T) {
	var multi MultiError
	multi.Add(NewConfigError("a", "bad a"))
	assert.Equal(t, `config error for field "a": bad a`, multi.ErrorOrNil().Error())
}
