package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(CategoryChunking, "failed to split file", fs.ErrNotExist)
	assert.Contains(t, err.Error(), "chunking")
	assert.Contains(t, err.Error(), "failed to split file")

	bare := New(CategoryStorage, "index locked", nil)
	assert.Equal(t, "storage: index locked", bare.Error())
}

func TestErrorUnwrap(t *testing.T) {
	err := New(CategoryIO, "read failed", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestIsSkippable(t *testing.T) {
	skippable := Skippable(CategoryChunking, "bad file", nil)
	assert.True(t, IsSkippable(skippable))

	fatal := New(CategoryEmbedding, "provider down", nil)
	assert.False(t, IsSkippable(fatal))

	// Detection walks through wrapping.
	wrapped := fmt.Errorf("while indexing: %w", skippable)
	assert.True(t, IsSkippable(wrapped))

	assert.False(t, IsSkippable(nil))
	assert.False(t, IsSkippable(stderrors.New("plain")))
}
