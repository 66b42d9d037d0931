package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("loading head: %w", CommitNotFound("abc", nil))

	assert.True(t, stderrors.Is(err, ErrCommitNotFound))
	assert.False(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, IsType(err, ErrorTypeCommitNotFound))
	assert.False(t, IsType(err, ErrorTypeIOFailure))
	assert.Equal(t, "loading head: commit not found: abc", err.Error())
}

func TestIsTypeFollowsCause(t *testing.T) {
	inner := NotFound("object not found: 00ff")
	err := CommitNotFound("00ff", inner)

	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.True(t, IsType(err, ErrorTypeCommitNotFound))
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestIOFailureUnwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := IOFailure("writing object", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.Equal(t, "writing object: disk full", err.Error())
}
