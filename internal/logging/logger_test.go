package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestWithInvocation(t *testing.T) {
	logger, err := NewLogger("info")
	require.NoError(t, err)

	assert.NotNil(t, logger.WithInvocation("log"))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
