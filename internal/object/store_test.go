package object

import (
	"testing"

	apperrors "groot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	id, err := store.Put([]byte("hello\n"))
	require.NoError(t, err)

	again, err := store.Put([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, store.Len())

	data, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), data)

	// Returned slices are copies.
	data[0] = 'j'
	data, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), data)

	ok, err := store.Has(id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Get(ID("00"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
