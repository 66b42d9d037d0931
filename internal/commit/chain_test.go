package commit

import (
	"testing"
	"time"

	apperrors "groot/internal/errors"
	"groot/internal/object"
	"groot/internal/staging"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestChain(t *testing.T) (*Chain, *object.MemoryStore, *staging.MemoryIndex) {
	objects := object.NewMemoryStore()
	index := staging.NewMemoryIndex()
	chain := NewChain(objects, index, NewMemoryRefs(), nil).
		WithClock(fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	return chain, objects, index
}

func TestChainCommit(t *testing.T) {
	chain, objects, index := newTestChain(t)

	head, err := chain.Head()
	require.NoError(t, err)
	assert.Nil(t, head)

	blob, err := objects.Put([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, index.Stage("a.txt", blob))

	first, err := chain.Commit("first")
	require.NoError(t, err)
	assert.True(t, first.IsRoot())
	assert.Equal(t, "2024-05-01T10:00:01.000Z", first.Timestamp)
	assert.Equal(t, []staging.Entry{{Path: "a.txt", ID: blob}}, first.Files)

	head, err = chain.Head()
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, first.ID, *head)

	entries, err := index.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	second, err := chain.Commit("second")
	require.NoError(t, err)
	require.NotNil(t, second.Parent)
	assert.Equal(t, first.ID, *second.Parent)
	assert.Empty(t, second.Files)
}

func TestChainLoadIsSelfConsistent(t *testing.T) {
	chain, objects, index := newTestChain(t)

	blob, err := objects.Put([]byte("x\n"))
	require.NoError(t, err)
	require.NoError(t, index.Stage("x.txt", blob))
	created, err := chain.Commit("message")
	require.NoError(t, err)

	loaded, err := chain.Load(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	data, err := Encode(loaded)
	require.NoError(t, err)
	id, err := object.Compute(data)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
}

func TestChainLoadErrors(t *testing.T) {
	chain, objects, _ := newTestChain(t)

	missing, err := object.Compute([]byte("nothing"))
	require.NoError(t, err)
	_, err = chain.Load(missing)
	assert.ErrorIs(t, err, apperrors.ErrCommitNotFound)

	blob, err := objects.Put([]byte("just a file\n"))
	require.NoError(t, err)
	_, err = chain.Load(blob)
	assert.ErrorIs(t, err, apperrors.ErrCommitNotFound)
}

func TestBadgerRefs(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	defer db.Close()

	refs := NewBadgerRefs(db)

	head, err := refs.Head()
	require.NoError(t, err)
	assert.Nil(t, head)

	require.NoError(t, refs.SetHead(idA))
	head, err = NewBadgerRefs(db).Head()
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, idA, *head)

	require.NoError(t, refs.store.PutRaw(headKey, []byte("garbage")))
	_, err = refs.Head()
	assert.Error(t, err)
}
