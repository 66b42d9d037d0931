package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"groot/internal/config"
	apperrors "groot/internal/errors"
	"groot/internal/history"
	"groot/internal/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	sync := false
	cfg.Database.SyncWrites = &sync
	return cfg
}

func setupRepo(t *testing.T) (*Repository, string) {
	root := t.TempDir()
	require.NoError(t, Init(root, testConfig(), nil))

	repo, err := Open(root, testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, root
}

func writeFile(t *testing.T, root, rel, content string) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root, testConfig(), nil))

	layout := Layout{Root: root}
	assert.DirExists(t, layout.ObjectsDir())
	assert.DirExists(t, layout.DBDir())

	err := Init(root, testConfig(), nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInitialized)

	repo, err := Open(root, testConfig(), nil)
	require.NoError(t, err)
	defer repo.Close()

	head, err := repo.Chain.Head()
	require.NoError(t, err)
	assert.Nil(t, head)

	entries, err := repo.Index.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenUninitialized(t *testing.T) {
	_, err := Open(t.TempDir(), testConfig(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAdd(t *testing.T) {
	repo, root := setupRepo(t)
	writeFile(t, root, "docs/a.txt", "hello\n")

	entry, err := repo.Add(root, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", entry.Path)
	assert.Equal(t, "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03", entry.ID.String())

	// Relative to a subdirectory.
	entry, err = repo.Add(filepath.Join(root, "docs"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", entry.Path)

	entries, err := repo.Index.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.Add(root, "nope.txt")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := repo.Add(root, "docs")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Metadata", func(t *testing.T) {
		_, err := repo.Add(root, ".groot/config.json")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCommitLogShow(t *testing.T) {
	repo, root := setupRepo(t)

	writeFile(t, root, "a.txt", "hello\n")
	_, err := repo.Add(root, "a.txt")
	require.NoError(t, err)
	first, err := repo.Commit("init")
	require.NoError(t, err)
	assert.True(t, first.IsRoot())

	entries, err := repo.Index.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	writeFile(t, root, "a.txt", "hello\nworld\n")
	_, err = repo.Add(root, "a.txt")
	require.NoError(t, err)
	second, err := repo.Commit("more")
	require.NoError(t, err)
	require.NotNil(t, second.Parent)
	assert.Equal(t, first.ID, *second.Parent)

	var messages []string
	for c, err := range repo.Log() {
		require.NoError(t, err)
		messages = append(messages, c.Message)
	}
	assert.Equal(t, []string{"more", "init"}, messages)

	report, err := repo.Show(second.ID.String())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, history.Changed, report.Files[0].Status)
	assert.Equal(t, 1, report.Files[0].Stats.Additions)
	assert.Equal(t, 0, report.Files[0].Stats.Deletions)

	t.Run("Prefix", func(t *testing.T) {
		report, err := repo.Show(first.ID.String()[:12])
		require.NoError(t, err)
		require.Len(t, report.Files, 1)
		assert.Equal(t, history.Initial, report.Files[0].Status)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := repo.Show("ffffffffffff")
		assert.True(t, history.IsCommitNotFound(err))
	})

	t.Run("BlobIsNotCommit", func(t *testing.T) {
		_, err := repo.Show(report.Files[0].ID.String())
		assert.True(t, history.IsCommitNotFound(err))
	})
}

func TestIndexSurvivesReopen(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root, testConfig(), nil))
	writeFile(t, root, "a.txt", "one\n")

	repo, err := Open(root, testConfig(), nil)
	require.NoError(t, err)
	_, err = repo.Add(root, "a.txt")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(root, testConfig(), nil)
	require.NoError(t, err)
	defer repo.Close()

	c, err := repo.Commit("after reopen")
	require.NoError(t, err)
	require.Len(t, c.Files, 1)
	assert.Equal(t, "a.txt", c.Files[0].Path)
}

func TestVerify(t *testing.T) {
	repo, root := setupRepo(t)
	writeFile(t, root, "a.txt", "payload\n")
	entry, err := repo.Add(root, "a.txt")
	require.NoError(t, err)
	_, err = repo.Commit("c1")
	require.NoError(t, err)

	report, err := repo.Verify()
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Objects)
	assert.Equal(t, 1, report.Commits)

	// Corrupt the blob on disk.
	id := entry.ID.String()
	path := filepath.Join(repo.Layout.ObjectsDir(), id[:2], id[2:])
	require.NoError(t, os.Chmod(path, 0644))
	require.NoError(t, os.WriteFile(path, []byte("tampered\n"), 0644))

	report, err = repo.Verify()
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.NotEmpty(t, report.Problems)
	assert.Equal(t, entry.ID, report.Problems[0].ID)
}

func TestResolveCommitSkipsBlobs(t *testing.T) {
	repo, _ := setupRepo(t)
	c, err := repo.Commit("only commit")
	require.NoError(t, err)
	prefix := c.ID.String()[:object.MinPrefixLength]

	// Find blob content whose identifier shares the commit's prefix.
	var blob []byte
	for i := 0; blob == nil; i++ {
		data := []byte(fmt.Sprintf("blob %d\n", i))
		id, err := object.Compute(data)
		require.NoError(t, err)
		if id != c.ID && id.String()[:object.MinPrefixLength] == prefix {
			blob = data
		}
	}
	_, err = repo.Objects.Put(blob)
	require.NoError(t, err)

	_, err = repo.Objects.Resolve(prefix)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	id, err := repo.ResolveCommit(prefix)
	require.NoError(t, err)
	assert.Equal(t, c.ID, id)

	report, err := repo.Show(prefix)
	require.NoError(t, err)
	assert.Equal(t, c.ID, report.Commit.ID)
}

func TestVerifyBrokenChain(t *testing.T) {
	repo, _ := setupRepo(t)

	missing, err := object.Compute([]byte("never committed"))
	require.NoError(t, err)
	require.NoError(t, repo.Refs.SetHead(missing))

	report, err := repo.Verify()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Commits)
	require.Len(t, report.Problems, 1)
	assert.True(t, history.IsCommitNotFound(report.Problems[0].Err))
}
