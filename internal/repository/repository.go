// internal/repository/repository.go
package repository

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"groot/internal/commit"
	"groot/internal/config"
	apperrors "groot/internal/errors"
	"groot/internal/history"
	"groot/internal/logging"
	"groot/internal/object"
	"groot/internal/staging"
	"groot/internal/workspace"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Layout names the paths of a repository rooted at Root.
type Layout struct {
	Root string
}

func (l Layout) Dir() string        { return filepath.Join(l.Root, workspace.DirName) }
func (l Layout) ObjectsDir() string { return filepath.Join(l.Dir(), "objects") }
func (l Layout) DBDir() string      { return filepath.Join(l.Dir(), "db") }
func (l Layout) ConfigFile() string { return filepath.Join(l.Dir(), "config.json") }

// Repository bundles the stores of one repository. Every core operation
// goes through a handle; there is no process-wide state.
type Repository struct {
	Layout  Layout
	DB      *badger.DB
	Objects *object.Safe
	Index   staging.Index
	Refs    commit.Refs
	Chain   *commit.Chain
	History *history.Engine
	Logger  *zap.Logger
}

// Init creates the repository layout under root with an empty index and no
// head. It returns an ALREADY_INITIALIZED error if the layout exists.
func Init(root string, cfg *config.Config, logger *zap.Logger) error {
	logger = logging.OrNop(logger)

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	layout := Layout{Root: abs}

	if _, err := os.Stat(layout.Dir()); err == nil {
		return apperrors.AlreadyInitialized(abs)
	} else if !errors.Is(err, os.ErrNotExist) {
		return apperrors.IOFailure("checking repository directory", err)
	}

	for _, dir := range []string{layout.Dir(), layout.ObjectsDir(), layout.DBDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.IOFailure(fmt.Sprintf("creating directory %s", dir), err)
		}
	}

	repo, err := Open(abs, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Index.Clear(); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	logger.Info("initialized repository", zap.String("root", abs))
	return nil
}

// Open opens an initialized repository rooted at root.
func Open(root string, cfg *config.Config, logger *zap.Logger) (*Repository, error) {
	logger = logging.OrNop(logger)
	if cfg == nil {
		cfg = config.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	layout := Layout{Root: abs}

	if info, err := os.Stat(layout.Dir()); err != nil || !info.IsDir() {
		return nil, apperrors.NotFound(fmt.Sprintf("no repository at %s (run init first)", abs))
	}

	db, err := badger.Open(dbOptions(layout.DBDir(), cfg))
	if err != nil {
		return nil, apperrors.IOFailure("opening database", err)
	}

	objects, err := object.NewSafe(db, object.Options{
		Root:      layout.ObjectsDir(),
		CacheSize: cfg.Objects.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing object store: %w", err)
	}

	index := staging.NewBadgerIndex(db)
	refs := commit.NewBadgerRefs(db)
	chain := commit.NewChain(objects, index, refs, logger)

	return &Repository{
		Layout:  layout,
		DB:      db,
		Objects: objects,
		Index:   index,
		Refs:    refs,
		Chain:   chain,
		History: history.NewEngine(chain, objects, logger),
		Logger:  logger,
	}, nil
}

// Close releases the database.
func (r *Repository) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Add stores the file at arg (relative to cwd) and stages it.
func (r *Repository) Add(cwd, arg string) (staging.Entry, error) {
	rel, abs, err := workspace.Resolve(r.Layout.Root, cwd, arg)
	if err != nil {
		return staging.Entry{}, err
	}

	content, err := workspace.ReadFile(abs)
	if err != nil {
		return staging.Entry{}, err
	}

	id, err := r.Objects.Put(content)
	if err != nil {
		return staging.Entry{}, fmt.Errorf("storing %s: %w", rel, err)
	}
	if err := r.Index.Stage(rel, id); err != nil {
		return staging.Entry{}, fmt.Errorf("staging %s: %w", rel, err)
	}

	r.Logger.Info("staged file",
		zap.String("path", rel),
		zap.String("id", id.String()),
		zap.Int("size", len(content)))

	return staging.Entry{Path: rel, ID: id}, nil
}

// Commit seals the index into a new commit.
func (r *Repository) Commit(message string) (*commit.Commit, error) {
	return r.Chain.Commit(message)
}

// Log yields commits newest first.
func (r *Repository) Log() iter.Seq2[*commit.Commit, error] {
	return r.History.History()
}

// Show diffs the commit named by ref, a full or abbreviated identifier.
func (r *Repository) Show(ref string) (*history.Report, error) {
	id, err := r.ResolveCommit(ref)
	if err != nil {
		return nil, err
	}
	return r.History.Diff(id)
}

// ResolveCommit expands ref to a full commit identifier. Objects that do not
// load as commits are skipped, so a prefix shared with a blob still
// resolves. Unknown refs yield COMMIT_NOT_FOUND.
func (r *Repository) ResolveCommit(ref string) (object.ID, error) {
	ids, err := r.Objects.Matches(ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.CommitNotFound(ref, err)
		}
		return "", err
	}

	var commits []object.ID
	for _, id := range ids {
		_, err := r.Chain.Load(id)
		if apperrors.IsType(err, apperrors.ErrorTypeCommitNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		commits = append(commits, id)
	}

	id, err := object.Single(ref, commits)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.CommitNotFound(ref, err)
	}
	return id, err
}
