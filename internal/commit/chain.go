// internal/commit/chain.go
package commit

import (
	"errors"
	"fmt"
	"time"

	apperrors "groot/internal/errors"
	"groot/internal/logging"
	"groot/internal/object"
	"groot/internal/staging"

	"go.uber.org/zap"
)

// Chain seals staged entries into commits and moves the head pointer.
type Chain struct {
	objects object.Store
	index   staging.Index
	refs    Refs
	logger  *zap.Logger
	now     func() time.Time
}

func NewChain(objects object.Store, index staging.Index, refs Refs, logger *zap.Logger) *Chain {
	return &Chain{
		objects: objects,
		index:   index,
		refs:    refs,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for commit timestamps.
func (c *Chain) WithClock(now func() time.Time) *Chain {
	c.now = now
	return c
}

// Commit records the staged entries as a new commit on top of the current
// head, then clears the index. Empty commits are allowed.
//
// The commit object is written before the head moves, so an interrupted
// commit can leave the index populated but never damages earlier commits.
func (c *Chain) Commit(message string) (*Commit, error) {
	entries, err := c.index.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	parent, err := c.refs.Head()
	if err != nil {
		return nil, err
	}

	commit := &Commit{
		Timestamp: c.now().UTC().Format(TimestampLayout),
		Message:   message,
		Files:     entries,
		Parent:    parent,
	}

	data, err := Encode(commit)
	if err != nil {
		return nil, err
	}

	id, err := c.objects.Put(data)
	if err != nil {
		return nil, fmt.Errorf("storing commit: %w", err)
	}
	commit.ID = id

	if err := c.refs.SetHead(id); err != nil {
		return nil, err
	}
	if err := c.index.Clear(); err != nil {
		return nil, fmt.Errorf("clearing index: %w", err)
	}

	c.logger.Info("created commit",
		zap.String("id", id.String()),
		zap.Int("files", len(entries)),
		zap.Bool("root", parent == nil))

	return commit, nil
}

// Head returns the newest commit identifier, or nil in a fresh repository.
func (c *Chain) Head() (*object.ID, error) {
	return c.refs.Head()
}

// Load reads the commit stored under id. Absent objects and objects that
// are not commit records both yield COMMIT_NOT_FOUND.
func (c *Chain) Load(id object.ID) (*Commit, error) {
	data, err := c.objects.Get(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.CommitNotFound(id.String(), err)
		}
		return nil, fmt.Errorf("loading commit %s: %w", id, err)
	}

	commit, err := Decode(data)
	if err != nil {
		c.logger.Debug("object is not a commit",
			zap.String("id", id.String()),
			zap.Error(err))
		return nil, apperrors.CommitNotFound(id.String(), err)
	}
	commit.ID = id
	return commit, nil
}
