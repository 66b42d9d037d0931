// Package history walks the commit chain and reports what each commit
// changed relative to its parent. It only reads.
package history

import (
	"errors"
	"fmt"
	"iter"

	"groot/internal/commit"
	"groot/internal/diff"
	apperrors "groot/internal/errors"
	"groot/internal/logging"
	"groot/internal/object"

	"go.uber.org/zap"
)

var errChainLoop = errors.New("commit chain loops back on itself")

// CommitSource is the read side of the commit chain.
type CommitSource interface {
	Head() (*object.ID, error)
	Load(id object.ID) (*commit.Commit, error)
}

type Engine struct {
	commits CommitSource
	objects object.Store
	logger  *zap.Logger
}

func NewEngine(commits CommitSource, objects object.Store, logger *zap.Logger) *Engine {
	return &Engine{
		commits: commits,
		objects: objects,
		logger:  logging.OrNop(logger),
	}
}

// History yields commits newest first, starting from the current head and
// following parent links until the root. Each call re-reads the head. On a
// broken link it yields a COMMIT_NOT_FOUND error and stops.
func (e *Engine) History() iter.Seq2[*commit.Commit, error] {
	return func(yield func(*commit.Commit, error) bool) {
		head, err := e.commits.Head()
		if err != nil {
			yield(nil, err)
			return
		}

		seen := make(map[object.ID]bool)
		for next := head; next != nil; {
			id := *next
			if seen[id] {
				yield(nil, apperrors.CommitNotFound(id.String(), errChainLoop))
				return
			}
			seen[id] = true

			c, err := e.commits.Load(id)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			next = c.Parent
		}
	}
}

// Commits collects History into a slice. On a broken chain it returns the
// commits read before the break together with the error.
func (e *Engine) Commits() ([]*commit.Commit, error) {
	var out []*commit.Commit
	for c, err := range e.History() {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FileStatus says how a file in a commit relates to the parent commit.
type FileStatus int

const (
	// Initial marks files of the root commit; no diff is computed.
	Initial FileStatus = iota
	// New marks paths absent from the parent commit.
	New
	// Changed marks paths present in the parent; Segments holds the diff,
	// which may be a single unchanged segment.
	Changed
)

func (s FileStatus) String() string {
	switch s {
	case Initial:
		return "initial"
	case New:
		return "new"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

type FileReport struct {
	Path     string
	ID       object.ID
	Content  []byte
	Status   FileStatus
	ParentID object.ID
	Segments []diff.Segment
	Stats    diff.Stats
}

type Report struct {
	Commit *commit.Commit
	Parent *commit.Commit
	Files  []FileReport
}

// Diff reports every file of commit id against the same path in its parent.
// The parent entry used is the first one with a matching path.
func (e *Engine) Diff(id object.ID) (*Report, error) {
	c, err := e.commits.Load(id)
	if err != nil {
		return nil, err
	}

	report := &Report{Commit: c}
	if c.Parent != nil {
		parent, err := e.commits.Load(*c.Parent)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", id.Short(), err)
		}
		report.Parent = parent
	}

	for _, f := range c.Files {
		content, err := e.objects.Get(f.ID)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}

		fr := FileReport{Path: f.Path, ID: f.ID, Content: content}
		switch {
		case report.Parent == nil:
			fr.Status = Initial
		default:
			prev, ok := report.Parent.File(f.Path)
			if !ok {
				fr.Status = New
				break
			}
			old, err := e.objects.Get(prev.ID)
			if err != nil {
				return nil, fmt.Errorf("reading %s in parent: %w", f.Path, err)
			}
			fr.Status = Changed
			fr.ParentID = prev.ID
			fr.Segments = diff.Compute(string(old), string(content))
			fr.Stats = diff.Summarize(fr.Segments)
		}

		e.logger.Debug("diffed file",
			zap.String("commit", id.Short()),
			zap.String("path", f.Path),
			zap.Stringer("status", fr.Status))
		report.Files = append(report.Files, fr)
	}

	return report, nil
}

// IsCommitNotFound reports whether err came from a missing or invalid commit.
func IsCommitNotFound(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeCommitNotFound)
}
