package repository

import (
	"errors"

	"groot/internal/object"

	"go.uber.org/zap"
)

// Problem describes one integrity failure found by Verify.
type Problem struct {
	ID     object.ID
	Path   string // set when the object is referenced by a commit
	Commit object.ID
	Err    error
}

// VerifyReport summarizes an integrity check.
type VerifyReport struct {
	Objects  int
	Commits  int
	Problems []Problem
}

// OK reports whether no problems were found.
func (v *VerifyReport) OK() bool { return len(v.Problems) == 0 }

// Verify re-hashes every stored object and walks history from the head,
// checking that every commit and referenced file can be loaded.
// Problems are collected rather than returned; the error is reserved for
// failures that stop the walk over the metadata itself.
func (r *Repository) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}

	err := r.Objects.Walk(func(meta object.Meta) error {
		report.Objects++
		if err := r.Objects.Verify(meta.ID); err != nil {
			report.Problems = append(report.Problems, Problem{ID: meta.ID, Err: err})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	commits, err := r.History.Commits()
	if err != nil {
		report.Problems = append(report.Problems, Problem{Err: err})
	}
	for _, c := range commits {
		report.Commits++
		for _, f := range c.Files {
			has, err := r.Objects.Has(f.ID)
			if err == nil && !has {
				err = errors.New("referenced object is missing")
			}
			if err != nil {
				report.Problems = append(report.Problems, Problem{
					ID: f.ID, Path: f.Path, Commit: c.ID, Err: err,
				})
			}
		}
	}

	r.Logger.Info("verified repository",
		zap.Int("objects", report.Objects),
		zap.Int("commits", report.Commits),
		zap.Int("problems", len(report.Problems)))

	return report, nil
}
