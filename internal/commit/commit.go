// internal/commit/commit.go
package commit

import (
	"encoding/json"
	"fmt"
	"time"

	"groot/internal/object"
	"groot/internal/staging"
)

// FormatVersion is the commit record version this build writes and the
// newest one it reads.
const FormatVersion = 1

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Commit is an immutable snapshot of the staged files. ID is the object
// identifier of the encoded record, so it is not part of the encoding.
type Commit struct {
	ID        object.ID       `json:"-"`
	Timestamp string          `json:"timestamp"`
	Message   string          `json:"message"`
	Files     []staging.Entry `json:"files"`
	Parent    *object.ID      `json:"parent"`
}

// IsRoot reports whether c has no parent.
func (c *Commit) IsRoot() bool {
	return c.Parent == nil
}

// Time parses the commit timestamp.
func (c *Commit) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.Timestamp)
}

// File returns the first entry for path. Later duplicates are ignored.
func (c *Commit) File(path string) (staging.Entry, bool) {
	for _, f := range c.Files {
		if f.Path == path {
			return f, true
		}
	}
	return staging.Entry{}, false
}

type record struct {
	Version   int             `json:"version"`
	Timestamp string          `json:"timestamp"`
	Message   string          `json:"message"`
	Files     []staging.Entry `json:"files"`
	Parent    *object.ID      `json:"parent"`
}

// Encode produces the canonical serialized form of c. The field set and
// order are fixed; the same commit always encodes to the same bytes.
func Encode(c *Commit) ([]byte, error) {
	files := c.Files
	if files == nil {
		files = []staging.Entry{}
	}
	data, err := json.Marshal(record{
		Version:   FormatVersion,
		Timestamp: c.Timestamp,
		Message:   c.Message,
		Files:     files,
		Parent:    c.Parent,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding commit: %w", err)
	}
	return data, nil
}

type wireRecord struct {
	Version   *int             `json:"version"`
	Timestamp *string          `json:"timestamp"`
	Message   *string          `json:"message"`
	Files     *[]staging.Entry `json:"files"`
	Parent    *string          `json:"parent"`
}

// Decode parses a serialized commit. Unknown fields are ignored; missing
// required fields, newer versions and malformed identifiers are errors.
func Decode(data []byte) (*Commit, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding commit: %w", err)
	}

	switch {
	case w.Version == nil:
		return nil, fmt.Errorf("decoding commit: missing version")
	case *w.Version < 1 || *w.Version > FormatVersion:
		return nil, fmt.Errorf("decoding commit: unsupported version %d", *w.Version)
	case w.Timestamp == nil || *w.Timestamp == "":
		return nil, fmt.Errorf("decoding commit: missing timestamp")
	case w.Message == nil:
		return nil, fmt.Errorf("decoding commit: missing message")
	case w.Files == nil:
		return nil, fmt.Errorf("decoding commit: missing files")
	}

	if _, err := time.Parse(time.RFC3339Nano, *w.Timestamp); err != nil {
		return nil, fmt.Errorf("decoding commit: bad timestamp: %w", err)
	}

	c := &Commit{
		Timestamp: *w.Timestamp,
		Message:   *w.Message,
		Files:     *w.Files,
	}
	for i, f := range c.Files {
		if f.Path == "" {
			return nil, fmt.Errorf("decoding commit: file %d has no path", i)
		}
		if _, err := object.Parse(f.ID.String()); err != nil {
			return nil, fmt.Errorf("decoding commit: file %s: %w", f.Path, err)
		}
	}
	if w.Parent != nil {
		parent, err := object.Parse(*w.Parent)
		if err != nil {
			return nil, fmt.Errorf("decoding commit: parent: %w", err)
		}
		c.Parent = &parent
	}

	return c, nil
}
