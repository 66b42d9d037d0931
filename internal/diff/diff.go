// internal/diff/diff.go
package diff

import (
	"strings"
)

// Op tags a segment of a line diff.
type Op int

const (
	Unchanged Op = iota
	Added
	Removed
)

func (o Op) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Segment is a run of consecutive lines sharing one Op. Each line keeps its
// terminator, so joining Lines gives back the exact text.
type Segment struct {
	Op    Op
	Lines []string
}

// Text returns the segment's lines joined.
func (s Segment) Text() string {
	return strings.Join(s.Lines, "")
}

// Stats counts changed lines.
type Stats struct {
	Additions int
	Deletions int
	Changes   int
}

// Lines splits text after every '\n'. A final line without a terminator is
// kept as its own line; empty text has no lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Compute diffs two texts line by line. The result satisfies
// Old(segs) == oldText and New(segs) == newText, and uses a minimal number
// of added plus removed lines. Within a block of changes the removed
// segment comes before the added one.
func Compute(oldText, newText string) []Segment {
	a, b := Lines(oldText), Lines(newText)

	in := newInterner(len(a) + len(b))
	ai, bi := in.intern(a), in.intern(b)

	// Trim the common prefix and suffix before running the O(ND) search.
	pre := 0
	for pre < len(ai) && pre < len(bi) && ai[pre] == bi[pre] {
		pre++
	}
	suf := 0
	for suf < len(ai)-pre && suf < len(bi)-pre && ai[len(ai)-1-suf] == bi[len(bi)-1-suf] {
		suf++
	}

	var g grouper
	for _, line := range a[:pre] {
		g.add(Unchanged, line)
	}

	x, y := pre, pre
	for _, op := range shortestEdit(ai[pre:len(ai)-suf], bi[pre:len(bi)-suf]) {
		switch op {
		case Unchanged:
			g.add(Unchanged, a[x])
			x++
			y++
		case Removed:
			g.add(Removed, a[x])
			x++
		case Added:
			g.add(Added, b[y])
			y++
		}
	}

	for _, line := range a[len(a)-suf:] {
		g.add(Unchanged, line)
	}
	return g.finish()
}

// Old reassembles the old text from unchanged and removed segments.
func Old(segs []Segment) string {
	return join(segs, Removed)
}

// New reassembles the new text from unchanged and added segments.
func New(segs []Segment) string {
	return join(segs, Added)
}

func join(segs []Segment, side Op) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Op == Unchanged || s.Op == side {
			for _, line := range s.Lines {
				b.WriteString(line)
			}
		}
	}
	return b.String()
}

// Summarize counts added and removed lines.
func Summarize(segs []Segment) Stats {
	var st Stats
	for _, s := range segs {
		switch s.Op {
		case Added:
			st.Additions += len(s.Lines)
		case Removed:
			st.Deletions += len(s.Lines)
		}
	}
	st.Changes = st.Additions + st.Deletions
	return st
}

// grouper merges per-line ops into segments, holding removed and added lines
// of a change block until the next unchanged line so removals come first.
type grouper struct {
	segs      []Segment
	unchanged []string
	removed   []string
	added     []string
}

func (g *grouper) add(op Op, line string) {
	switch op {
	case Unchanged:
		g.flushChanges()
		g.unchanged = append(g.unchanged, line)
	case Removed:
		g.flushUnchanged()
		g.removed = append(g.removed, line)
	case Added:
		g.flushUnchanged()
		g.added = append(g.added, line)
	}
}

func (g *grouper) flushUnchanged() {
	if len(g.unchanged) > 0 {
		g.segs = append(g.segs, Segment{Op: Unchanged, Lines: g.unchanged})
		g.unchanged = nil
	}
}

func (g *grouper) flushChanges() {
	if len(g.removed) > 0 {
		g.segs = append(g.segs, Segment{Op: Removed, Lines: g.removed})
		g.removed = nil
	}
	if len(g.added) > 0 {
		g.segs = append(g.segs, Segment{Op: Added, Lines: g.added})
		g.added = nil
	}
}

func (g *grouper) finish() []Segment {
	g.flushUnchanged()
	g.flushChanges()
	return g.segs
}
