package diff

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Line is a single line of a hunk with its 1-based positions. OldNum is 0
// for added lines and NewNum is 0 for removed ones.
type Line struct {
	Op      Op
	Content string
	OldNum  int
	NewNum  int
}

// Hunk represents a continuous section of changes with surrounding context
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result contains the complete diff information
type Result struct {
	Segments []Segment
	Hunks    []Hunk
	Stats    Stats
}

// Engine provides diffing capabilities
type Engine struct {
	contextLines int
}

// NewEngine creates a new diff engine with specified context lines
func NewEngine(contextLines int) *Engine {
	if contextLines < 0 {
		contextLines = 0
	}
	return &Engine{
		contextLines: contextLines,
	}
}

// Diff computes segments, hunks and stats between two contents.
func (e *Engine) Diff(oldContent, newContent []byte) *Result {
	return e.Result(Compute(string(oldContent), string(newContent)))
}

// Result builds hunks and stats for already computed segments.
func (e *Engine) Result(segs []Segment) *Result {
	return &Result{
		Segments: segs,
		Hunks:    BuildHunks(segs, e.contextLines),
		Stats:    Summarize(segs),
	}
}

// BuildHunks groups changed lines into hunks carrying up to context
// unchanged lines on each side. Hunks whose context would touch are merged.
func BuildHunks(segs []Segment, context int) []Hunk {
	lines := flatten(segs)

	var changed []int
	for i, l := range lines {
		if l.Op != Unchanged {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(0, changed[0]-context)
	end := min(len(lines), changed[0]+context+1)
	for _, c := range changed[1:] {
		if c-context <= end {
			end = min(len(lines), c+context+1)
			continue
		}
		hunks = append(hunks, makeHunk(lines, start, end))
		start = max(0, c-context)
		end = min(len(lines), c+context+1)
	}
	hunks = append(hunks, makeHunk(lines, start, end))

	return hunks
}

func flatten(segs []Segment) []Line {
	var lines []Line
	oldNum, newNum := 0, 0
	for _, s := range segs {
		for _, content := range s.Lines {
			l := Line{Op: s.Op, Content: content}
			switch s.Op {
			case Unchanged:
				oldNum++
				newNum++
				l.OldNum, l.NewNum = oldNum, newNum
			case Removed:
				oldNum++
				l.OldNum = oldNum
			case Added:
				newNum++
				l.NewNum = newNum
			}
			lines = append(lines, l)
		}
	}
	return lines
}

func makeHunk(lines []Line, start, end int) Hunk {
	h := Hunk{Lines: append([]Line(nil), lines[start:end]...)}

	// Positions of the line just before the hunk on each side.
	oldBefore, newBefore := 0, 0
	for _, l := range lines[:start] {
		if l.OldNum > 0 {
			oldBefore = l.OldNum
		}
		if l.NewNum > 0 {
			newBefore = l.NewNum
		}
	}

	for _, l := range h.Lines {
		if l.Op != Added {
			h.OldLines++
		}
		if l.Op != Removed {
			h.NewLines++
		}
	}

	// Unified format points an empty side at the line before it.
	h.OldStart = oldBefore
	if h.OldLines > 0 {
		h.OldStart++
	}
	h.NewStart = newBefore
	if h.NewLines > 0 {
		h.NewStart++
	}
	return h
}

// NoNewline marks a line that ends without a terminator.
const NoNewline = `\ No newline at end of file`

// Style decorates rendered lines, e.g. with terminal colors. Nil fields
// leave the text as is.
type Style struct {
	Header    func(string) string
	Added     func(string) string
	Removed   func(string) string
	Unchanged func(string) string
}

func apply(f func(string) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// Render writes the hunks in unified diff notation. Style functions see
// each line without its terminator.
func (r *Result) Render(w io.Writer, style Style) error {
	var err error
	writeLine := func(s string) {
		if err == nil {
			_, err = io.WriteString(w, s+"\n")
		}
	}

	for _, hunk := range r.Hunks {
		writeLine(apply(style.Header, fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			hunk.OldStart, hunk.OldLines,
			hunk.NewStart, hunk.NewLines)))

		for _, line := range hunk.Lines {
			text := strings.TrimSuffix(line.Content, "\n")
			switch line.Op {
			case Added:
				writeLine(apply(style.Added, "+"+text))
			case Removed:
				writeLine(apply(style.Removed, "-"+text))
			default:
				writeLine(apply(style.Unchanged, " "+text))
			}
			if !strings.HasSuffix(line.Content, "\n") {
				writeLine(NoNewline)
			}
		}
	}

	return err
}

// Format returns the hunks in unified diff notation.
func (r *Result) Format() string {
	var buf bytes.Buffer
	r.Render(&buf, Style{})
	return buf.String()
}
