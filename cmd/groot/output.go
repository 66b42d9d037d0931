package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"groot/internal/commit"
	"groot/internal/diff"
	"groot/internal/history"
	"groot/internal/repository"

	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func printCommit(w io.Writer, c *commit.Commit, oneline bool) {
	if oneline {
		date := c.Timestamp
		if t, err := c.Time(); err == nil {
			date = t.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s %s %s\n", color.YellowString(c.ID.Short()), faint(date), firstLine(c.Message))
		return
	}
	fmt.Fprintln(w, "---------------------")
	fmt.Fprintf(w, "Commit: %s\n", color.YellowString(c.ID.String()))
	fmt.Fprintf(w, "Date: %s\n\n", c.Timestamp)
	fmt.Fprintf(w, "%s\n\n", c.Message)
}

// printReport writes each file of the report followed by its diff. A
// negative unified prints whole segments; otherwise hunks with that much
// context are printed.
func printReport(w io.Writer, r *history.Report, unified int) {
	fmt.Fprintf(w, "Changes in commit %s:\n", r.Commit.ID)

	for _, f := range r.Files {
		fmt.Fprintf(w, "\n%s %s\n", bold("File:"), f.Path)
		writeTerminated(w, string(f.Content))

		switch f.Status {
		case history.Initial:
			fmt.Fprintln(w, faint("First commit"))
		case history.New:
			fmt.Fprintln(w, faint("New file in this commit"))
		case history.Changed:
			fmt.Fprintf(w, "\nDiff (%s, %s):\n",
				green(fmt.Sprintf("+%d", f.Stats.Additions)),
				red(fmt.Sprintf("-%d", f.Stats.Deletions)))
			if unified < 0 {
				printSegments(w, f.Segments)
			} else {
				printHunks(w, diff.NewEngine(unified).Result(f.Segments))
			}
		}
	}
}

func printSegments(w io.Writer, segs []diff.Segment) {
	for _, seg := range segs {
		for _, line := range seg.Lines {
			switch seg.Op {
			case diff.Added:
				writeLine(w, green, "++"+line)
			case diff.Removed:
				writeLine(w, red, "--"+line)
			default:
				writeLine(w, faint, line)
			}
		}
	}
}

// hunkStyle colors unified output the same way as full segments.
var hunkStyle = diff.Style{
	Header:  paint(color.New(color.FgCyan).SprintFunc()),
	Added:   paint(green),
	Removed: paint(red),
}

func paint(f func(a ...interface{}) string) func(string) string {
	return func(s string) string { return f(s) }
}

func printHunks(w io.Writer, r *diff.Result) {
	r.Render(w, hunkStyle)
}

func printVerify(w io.Writer, r *repository.VerifyReport) {
	fmt.Fprintf(w, "Checked %d objects and %d commits\n", r.Objects, r.Commits)
	for _, p := range r.Problems {
		switch {
		case p.Path != "":
			fmt.Fprintf(w, "%s %s (%s in commit %s): %v\n",
				red("BAD"), p.ID.Short(), p.Path, p.Commit.Short(), p.Err)
		case p.ID != "":
			fmt.Fprintf(w, "%s %s: %v\n", red("BAD"), p.ID.Short(), p.Err)
		default:
			fmt.Fprintf(w, "%s %v\n", red("BAD"), p.Err)
		}
	}
	if r.OK() {
		fmt.Fprintln(w, green("OK"))
	}
}

// writeLine paints s without its terminator so escape codes never span
// lines.
func writeLine(w io.Writer, paint func(a ...interface{}) string, s string) {
	fmt.Fprintln(w, paint(strings.TrimSuffix(s, "\n")))
}

// writeTerminated writes s and a newline unless s already ends with one.
func writeTerminated(w io.Writer, s string) {
	if strings.HasSuffix(s, "\n") {
		io.WriteString(w, s)
		return
	}
	io.WriteString(w, s+"\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
