package diff

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(from, to int) string {
	var b strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestEngineDiff(t *testing.T) {
	engine := NewEngine(1)

	res := engine.Diff([]byte("hello\n"), []byte("hello\nworld\n"))
	assert.Equal(t, Stats{Additions: 1, Deletions: 0, Changes: 1}, res.Stats)
	require.Len(t, res.Hunks, 1)
	assert.Equal(t, "@@ -1,1 +1,2 @@\n hello\n+world\n", res.Format())
}

func TestEngineNoChanges(t *testing.T) {
	res := NewEngine(3).Diff([]byte("same\n"), []byte("same\n"))
	assert.Empty(t, res.Hunks)
	assert.Equal(t, "", res.Format())
	assert.Equal(t, 0, res.Stats.Changes)
}

func TestBuildHunksSplitsDistantChanges(t *testing.T) {
	old := numbered(1, 20)
	new := strings.Replace(old, "line 2\n", "line two\n", 1)
	new = strings.Replace(new, "line 18\n", "line eighteen\n", 1)

	hunks := BuildHunks(Compute(old, new), 2)
	require.Len(t, hunks, 2)

	assert.Equal(t, 1, hunks[0].OldStart)
	assert.Equal(t, 4, hunks[0].OldLines)
	assert.Equal(t, 1, hunks[0].NewStart)
	assert.Equal(t, 4, hunks[0].NewLines)

	assert.Equal(t, 16, hunks[1].OldStart)
	assert.Equal(t, 5, hunks[1].OldLines)
	assert.Equal(t, 16, hunks[1].NewStart)
	assert.Equal(t, 5, hunks[1].NewLines)
}

func TestBuildHunksMergesNearbyChanges(t *testing.T) {
	old := numbered(1, 10)
	new := strings.Replace(old, "line 4\n", "four\n", 1)
	new = strings.Replace(new, "line 7\n", "seven\n", 1)

	hunks := BuildHunks(Compute(old, new), 1)
	require.Len(t, hunks, 1)
	assert.Equal(t, 3, hunks[0].OldStart)
	assert.Equal(t, 6, hunks[0].OldLines)
}

func TestFormatPureAdditionAndMissingNewline(t *testing.T) {
	res := NewEngine(3).Diff(nil, []byte("a\nb"))
	assert.Equal(t, "@@ -0,0 +1,2 @@\n+a\n+b\n\\ No newline at end of file\n", res.Format())

	res = NewEngine(0).Diff([]byte("a\nb\n"), []byte("a\n"))
	assert.Equal(t, "@@ -2,1 +1,0 @@\n-b\n", res.Format())
}

func TestHunkLineNumbers(t *testing.T) {
	hunks := BuildHunks(Compute("a\nb\nc\n", "a\nc\nd\n"), 3)
	require.Len(t, hunks, 1)

	assert.Equal(t, []Line{
		{Op: Unchanged, Content: "a\n", OldNum: 1, NewNum: 1},
		{Op: Removed, Content: "b\n", OldNum: 2},
		{Op: Unchanged, Content: "c\n", OldNum: 3, NewNum: 2},
		{Op: Added, Content: "d\n", NewNum: 3},
	}, hunks[0].Lines)
}

func TestRenderStyle(t *testing.T) {
	res := NewEngine(1).Result(Compute("a\nb\nc\n", "a\nx\nc"))

	tag := func(name string) func(string) string {
		return func(s string) string { return "<" + name + ">" + s }
	}
	var buf bytes.Buffer
	require.NoError(t, res.Render(&buf, Style{
		Header:  tag("h"),
		Added:   tag("a"),
		Removed: tag("r"),
	}))

	assert.Equal(t, "<h>@@ -1,3 +1,3 @@\n"+
		" a\n"+
		"<r>-b\n"+
		"<r>-c\n"+
		"<a>+x\n"+
		"<a>+c\n"+
		NoNewline+"\n", buf.String())
	assert.Equal(t, Stats{Additions: 2, Deletions: 2, Changes: 4}, res.Stats)
}
