package diff

import (
	"github.com/zeebo/xxh3"
)

// interner maps lines to small integers so the edit search compares ints.
// Lines are bucketed by their xxh3 hash and compared exactly within a bucket.
type interner struct {
	buckets map[uint64][]int
	lines   []string
}

func newInterner(capacity int) *interner {
	return &interner{
		buckets: make(map[uint64][]int, capacity),
		lines:   make([]string, 0, capacity),
	}
}

func (in *interner) id(line string) int {
	h := xxh3.HashString(line)
	for _, id := range in.buckets[h] {
		if in.lines[id] == line {
			return id
		}
	}
	id := len(in.lines)
	in.lines = append(in.lines, line)
	in.buckets[h] = append(in.buckets[h], id)
	return id
}

func (in *interner) intern(lines []string) []int {
	ids := make([]int, len(lines))
	for i, line := range lines {
		ids[i] = in.id(line)
	}
	return ids
}

// shortestEdit returns a minimal edit script turning a into b, one op per
// step: Unchanged consumes one element of each, Removed one of a, Added one
// of b. It is the greedy forward search from Myers' "An O(ND) Difference
// Algorithm", keeping each round's frontier for the backtrack.
func shortestEdit(a, b []int) []Op {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return repeat(Added, m)
	case m == 0:
		return repeat(Removed, n)
	}

	limit := n + m
	offset := limit + 1
	v := make([]int, 2*limit+3)
	// trace[d] holds the frontier before round d, for diagonals -d-1..d+1.
	var trace [][]int

search:
	for d := 0; d <= limit; d++ {
		trace = append(trace, append([]int(nil), v[offset-d-1:offset+d+2]...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	ops := make([]Op, 0, n+m)
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		frontier := trace[d]
		at := func(k int) int { return frontier[k+d+1] }
		k := x - y

		var prevK int
		if k == -d || (k != d && at(k-1) < at(k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := at(prevK)
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			ops = append(ops, Unchanged)
			x--
			y--
		}
		if d > 0 {
			if x == prevX {
				ops = append(ops, Added)
			} else {
				ops = append(ops, Removed)
			}
		}
		x, y = prevX, prevY
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

func repeat(op Op, n int) []Op {
	ops := make([]Op, n)
	for i := range ops {
		ops[i] = op
	}
	return ops
}
