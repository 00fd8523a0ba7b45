package clock

import (
	"strconv"
	"strings"
)

// Vector is a vector clock owned by process Pid. Counts[Pid] is the owner's
// own event counter; every other component is the latest counter of that
// process the owner has heard of.
type Vector struct {
	Pid    int      `json:"pid"`
	Counts []uint64 `json:"v"`
}

// NewVector returns the genesis vector clock of pid: one at its own index and
// zero elsewhere, so two genesis clocks of different processes never compare
// equal.
func NewVector(pid, n int) Vector {
	mustOwn(pid, n)
	v := Vector{Pid: pid, Counts: make([]uint64, n)}
	v.Counts[pid] = 1
	return v
}

func (v Vector) Len() int {
	return len(v.Counts)
}

func (v Vector) Copy() Vector {
	c := Vector{Pid: v.Pid, Counts: make([]uint64, len(v.Counts))}
	copy(c.Counts, v.Counts)
	return c
}

func (v Vector) Extend() Vector {
	e := v.Copy()
	e.Counts[e.Pid]++
	return e
}

// Merge takes the component-wise maximum of v and other, then counts the
// receive as an event of v's owner.
func (v Vector) Merge(other Vector) Vector {
	mustMatch(len(v.Counts), len(other.Counts))
	e := v.Copy()
	for i, c := range other.Counts {
		if c > e.Counts[i] {
			e.Counts[i] = c
		}
	}
	e.Counts[e.Pid]++
	return e
}

func (v Vector) Compare(other Vector) CompareResult {
	mustMatch(len(v.Counts), len(other.Counts))
	return compareCounts(v.Counts, other.Counts)
}

// LessEqual reports whether every component of v is at most the matching
// component of other.
func (v Vector) LessEqual(other Vector) bool {
	r := v.Compare(other)
	return r == Less || r == Equal
}

func (v Vector) Before(other Vector) bool {
	return v.Compare(other) == Less
}

func (v Vector) After(other Vector) bool {
	return v.Compare(other) == Greater
}

func (v Vector) Concurrent(other Vector) bool {
	return v.Compare(other) == NoRelation
}

func (v Vector) String() string {
	parts := make([]string, len(v.Counts))
	for i, c := range v.Counts {
		parts[i] = strconv.FormatUint(c, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
