// Package clock implements the logical clocks used to order events across a
// fixed set of processes: vector clocks, matrix clocks and the scalar clocks
// that carry snapshot markers.
package clock

import "fmt"

// Clock is a logical clock value of kind C. Values are immutable: Extend and
// Merge return new values and never modify their receivers.
type Clock[C any] interface {
	// Extend returns the clock after a purely local step. The result always
	// strictly follows the receiver.
	Extend() C
	// Merge returns the clock after receiving other. The result strictly
	// follows both the receiver and other.
	Merge(other C) C
	Compare(other C) CompareResult
}

// Genesis constructs the initial clock of process pid in a cluster of n.
type Genesis[C any] func(pid, n int) C

type CompareResult int

const (
	NoRelation CompareResult = iota
	Less
	Equal
	Greater
)

func (r CompareResult) String() string {
	switch r {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return "NoRelation"
	}
}

// DimensionMismatch is the panic value raised when two clocks built for
// clusters of different sizes are compared or merged.
type DimensionMismatch struct {
	Want, Got int
}

func (e DimensionMismatch) Error() string {
	return fmt.Sprintf("clock dimension mismatch: %d processes vs %d", e.Want, e.Got)
}

// Before reports whether a happened-before b.
func Before[C Clock[C]](a, b C) bool {
	return a.Compare(b) == Less
}

// Concurrent reports whether a and b are causally incomparable.
func Concurrent[C Clock[C]](a, b C) bool {
	return a.Compare(b) == NoRelation
}

func mustMatch(want, got int) {
	if want != got {
		panic(DimensionMismatch{Want: want, Got: got})
	}
}

func mustOwn(pid, n int) {
	if pid < 0 || pid >= n {
		panic(fmt.Sprintf("clock: process %d out of range for %d processes", pid, n))
	}
}

// compareCounts determines whether the counters are all pairwise equal, less
// than or equal, or greater than or equal in one pass.
func compareCounts(a, b []uint64) CompareResult {
	equal := true
	lessEqual := true
	greaterEqual := true
	for i := range a {
		if a[i] != b[i] {
			equal = false
		}
		if a[i] > b[i] {
			lessEqual = false
		}
		if a[i] < b[i] {
			greaterEqual = false
		}
	}

	switch {
	case equal:
		return Equal
	case lessEqual:
		return Less
	case greaterEqual:
		return Greater
	}
	return NoRelation
}
