package clock

import "strings"

// Matrix is a matrix clock owned by process Pid. Rows[r][c] is what the owner
// believes process r has observed of process c's counter. Row Pid is the
// owner's own vector clock.
type Matrix struct {
	Pid  int        `json:"pid"`
	Rows [][]uint64 `json:"m"`
}

// NewMatrix returns the genesis matrix clock of pid. Its own row is the
// vector genesis; it knows nothing yet about what anyone else has seen.
func NewMatrix(pid, n int) Matrix {
	mustOwn(pid, n)
	m := Matrix{Pid: pid, Rows: make([][]uint64, n)}
	for r := range m.Rows {
		m.Rows[r] = make([]uint64, n)
	}
	m.Rows[pid][pid] = 1
	return m
}

func (m Matrix) Len() int {
	return len(m.Rows)
}

func (m Matrix) Copy() Matrix {
	c := Matrix{Pid: m.Pid, Rows: make([][]uint64, len(m.Rows))}
	for r, row := range m.Rows {
		c.Rows[r] = make([]uint64, len(row))
		copy(c.Rows[r], row)
	}
	return c
}

// At returns the owner's belief of what process r has seen of process c.
func (m Matrix) At(r, c int) uint64 {
	return m.Rows[r][c]
}

// Vector projects the owner's row as a vector clock.
func (m Matrix) Vector() Vector {
	v := Vector{Pid: m.Pid, Counts: make([]uint64, len(m.Rows))}
	copy(v.Counts, m.Rows[m.Pid])
	return v
}

func (m Matrix) Extend() Matrix {
	e := m.Copy()
	e.Rows[e.Pid][e.Pid]++
	return e
}

// Merge assimilates everything other knows. After the element-wise maximum,
// the owner's row is raised to the column-wise maximum of every row: whatever
// anyone is known to have seen, the owner has now seen transitively.
func (m Matrix) Merge(other Matrix) Matrix {
	mustMatch(len(m.Rows), len(other.Rows))
	e := m.Copy()
	for r, row := range other.Rows {
		for c, x := range row {
			if x > e.Rows[r][c] {
				e.Rows[r][c] = x
			}
		}
	}

	own := e.Rows[e.Pid]
	for _, row := range e.Rows {
		for c, x := range row {
			if x > own[c] {
				own[c] = x
			}
		}
	}
	own[e.Pid]++
	return e
}

// Compare orders matrices element-wise over every entry.
func (m Matrix) Compare(other Matrix) CompareResult {
	mustMatch(len(m.Rows), len(other.Rows))
	result := Equal
	for r := range m.Rows {
		switch compareCounts(m.Rows[r], other.Rows[r]) {
		case NoRelation:
			return NoRelation
		case Less:
			if result == Greater {
				return NoRelation
			}
			result = Less
		case Greater:
			if result == Less {
				return NoRelation
			}
			result = Greater
		}
	}
	return result
}

// Collectable reports whether the event stamped m has been observed, directly
// or transitively, by every process according to latest. latest must be a
// later clock of the same owner.
//
// Knowledge is never forgotten, so along one history this predicate holds for
// a prefix: once it holds for an event it holds for every earlier one.
func (m Matrix) Collectable(latest Matrix) bool {
	mustMatch(len(m.Rows), len(latest.Rows))
	seq := m.Rows[m.Pid][m.Pid]
	for _, row := range latest.Rows {
		if row[m.Pid] < seq {
			return false
		}
	}
	return true
}

func (m Matrix) String() string {
	rows := make([]string, len(m.Rows))
	for r, row := range m.Rows {
		rows[r] = Vector{Counts: row}.String()
	}
	return "[" + strings.Join(rows, " ") + "]"
}
