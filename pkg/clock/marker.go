package clock

import "fmt"

// SnapshotID identifies one run of the snapshot protocol: the process that
// initiated it and that process's counter at the time.
type SnapshotID struct {
	Origin  int    `json:"origin"`
	Counter uint64 `json:"counter"`
}

func (id SnapshotID) String() string {
	return fmt.Sprintf("%d@%d", id.Origin, id.Counter)
}

// Marker is a scalar (Lamport) clock that can also travel as a snapshot
// marker. Pid is the process that produced the value, which on a FIFO channel
// is also the sending end of the channel it arrives on.
type Marker struct {
	Counter  uint64     `json:"c"`
	Pid      int        `json:"pid"`
	Snapshot bool       `json:"snapshot,omitempty"`
	ID       SnapshotID `json:"id,omitempty"`
}

// NewMarker returns the genesis scalar clock of pid. The cluster size only
// validates pid.
func NewMarker(pid, n int) Marker {
	mustOwn(pid, n)
	return Marker{Pid: pid}
}

func (m Marker) Extend() Marker {
	return Marker{Counter: m.Counter + 1, Pid: m.Pid}
}

// Merge returns max(m, other)+1 owned by m's process. The receive must follow
// the sender's value, so the sender's counter is never ignored.
func (m Marker) Merge(other Marker) Marker {
	c := m.Counter
	if other.Counter > c {
		c = other.Counter
	}
	return Marker{Counter: c + 1, Pid: m.Pid}
}

// Compare orders scalar clocks by counter. Equal counters only compare equal
// for the same process. Scalar clocks are consistent with causality but not
// faithful to it: Less does not imply happened-before.
func (m Marker) Compare(other Marker) CompareResult {
	switch {
	case m.Counter < other.Counter:
		return Less
	case m.Counter > other.Counter:
		return Greater
	case m.Pid == other.Pid:
		return Equal
	}
	return NoRelation
}

// AsMarker returns m tagged as the marker of snapshot id.
func (m Marker) AsMarker(id SnapshotID) Marker {
	m.Snapshot = true
	m.ID = id
	return m
}

func (m Marker) String() string {
	if m.Snapshot {
		return fmt.Sprintf("<%d:%d marker %s>", m.Pid, m.Counter, m.ID)
	}
	return fmt.Sprintf("<%d:%d>", m.Pid, m.Counter)
}
