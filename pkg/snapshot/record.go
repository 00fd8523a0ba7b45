package snapshot

import (
	"github.com/spencer-p/ordering/pkg/clock"
)

// State is the progress of one process through one snapshot.
type State int

const (
	Idle State = iota
	Recording
	Complete
)

func (s State) String() string {
	switch s {
	case Recording:
		return "Recording"
	case Complete:
		return "Complete"
	default:
		return "Idle"
	}
}

// Record is one process's contribution to the snapshot ID: its history up to
// the moment it recorded, and the messages found in flight on each incoming
// channel, keyed by the sending process.
type Record struct {
	ID       clock.SnapshotID       `json:"id"`
	Pid      int                    `json:"pid"`
	Local    []clock.Marker         `json:"local"`
	Channels map[int][]clock.Marker `json:"channels"`
	// Pending counts incoming channels still recording.
	Pending int `json:"pending"`
}

// Length is the number of local events included in the snapshot.
func (r Record) Length() int {
	return len(r.Local)
}

func (r Record) State() State {
	if r.Pending == 0 {
		return Complete
	}
	return Recording
}

func (r Record) Complete() bool {
	return r.Pending == 0
}

// record is the mutable bookkeeping behind a Record. Once every channel has
// closed it never changes again.
type record struct {
	Record
	open map[int]bool
}

func newRecord(id clock.SnapshotID, pid, n int, local []clock.Marker, from int) *record {
	r := &record{
		Record: Record{
			ID:       id,
			Pid:      pid,
			Local:    local,
			Channels: make(map[int][]clock.Marker),
		},
		open: make(map[int]bool),
	}
	for q := 0; q < n; q++ {
		if q == pid || q == from {
			continue
		}
		r.open[q] = true
		r.Channels[q] = nil
	}
	r.Pending = len(r.open)
	return r
}

// capture appends m to the state of its channel if that channel is open.
func (r *record) capture(m clock.Marker) bool {
	if !r.open[m.Pid] {
		return false
	}
	r.Channels[m.Pid] = append(r.Channels[m.Pid], m)
	return true
}

// close stops recording the channel from process from. It reports whether the
// channel was open.
func (r *record) close(from int) bool {
	if !r.open[from] {
		return false
	}
	delete(r.open, from)
	r.Pending--
	return true
}

// view returns a copy of the record that shares nothing mutable with r.
func (r *record) view() Record {
	v := r.Record
	v.Local = append([]clock.Marker(nil), r.Local...)
	v.Channels = make(map[int][]clock.Marker, len(r.Channels))
	for q, msgs := range r.Channels {
		v.Channels[q] = append([]clock.Marker{}, msgs...)
	}
	return v
}
