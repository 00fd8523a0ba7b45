package snapshot

import (
	"errors"
	"fmt"

	"github.com/spencer-p/ordering/pkg/clock"
)

var (
	ErrIncomplete = errors.New("Snapshot is still recording")
	ErrMismatch   = errors.New("Records belong to different snapshots")
)

// Link names the channel from one process to another.
type Link struct {
	From, To int
}

// Global is a global snapshot: the union of every process's local history and
// every channel's in-flight messages.
type Global struct {
	ID       clock.SnapshotID
	Local    map[int][]clock.Marker
	Channels map[Link][]clock.Marker
}

// Assemble combines the records of one snapshot from every process. All
// records must be complete and share the same ID.
func Assemble(records ...Record) (Global, error) {
	if len(records) == 0 {
		return Global{}, fmt.Errorf("%w: no records", ErrIncomplete)
	}

	g := Global{
		ID:       records[0].ID,
		Local:    make(map[int][]clock.Marker, len(records)),
		Channels: make(map[Link][]clock.Marker),
	}
	for _, r := range records {
		if r.ID != g.ID {
			return Global{}, fmt.Errorf("%w: %s and %s", ErrMismatch, g.ID, r.ID)
		}
		if !r.Complete() {
			return Global{}, fmt.Errorf("%w: process %d has %d channels open", ErrIncomplete, r.Pid, r.Pending)
		}
		g.Local[r.Pid] = r.Local
		for from, msgs := range r.Channels {
			g.Channels[Link{From: from, To: r.Pid}] = msgs
		}
	}
	return g, nil
}

// InFlight returns the total number of messages recorded on channels.
func (g Global) InFlight() int {
	total := 0
	for _, msgs := range g.Channels {
		total += len(msgs)
	}
	return total
}

// Cut is the length of the history prefix each process contributes.
func (g Global) Cut() Cut {
	c := make(Cut, len(g.Local))
	for pid, local := range g.Local {
		c[pid] = len(local)
	}
	return c
}

// Cut maps each process to the length of its history prefix. Consistent cuts
// are closed under union and intersection, so snapshots started concurrently
// can be combined either way; which one an application wants is its call.
type Cut map[int]int

// Union takes, per process, the longest prefix.
func Union(cuts ...Cut) Cut {
	return combine(cuts, func(a, b int) bool { return b > a })
}

// Intersect takes, per process, the shortest prefix. Processes missing from
// any cut are left out.
func Intersect(cuts ...Cut) Cut {
	out := combine(cuts, func(a, b int) bool { return b < a })
	for pid := range out {
		for _, c := range cuts {
			if _, ok := c[pid]; !ok {
				delete(out, pid)
				break
			}
		}
	}
	return out
}

func combine(cuts []Cut, better func(a, b int) bool) Cut {
	out := make(Cut)
	for _, c := range cuts {
		for pid, n := range c {
			if cur, ok := out[pid]; !ok || better(cur, n) {
				out[pid] = n
			}
		}
	}
	return out
}
