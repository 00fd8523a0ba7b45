// Package snapshot implements the Chandy-Lamport protocol for recording a
// consistent global snapshot of processes connected by FIFO channels.
//
// Markers travel on the same channels as ordinary messages. A process records
// its local history the first time it sees a marker, forwards the marker on
// every outgoing channel, and records the messages that arrive on each other
// incoming channel until the marker arrives there too. Every process is
// assumed to have a channel to every other process.
package snapshot

import (
	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/process"

	logs "github.com/danmuck/smplog"
)

// Process is a process that takes part in snapshots. Recv handles markers
// transparently; everything else behaves like a process.Process.
type Process struct {
	*process.Process[clock.Marker]

	// forward sends a marker on every outgoing channel.
	forward func(clock.Marker) error
	records map[clock.SnapshotID]*record
	order   []clock.SnapshotID
}

// New constructs process pid of n. forward must deliver its argument on every
// outgoing channel; it is used to pass markers on.
func New(pid, n int, forward func(clock.Marker) error) *Process {
	return &Process{
		Process: process.New(pid, n, clock.NewMarker),
		forward: forward,
		records: make(map[clock.SnapshotID]*record),
	}
}

// GlobalSnapshot starts a snapshot from this process: it records its own
// history, then broadcasts a marker identified by its current clock. If
// broadcast is nil the forwarding function is used. Starting a snapshot with
// an identity that was already recorded does nothing.
func (p *Process) GlobalSnapshot(broadcast func(clock.Marker) error) (clock.SnapshotID, error) {
	last := p.Last()
	id := clock.SnapshotID{Origin: p.Pid(), Counter: last.Counter}
	if _, ok := p.records[id]; ok {
		return id, nil
	}

	p.start(id, -1)
	if broadcast == nil {
		broadcast = p.forward
	}
	return id, broadcast(last.AsMarker(id))
}

// Recv receives one value. Ordinary messages are recorded as channel state
// for every snapshot still recording their channel. A marker seen for the
// first time records the local state and is forwarded; a repeated marker
// closes its channel.
func (p *Process) Recv(receive func() (clock.Marker, error)) error {
	var m clock.Marker
	err := p.Process.Recv(func() (clock.Marker, error) {
		var err error
		m, err = receive()
		return m, err
	})
	if err != nil {
		return err
	}

	if !m.Snapshot {
		for _, id := range p.order {
			p.records[id].capture(m)
		}
		return nil
	}

	if r, ok := p.records[m.ID]; ok {
		if r.close(m.Pid) {
			logs.Debugf("snapshot %s at %d: channel from %d closed, %d pending", m.ID, p.Pid(), m.Pid, r.Pending)
		}
		return nil
	}

	p.start(m.ID, m.Pid)
	return p.forward(p.Last().AsMarker(m.ID))
}

// start records the local state for id and opens every incoming channel
// except the one from process from.
func (p *Process) start(id clock.SnapshotID, from int) {
	r := newRecord(id, p.Pid(), p.N(), p.History(), from)
	p.records[id] = r
	p.order = append(p.order, id)
	logs.Debugf("snapshot %s at %d: recorded %d events, %d channels pending", id, p.Pid(), r.Length(), r.Pending)
}

// Record returns this process's record of snapshot id.
func (p *Process) Record(id clock.SnapshotID) (Record, bool) {
	r, ok := p.records[id]
	if !ok {
		return Record{}, false
	}
	return r.view(), true
}

// State returns the progress of this process through snapshot id.
func (p *Process) State(id clock.SnapshotID) State {
	r, ok := p.records[id]
	if !ok {
		return Idle
	}
	return r.State()
}

// Records returns every record in the order they were started.
func (p *Process) Records() []Record {
	rs := make([]Record, len(p.order))
	for i, id := range p.order {
		rs[i] = p.records[id].view()
	}
	return rs
}

// Snapshots returns the recorded local history of every snapshot in the order
// they were started.
func (p *Process) Snapshots() [][]clock.Marker {
	s := make([][]clock.Marker, len(p.order))
	for i, id := range p.order {
		s[i] = append([]clock.Marker(nil), p.records[id].Local...)
	}
	return s
}
