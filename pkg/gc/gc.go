// Package gc discards the part of a process's history that every process has
// already observed, using matrix clocks to know who has seen what.
package gc

import (
	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/process"

	logs "github.com/danmuck/smplog"
)

// Process is a process stamping its events with matrix clocks.
type Process struct {
	*process.Process[clock.Matrix]
	collected int
}

func New(pid, n int) *Process {
	return &Process{
		Process: process.New(pid, n, clock.NewMatrix),
	}
}

// GC drains and returns the longest prefix of the history that every process
// is known, directly or transitively, to have observed. It only reads the
// latest clock and never reorders what it keeps; when nothing qualifies it
// returns an empty slice.
func (p *Process) GC() []clock.Matrix {
	if p.Len() == 0 {
		return nil
	}
	latest := p.Last()

	// The predicate holds for a prefix of the history, so the boundary is the
	// first event it rejects.
	k := p.PrefixLen(func(e clock.Matrix) bool {
		return e.Collectable(latest)
	})
	if k == 0 {
		return nil
	}

	drained := p.Discard(k)
	p.collected += k
	logs.Debugf("gc(%d): drained %d events, %d retained from seq %d", p.Pid(), k, p.Len(), p.Base())
	return drained
}

// Collected returns the number of events discarded so far.
func (p *Process) Collected() int {
	return p.collected
}

// Retained returns the events still held, oldest first.
func (p *Process) Retained() []clock.Matrix {
	return p.History()
}
