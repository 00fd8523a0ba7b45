// Package process records the event history of one participant as a sequence
// of logical clock values. Local steps, sends and receives are built purely on
// the clock.Clock contract, so the same Process serves every clock kind.
//
// A Process is owned by one goroutine. Callers must serialize Exec, Send and
// Recv on the same Process.
package process

import "github.com/spencer-p/ordering/pkg/clock"

type Process[C clock.Clock[C]] struct {
	pid, n  int
	genesis clock.Genesis[C]

	// events[0] has sequence number base. Only a prefix is ever discarded.
	events []C
	base   int

	// last survives even when every event has been discarded.
	last    C
	started bool
}

// New constructs the process pid of a cluster of n processes.
func New[C clock.Clock[C]](pid, n int, genesis clock.Genesis[C]) *Process[C] {
	return &Process[C]{
		pid:     pid,
		n:       n,
		genesis: genesis,
	}
}

// NewVector constructs a process stamping its events with vector clocks.
func NewVector(pid, n int) *Process[clock.Vector] {
	return New(pid, n, clock.NewVector)
}

func (p *Process[C]) Pid() int {
	return p.pid
}

func (p *Process[C]) N() int {
	return p.n
}

// Last returns the most recently recorded clock, or a fresh genesis clock if
// nothing has been recorded yet.
func (p *Process[C]) Last() C {
	if !p.started {
		return p.genesis(p.pid, p.n)
	}
	return p.last
}

// Exec records a local step, then performs work.
func (p *Process[C]) Exec(work func()) {
	p.push(p.Last().Extend())
	if work != nil {
		work()
	}
}

// Send records a send event and hands exactly the recorded value to transmit.
// A transmit failure is returned unchanged; the event stays recorded.
func (p *Process[C]) Send(transmit func(C) error) error {
	e := p.Last().Extend()
	p.push(e)
	return transmit(e)
}

// Recv blocks in receive for a value and records its merge with the last
// clock. If receive fails, its error is returned and nothing is recorded.
func (p *Process[C]) Recv(receive func() (C, error)) error {
	v, err := receive()
	if err != nil {
		return err
	}
	p.push(p.Last().Merge(v))
	return nil
}

// History returns the retained events in order.
func (p *Process[C]) History() []C {
	h := make([]C, len(p.events))
	copy(h, p.events)
	return h
}

// Len returns the number of retained events.
func (p *Process[C]) Len() int {
	return len(p.events)
}

// Base returns the sequence number of the oldest retained event.
func (p *Process[C]) Base() int {
	return p.base
}

// Seq returns the sequence number the next event will get, which is also the
// number of events ever recorded.
func (p *Process[C]) Seq() int {
	return p.base + len(p.events)
}

// At returns the event with sequence number seq if it is still retained.
func (p *Process[C]) At(seq int) (e C, ok bool) {
	i := seq - p.base
	if i < 0 || i >= len(p.events) {
		return e, false
	}
	return p.events[i], true
}

// PrefixLen returns how many of the oldest retained events satisfy pred,
// stopping at the first that does not.
func (p *Process[C]) PrefixLen(pred func(C) bool) int {
	k := 0
	for k < len(p.events) && pred(p.events[k]) {
		k++
	}
	return k
}

// Discard drops the k oldest retained events and returns them. The retained
// suffix keeps its sequence numbers.
func (p *Process[C]) Discard(k int) []C {
	if k <= 0 {
		return nil
	}
	if k > len(p.events) {
		k = len(p.events)
	}
	drained := make([]C, k)
	copy(drained, p.events[:k])

	// Clear the drained slots so their clocks can be reclaimed before the
	// backing array is next reallocated.
	var zero C
	for i := 0; i < k; i++ {
		p.events[i] = zero
	}
	p.events = p.events[k:]
	p.base += k
	return drained
}

func (p *Process[C]) push(e C) {
	p.events = append(p.events, e)
	p.last = e
	p.started = true
}
