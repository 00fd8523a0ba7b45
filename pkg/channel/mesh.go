package channel

import "fmt"

// Mesh connects n processes pairwise. Each process has a single inbox shared
// by all its incoming channels; since a sender appends to it in send order,
// every ordered pair still sees FIFO delivery.
type Mesh[T any] struct {
	inbox []*Queue[T]
}

func NewMesh[T any](n int) *Mesh[T] {
	m := &Mesh[T]{inbox: make([]*Queue[T], n)}
	for i := range m.inbox {
		m.inbox[i] = NewQueue[T]()
	}
	return m
}

func (m *Mesh[T]) N() int {
	return len(m.inbox)
}

// Send delivers v to process to.
func (m *Mesh[T]) Send(to int, v T) error {
	if to < 0 || to >= len(m.inbox) {
		return fmt.Errorf("no process %d in a mesh of %d", to, len(m.inbox))
	}
	return m.inbox[to].Push(v)
}

// Receive blocks until process to has a value.
func (m *Mesh[T]) Receive(to int) (T, error) {
	return m.inbox[to].Pop()
}

// Transmitter returns a function sending to every process in to.
func (m *Mesh[T]) Transmitter(to ...int) func(T) error {
	return func(v T) error {
		for _, t := range to {
			if err := m.Send(t, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Broadcaster returns a function sending to every process except from.
func (m *Mesh[T]) Broadcaster(from int) func(T) error {
	var to []int
	for i := range m.inbox {
		if i != from {
			to = append(to, i)
		}
	}
	return m.Transmitter(to...)
}

// Receiver returns a blocking receive function for process to.
func (m *Mesh[T]) Receiver(to int) func() (T, error) {
	return func() (T, error) {
		return m.Receive(to)
	}
}

// Pending returns how many values wait in the inbox of process to.
func (m *Mesh[T]) Pending(to int) int {
	return m.inbox[to].Len()
}

// Endpoint returns the view of the mesh held by process pid.
func (m *Mesh[T]) Endpoint(pid int) *Endpoint[T] {
	return &Endpoint[T]{mesh: m, pid: pid}
}

func (m *Mesh[T]) Close() {
	for _, q := range m.inbox {
		q.Close()
	}
}

// Endpoint is one process's end of a Mesh.
type Endpoint[T any] struct {
	mesh *Mesh[T]
	pid  int
}

func (e *Endpoint[T]) Send(to int, v T) error {
	return e.mesh.Send(to, v)
}

func (e *Endpoint[T]) Broadcast(v T) error {
	return e.mesh.Broadcaster(e.pid)(v)
}

func (e *Endpoint[T]) Receive() (T, error) {
	return e.mesh.Receive(e.pid)
}

// Close closes only this endpoint's inbox.
func (e *Endpoint[T]) Close() error {
	e.mesh.inbox[e.pid].Close()
	return nil
}
