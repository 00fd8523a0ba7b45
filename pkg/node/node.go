// Package node runs one process of a cluster. A single goroutine owns the
// process; inbound clocks and API calls are both turned into commands for it,
// so the process is never touched concurrently.
package node

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spencer-p/ordering/pkg/channel"
	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/metrics"
	"github.com/spencer-p/ordering/pkg/snapshot"

	logs "github.com/danmuck/smplog"
)

var (
	ErrStopped     = errors.New("Node is stopped")
	ErrBadPeer     = errors.New("Peer is not in the cluster")
	ErrUnsupported = errors.New("Operation is not supported by this clock")
)

// Host is the process a node runs.
type Host[C any] interface {
	Pid() int
	N() int
	Last() C
	Exec(work func())
	Send(transmit func(C) error) error
	Recv(receive func() (C, error)) error
	History() []C
	Len() int
	Base() int
	Seq() int
}

// Link is the node's end of the channels to its peers.
type Link[C any] interface {
	Send(to int, v C) error
	Broadcast(v C) error
	Receive() (C, error)
	Close() error
}

// Collector is implemented by hosts that garbage collect their history.
type Collector[C any] interface {
	GC() []C
	Collected() int
}

// Snapshotter is implemented by hosts that take part in snapshots.
type Snapshotter interface {
	GlobalSnapshot(broadcast func(clock.Marker) error) (clock.SnapshotID, error)
	Records() []snapshot.Record
}

type Node[C any] struct {
	host Host[C]
	link Link[C]

	cmds chan func()
	done chan struct{}
	stop sync.Once
	wg   sync.WaitGroup
}

func New[C any](host Host[C], link Link[C]) *Node[C] {
	return &Node[C]{
		host: host,
		link: link,
		cmds: make(chan func()),
		done: make(chan struct{}),
	}
}

// Start launches the owner and receiver goroutines.
func (n *Node[C]) Start() {
	logs.Infof("node %d of %d: starting", n.host.Pid(), n.host.N())
	n.wg.Add(2)
	go n.own()
	go n.receive()
}

// Stop closes the link and waits for the node's goroutines to exit.
func (n *Node[C]) Stop() error {
	var err error
	n.stop.Do(func() {
		logs.Infof("node %d: stopping", n.host.Pid())
		close(n.done)
		err = n.link.Close()
		n.wg.Wait()
	})
	return err
}

func (n *Node[C]) Pid() int {
	return n.host.Pid()
}

func (n *Node[C]) Exec() (Event, error) {
	var e Event
	err := n.do(func() error {
		n.host.Exec(nil)
		e = n.last()
		return nil
	})
	if err == nil {
		metrics.Events.WithLabelValues(metrics.Exec).Inc()
	}
	return e, err
}

// Send records a send event and transmits it to peer to. The event is
// recorded even if the transmission fails.
func (n *Node[C]) Send(to int) (Event, error) {
	if to < 0 || to >= n.host.N() || to == n.host.Pid() {
		return Event{}, fmt.Errorf("%w: %d", ErrBadPeer, to)
	}

	var e Event
	err := n.do(func() error {
		err := n.host.Send(func(v C) error {
			return n.link.Send(to, v)
		})
		e = n.last()
		return err
	})
	if errors.Is(err, ErrStopped) {
		return e, err
	}
	metrics.Events.WithLabelValues(metrics.Send).Inc()
	if err != nil {
		metrics.ChannelErrors.WithLabelValues(metrics.Send).Inc()
	}
	return e, err
}

func (n *Node[C]) History() (History, error) {
	var h History
	err := n.do(func() error {
		events := n.host.History()
		h.Base = n.host.Base()
		h.Events = make([]string, len(events))
		for i, e := range events {
			h.Events[i] = fmt.Sprint(e)
		}
		return nil
	})
	return h, err
}

// GC collects the host's history if it supports it.
func (n *Node[C]) GC() (Collection, error) {
	c, ok := any(n.host).(Collector[C])
	if !ok {
		return Collection{}, ErrUnsupported
	}

	var res Collection
	err := n.do(func() error {
		res.Drained = len(c.GC())
		res.Collected = c.Collected()
		res.Retained = n.host.Len()
		res.Base = n.host.Base()
		return nil
	})
	if err == nil {
		metrics.Collected.Add(float64(res.Drained))
	}
	return res, err
}

// Snapshot initiates a global snapshot from this node.
func (n *Node[C]) Snapshot() (clock.SnapshotID, error) {
	s, ok := any(n.host).(Snapshotter)
	if !ok {
		return clock.SnapshotID{}, ErrUnsupported
	}

	var id clock.SnapshotID
	err := n.do(func() error {
		var err error
		id, err = s.GlobalSnapshot(nil)
		return err
	})
	if err == nil {
		metrics.Snapshots.Inc()
	}
	return id, err
}

// Records returns the snapshot records this node holds.
func (n *Node[C]) Records() ([]snapshot.Record, error) {
	s, ok := any(n.host).(Snapshotter)
	if !ok {
		return nil, ErrUnsupported
	}

	var rs []snapshot.Record
	err := n.do(func() error {
		rs = s.Records()
		return nil
	})
	return rs, err
}

// do runs f on the owner goroutine and waits for its result.
func (n *Node[C]) do(f func() error) error {
	errc := make(chan error, 1)
	select {
	case n.cmds <- func() { errc <- f() }:
	case <-n.done:
		return ErrStopped
	}
	return <-errc
}

func (n *Node[C]) last() Event {
	return Event{Seq: n.host.Seq() - 1, Clock: fmt.Sprint(n.host.Last())}
}

func (n *Node[C]) own() {
	defer n.wg.Done()
	for {
		select {
		case f := <-n.cmds:
			f()
			metrics.Retained.Set(float64(n.host.Len()))
		case <-n.done:
			return
		}
	}
}

// receive hands every inbound clock to the owner in arrival order.
func (n *Node[C]) receive() {
	defer n.wg.Done()
	for {
		v, err := n.link.Receive()
		if err != nil {
			if !errors.Is(err, channel.ErrClosed) {
				metrics.ChannelErrors.WithLabelValues(metrics.Recv).Inc()
				logs.Warnf("node %d: receive failed: %v", n.host.Pid(), err)
			}
			return
		}

		err = n.do(func() error {
			return n.host.Recv(func() (C, error) {
				return v, nil
			})
		})
		if errors.Is(err, ErrStopped) {
			return
		} else if err != nil {
			metrics.ChannelErrors.WithLabelValues(metrics.Recv).Inc()
			logs.Warnf("node %d: handling %v failed: %v", n.host.Pid(), v, err)
		}
		metrics.Events.WithLabelValues(metrics.Recv).Inc()
	}
}
