// Package transport carries clock values between processes over TCP. Each
// ordered pair of processes uses one connection, so delivery between them is
// FIFO. Failures are reported to the caller and never retried: once a write to
// a peer fails, the pair is broken for good, since a new connection could
// deliver frames ahead of ones still unread on the old.
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/spencer-p/ordering/pkg/channel"
	"github.com/spencer-p/ordering/pkg/wire"

	logs "github.com/danmuck/smplog"
)

var (
	ErrBroken = errors.New("Channel is broken")
)

type TCP[C any] struct {
	pid      int
	addrs    []string
	codec    wire.Codec[C]
	listener net.Listener
	dialer   func(network, address string) (net.Conn, error)
	inbox    *channel.Queue[C]

	m       sync.Mutex
	out     map[int]*peer
	broken  map[int]error
	in      map[net.Conn]struct{}
	closed  bool
	handler sync.WaitGroup
}

// peer is an outgoing connection. Its lock keeps frames whole and in order.
type peer struct {
	m    sync.Mutex
	conn net.Conn
	w    *bufio.Writer
}

// NewTCP constructs the transport of process pid. addrs[i] is the listening
// address of process i.
func NewTCP[C any](pid int, addrs []string, codec wire.Codec[C]) *TCP[C] {
	logs.Debugf("NewTCP(%d, %v)", pid, addrs)
	return &TCP[C]{
		pid:    pid,
		addrs:  addrs,
		codec:  codec,
		dialer: net.Dial,
		inbox:  channel.NewQueue[C](),
		out:    make(map[int]*peer),
		broken: make(map[int]error),
		in:     make(map[net.Conn]struct{}),
	}
}

// ListenAndAccept listens on this process's address and accepts connections
// from peers in the background.
func (t *TCP[C]) ListenAndAccept() error {
	logs.Debugf("ListenAndAccept(%s)", t.addrs[t.pid])
	l, err := net.Listen("tcp", t.addrs[t.pid])
	if err != nil {
		return err
	}
	t.listener = l

	t.handler.Add(1)
	go t.acceptConnections()
	return nil
}

// Addr returns the address actually listened on.
func (t *TCP[C]) Addr() string {
	if t.listener == nil {
		return t.addrs[t.pid]
	}
	return t.listener.Addr().String()
}

// SetAddrs replaces the peer address list. Existing connections are kept.
func (t *TCP[C]) SetAddrs(addrs []string) {
	t.m.Lock()
	defer t.m.Unlock()
	t.addrs = addrs
}

// Send encodes v and writes it to process to.
func (t *TCP[C]) Send(to int, v C) error {
	data, err := t.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode clock: %w", err)
	}

	p, err := t.connect(to)
	if err != nil {
		return err
	}

	p.m.Lock()
	defer p.m.Unlock()
	if err = writeFrame(p.w, data); err == nil {
		err = p.w.Flush()
	}
	if err != nil {
		t.drop(to, p, err)
		return fmt.Errorf("failed to write to %d: %w", to, err)
	}
	return nil
}

// Broadcast sends v to every other process. Every peer is attempted; the
// failures are joined.
func (t *TCP[C]) Broadcast(v C) error {
	var errs []error
	for q := range t.addrs {
		if q == t.pid {
			continue
		}
		if err := t.Send(q, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Receive blocks until a value arrives from any peer.
func (t *TCP[C]) Receive() (C, error) {
	return t.inbox.Pop()
}

// Close stops accepting, closes every connection and wakes blocked receivers.
func (t *TCP[C]) Close() error {
	logs.Debugf("Close(%d)", t.pid)
	t.m.Lock()
	if t.closed {
		t.m.Unlock()
		return nil
	}
	t.closed = true
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	for to, p := range t.out {
		p.conn.Close()
		delete(t.out, to)
	}
	for conn := range t.in {
		conn.Close()
	}
	t.m.Unlock()

	t.handler.Wait()
	t.inbox.Close()
	return err
}

// connect returns the connection to process to. t.m is not held while
// dialing.
func (t *TCP[C]) connect(to int) (*peer, error) {
	t.m.Lock()
	if p, err := t.lookup(to); p != nil || err != nil {
		t.m.Unlock()
		return p, err
	}
	addr := t.addrs[to]
	t.m.Unlock()

	conn, err := t.dialer("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %d at %s: %w", to, addr, err)
	}

	t.m.Lock()
	defer t.m.Unlock()
	// Another Send may have connected, or Close run, while we dialed.
	if p, err := t.lookup(to); p != nil || err != nil {
		conn.Close()
		return p, err
	}
	p := &peer{conn: conn, w: bufio.NewWriter(conn)}
	t.out[to] = p
	return p, nil
}

// lookup returns the open connection to process to, if any. t.m must be held.
func (t *TCP[C]) lookup(to int) (*peer, error) {
	if t.closed {
		return nil, channel.ErrClosed
	}
	if to < 0 || to >= len(t.addrs) || to == t.pid {
		return nil, fmt.Errorf("no channel from %d to %d", t.pid, to)
	}
	if cause, ok := t.broken[to]; ok {
		return nil, fmt.Errorf("%w: %d to %d: %v", ErrBroken, t.pid, to, cause)
	}
	return t.out[to], nil
}

// drop closes a connection whose write failed and breaks the pair.
func (t *TCP[C]) drop(to int, p *peer, cause error) {
	t.m.Lock()
	defer t.m.Unlock()
	if t.out[to] == p {
		delete(t.out, to)
	}
	t.broken[to] = cause
	p.conn.Close()
	logs.Warnf("channel %d to %d broken: %v", t.pid, to, cause)
}

func (t *TCP[C]) acceptConnections() {
	defer t.handler.Done()
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logs.Warnf("acceptConnections error: %s", err)
			}
			return
		}

		t.m.Lock()
		if t.closed {
			t.m.Unlock()
			conn.Close()
			return
		}
		t.in[conn] = struct{}{}
		t.handler.Add(1)
		t.m.Unlock()

		go t.handleConnection(conn)
	}
}

func (t *TCP[C]) handleConnection(conn net.Conn) {
	defer t.handler.Done()
	defer func() {
		t.m.Lock()
		delete(t.in, conn)
		t.m.Unlock()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	logs.Debugf("handleConnection(%s): start", remote)

	reader := bufio.NewReader(conn)
	for {
		data, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logs.Debugf("handleConnection(%s): closed", remote)
			} else {
				logs.Warnf("handleConnection(%s) error: %v", remote, err)
			}
			return
		}

		v, err := t.codec.Decode(data)
		if err != nil {
			logs.Warnf("handleConnection(%s): dropping connection: %v", remote, err)
			return
		}
		if err := t.inbox.Push(v); err != nil {
			return
		}
	}
}
