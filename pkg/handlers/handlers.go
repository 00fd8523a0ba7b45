// Package handlers serves the control API of a node.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/spencer-p/ordering/pkg/msg"
	"github.com/spencer-p/ordering/pkg/node"
	"github.com/spencer-p/ordering/pkg/types"

	"github.com/gorilla/mux"
)

type State struct {
	node node.API
}

func New(n node.API) *State {
	return &State{node: n}
}

func (s *State) historyHandler(in types.Input, res *types.Response) {
	h, err := s.node.History()
	if err != nil {
		fail(res, err, msg.Unavailable)
		return
	}
	res.History = &h
	res.Message = msg.HistorySuccess
}

func (s *State) execHandler(in types.Input, res *types.Response) {
	e, err := s.node.Exec()
	if err != nil {
		fail(res, err, msg.Unavailable)
		return
	}
	res.Event = &e
	res.Message = msg.ExecSuccess
}

func (s *State) sendHandler(in types.Input, res *types.Response) {
	if in.Peer == "" {
		res.Error = msg.PeerMissing
		res.Status = http.StatusBadRequest
		return
	}
	to, err := strconv.Atoi(in.Peer)
	if err != nil {
		res.Error = msg.BadPeer
		res.Status = http.StatusBadRequest
		return
	}

	e, err := s.node.Send(to)
	if errors.Is(err, node.ErrBadPeer) {
		res.Error = msg.BadPeer
		res.Status = http.StatusBadRequest
		return
	}
	// A failed transmission is still a recorded event.
	if !errors.Is(err, node.ErrStopped) {
		res.Event = &e
	}
	if err != nil {
		fail(res, err, msg.Unavailable)
		return
	}
	res.Message = msg.SendSuccess
}

func (s *State) gcHandler(in types.Input, res *types.Response) {
	c, err := s.node.GC()
	if err != nil {
		fail(res, err, msg.NotCollector)
		return
	}
	res.Collection = &c
	res.Message = msg.GCSuccess
}

func (s *State) snapshotHandler(in types.Input, res *types.Response) {
	id, err := s.node.Snapshot()
	if err != nil {
		fail(res, err, msg.NotSnapshotter)
		return
	}
	res.Snapshot = &id
	res.Message = msg.SnapshotStarted
}

func (s *State) recordsHandler(in types.Input, res *types.Response) {
	rs, err := s.node.Records()
	if err != nil {
		fail(res, err, msg.NotSnapshotter)
		return
	}
	res.Records = rs
	res.Message = msg.RecordsSuccess
}

// fail fills res for err. unsupported is the message used when the node's
// clock cannot do what was asked.
func fail(res *types.Response, err error, unsupported string) {
	switch {
	case errors.Is(err, node.ErrUnsupported):
		res.Error = unsupported
		res.Status = http.StatusNotImplemented
	case errors.Is(err, node.ErrStopped):
		res.Error = msg.Unavailable
		res.Status = http.StatusServiceUnavailable
	default:
		res.Error = err.Error()
		res.Status = http.StatusServiceUnavailable
	}
}

func (s *State) Route(r *mux.Router) {
	r.HandleFunc("/history", types.WrapHTTP(s.historyHandler)).Methods(http.MethodGet)
	r.HandleFunc("/exec", types.WrapHTTP(s.execHandler)).Methods(http.MethodPost)
	r.HandleFunc("/send/{peer}", types.WrapHTTP(s.sendHandler)).Methods(http.MethodPost)
	r.HandleFunc("/send", types.WrapHTTP(s.sendHandler)).Methods(http.MethodPost)
	r.HandleFunc("/gc", types.WrapHTTP(s.gcHandler)).Methods(http.MethodPost)
	r.HandleFunc("/snapshot", types.WrapHTTP(s.snapshotHandler)).Methods(http.MethodPost)
	r.HandleFunc("/snapshots", types.WrapHTTP(s.recordsHandler)).Methods(http.MethodGet)
}
