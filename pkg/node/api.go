package node

import (
	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/snapshot"
)

// API is the clock-independent surface of a node.
type API interface {
	Pid() int
	Exec() (Event, error)
	Send(to int) (Event, error)
	History() (History, error)
	GC() (Collection, error)
	Snapshot() (clock.SnapshotID, error)
	Records() ([]snapshot.Record, error)
}

var (
	_ API = &Node[clock.Vector]{}
	_ API = &Node[clock.Matrix]{}
	_ API = &Node[clock.Marker]{}
)

// Event is a recorded event rendered for display.
type Event struct {
	Seq   int    `json:"seq"`
	Clock string `json:"clock"`
}

type History struct {
	Base   int      `json:"base"`
	Events []string `json:"events"`
}

type Collection struct {
	Drained   int `json:"drained"`
	Collected int `json:"collected"`
	Retained  int `json:"retained"`
	Base      int `json:"base"`
}
