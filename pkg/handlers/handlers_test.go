package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/msg"
	"github.com/spencer-p/ordering/pkg/node"
	"github.com/spencer-p/ordering/pkg/snapshot"
	"github.com/spencer-p/ordering/pkg/types"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
)

// fakeNode is a three process vector node that can neither collect nor
// snapshot, unless snapshots is set.
type fakeNode struct {
	seq       int
	sendErr   error
	snapshots bool
}

func (f *fakeNode) Pid() int { return 0 }

func (f *fakeNode) Exec() (node.Event, error) {
	f.seq++
	return node.Event{Seq: f.seq - 1, Clock: fmt.Sprintf("[%d, 0, 0]", f.seq+1)}, nil
}

func (f *fakeNode) Send(to int) (node.Event, error) {
	if to <= 0 || to >= 3 {
		return node.Event{}, node.ErrBadPeer
	}
	e, _ := f.Exec()
	return e, f.sendErr
}

func (f *fakeNode) History() (node.History, error) {
	h := node.History{Events: []string{}}
	for i := 0; i < f.seq; i++ {
		h.Events = append(h.Events, fmt.Sprintf("[%d, 0, 0]", i+2))
	}
	return h, nil
}

func (f *fakeNode) GC() (node.Collection, error) {
	return node.Collection{}, node.ErrUnsupported
}

func (f *fakeNode) Snapshot() (clock.SnapshotID, error) {
	if !f.snapshots {
		return clock.SnapshotID{}, node.ErrUnsupported
	}
	return clock.SnapshotID{Origin: 0, Counter: uint64(f.seq)}, nil
}

func (f *fakeNode) Records() ([]snapshot.Record, error) {
	if !f.snapshots {
		return nil, node.ErrUnsupported
	}
	return []snapshot.Record{{ID: clock.SnapshotID{Origin: 0, Counter: uint64(f.seq)}}}, nil
}

func TestControlAPI(t *testing.T) {
	tests := map[string][]struct {
		method   string
		path     string
		body     string
		want     types.Response
		wantCode int
	}{
		"events": {{
			method: "GET",
			path:   "/history",
			want: types.Response{
				Message: msg.HistorySuccess,
				History: &node.History{Events: []string{}},
			},
			wantCode: 200,
		}, {
			method: "POST",
			path:   "/exec",
			want: types.Response{
				Message: msg.ExecSuccess,
				Event:   &node.Event{Seq: 0, Clock: "[2, 0, 0]"},
			},
			wantCode: 200,
		}, {
			method: "POST",
			path:   "/send/2",
			want: types.Response{
				Message: msg.SendSuccess,
				Event:   &node.Event{Seq: 1, Clock: "[3, 0, 0]"},
			},
			wantCode: 200,
		}, {
			method: "POST",
			path:   "/send",
			body:   `{"peer":"1"}`,
			want: types.Response{
				Message: msg.SendSuccess,
				Event:   &node.Event{Seq: 2, Clock: "[4, 0, 0]"},
			},
			wantCode: 200,
		}, {
			method: "GET",
			path:   "/history",
			want: types.Response{
				Message: msg.HistorySuccess,
				History: &node.History{Events: []string{"[2, 0, 0]", "[3, 0, 0]", "[4, 0, 0]"}},
			},
			wantCode: 200,
		}},
		"bad inputs": {{
			method: "POST",
			path:   "/send/0",
			want: types.Response{
				Error:   msg.BadPeer,
				Message: "Error in POST",
			},
			wantCode: 400,
		}, {
			method: "POST",
			path:   "/send/abc",
			want: types.Response{
				Error:   msg.BadPeer,
				Message: "Error in POST",
			},
			wantCode: 400,
		}, {
			method: "POST",
			path:   "/send",
			want: types.Response{
				Error:   msg.PeerMissing,
				Message: "Error in POST",
			},
			wantCode: 400,
		}, {
			method: "POST",
			path:   "/send",
			body:   `{"peer":`,
			want: types.Response{
				Error:   msg.FailedToParse,
				Message: "Error in POST",
			},
			wantCode: 400,
		}},
		"unsupported": {{
			method: "POST",
			path:   "/gc",
			want: types.Response{
				Error:   msg.NotCollector,
				Message: "Error in POST",
			},
			wantCode: 501,
		}, {
			method: "POST",
			path:   "/snapshot",
			want: types.Response{
				Error:   msg.NotSnapshotter,
				Message: "Error in POST",
			},
			wantCode: 501,
		}, {
			method: "GET",
			path:   "/snapshots",
			want: types.Response{
				Error:   msg.NotSnapshotter,
				Message: "Error in GET",
			},
			wantCode: 501,
		}},
	}

	for name, requests := range tests {
		t.Run(name, func(t *testing.T) {

			// Create one server per set of requests
			r := mux.NewRouter()
			New(&fakeNode{}).Route(r)

			for i, test := range requests {

				// Run each request as its own test for observability
				t.Run(fmt.Sprintf("%d %s %s", i, test.method, test.path), func(t *testing.T) {
					req := httptest.NewRequest(test.method, test.path, bytes.NewBufferString(test.body))
					resp := httptest.NewRecorder()

					r.ServeHTTP(resp, req)

					var got types.Response
					if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
						t.Errorf("Failed to parse response: %v", err)
					}

					if diff := cmp.Diff(&got, &test.want); diff != "" {
						t.Errorf("Got bad body (-got, +want): %s", diff)
					}

					if resp.Code != test.wantCode {
						t.Errorf("Got bad status code, expected %d, got %d", test.wantCode, resp.Code)
					}
				})
			}
		})
	}
}

func TestSendFailureStillRecords(t *testing.T) {
	r := mux.NewRouter()
	New(&fakeNode{sendErr: errors.New("connection refused")}).Route(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest("POST", "/send/1", nil))

	var got types.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	want := types.Response{
		Error:   "connection refused",
		Message: "Error in POST",
		Event:   &node.Event{Seq: 0, Clock: "[2, 0, 0]"},
	}
	if diff := cmp.Diff(&got, &want); diff != "" {
		t.Errorf("Got bad body (-got, +want): %s", diff)
	}
	if resp.Code != 503 {
		t.Errorf("Got bad status code, expected 503, got %d", resp.Code)
	}
}

func TestSnapshotRoutes(t *testing.T) {
	r := mux.NewRouter()
	New(&fakeNode{snapshots: true}).Route(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest("POST", "/snapshot", nil))
	var got types.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	want := types.Response{
		Message:  msg.SnapshotStarted,
		Snapshot: &clock.SnapshotID{Origin: 0, Counter: 0},
	}
	if diff := cmp.Diff(&got, &want); diff != "" {
		t.Errorf("Got bad body (-got, +want): %s", diff)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest("GET", "/snapshots", nil))
	got = types.Response{}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].ID != (clock.SnapshotID{}) {
		t.Errorf("Got bad records: %+v", got.Records)
	}
}
