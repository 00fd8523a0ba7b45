package types

import (
	"encoding/json"
	"net/http"

	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/msg"
	"github.com/spencer-p/ordering/pkg/node"
	"github.com/spencer-p/ordering/pkg/snapshot"

	logs "github.com/danmuck/smplog"
	"github.com/gorilla/mux"
)

type Response struct {
	// The status code is not marshalled to JSON. The wrapper function uses this
	// to write the HTTP response body. Defaults to 200.
	Status int `json:"-"`

	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Event      *node.Event       `json:"event,omitempty"`
	History    *node.History     `json:"history,omitempty"`
	Collection *node.Collection  `json:"gc,omitempty"`
	Snapshot   *clock.SnapshotID `json:"snapshot,omitempty"`
	Records    []snapshot.Record `json:"records,omitempty"`
}

// Input stores arguments to each api request
type Input struct {
	Peer string `json:"peer"`
}

// WrapHTTP wraps an method that processes Inputs and writes a Response as an http
// handler.
func WrapHTTP(next func(Input, *Response)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := &Response{
			// Default to OK status
			Status: http.StatusOK,
		}

		// Parse input.
		var in Input
		if success, err := ParseInput(r, &in); !success {
			// Failed to process request input -- return error immediately
			result.Error = err
			result.Status = http.StatusBadRequest
			result.Serve(w, r)
			return
		}

		next(in, result)
		result.Serve(w, r)
	}
}

// ParseInput fills out a input struct from an http request. Returns ok if it
// succeeded; otherwise the string contains an error message.
func ParseInput(r *http.Request, in *Input) (ok bool, err string) {
	if r.ContentLength > 0 {
		// Ignore body if there is none
		if err := json.NewDecoder(r.Body).Decode(in); err != nil {
			logs.Warnf("Could not decode JSON: %v", err)
			return false, msg.FailedToParse
		}
	}

	// Path variables win over the body.
	if peer, ok := mux.Vars(r)["peer"]; ok {
		in.Peer = peer
	}
	return true, ""
}

// Serve writes a response struct to an http response.
func (result *Response) Serve(w http.ResponseWriter, r *http.Request) {
	// Set header and error text if necessary
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.Status)
	if result.Status >= 400 && result.Message == "" {
		result.Message = "Error in " + r.Method
		logs.Debugf("%s", result.Error)
	}
	logs.Debugf("%d %s", result.Status, result.Message)

	// Encode the result as JSON and send back
	enc := json.NewEncoder(w)
	if err := enc.Encode(result); err != nil {
		logs.Warnf("Failed to marshal JSON response: %v", err)
		// response writer is likely fubar at this point.
		return
	}
}
