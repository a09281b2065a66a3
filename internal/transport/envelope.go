// Package transport carries bridge commands between the UI process and the
// dispatcher.
//
// Two framings share one JSON envelope: websocket text frames (Server,
// Client) and newline-delimited JSON on a byte stream (ServeStream). A
// request names a channel, a method and an argument object; the response
// echoes the request id verbatim.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// CodeBadRequest is reported for frames that are not a valid request.
const CodeBadRequest = bridge.CodeBadRequest

// Dispatcher routes one command. *bridge.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel, method string, args bridge.Args) bridge.Response
}

// Request is the wire form of a command.
type Request struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Channel string          `json:"channel"`
	Method  string          `json:"method"`
	Args    bridge.Args     `json:"args,omitempty"`
}

// Response is the wire form of a command result.
type Response struct {
	ID     json.RawMessage   `json:"id"`
	Status bridge.Status     `json:"status"`
	Result any               `json:"result"`
	Error  *bridge.CallError `json:"error,omitempty"`
}

// DecodeRequest parses a request frame. Numbers in args are kept as
// json.Number so integer arguments survive without float rounding.
func DecodeRequest(data []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, err
	}
	if dec.More() {
		return Request{}, fmt.Errorf("trailing data after request")
	}
	if req.Channel == "" {
		return Request{}, fmt.Errorf("channel is required")
	}
	if req.Method == "" {
		return Request{}, fmt.Errorf("method is required")
	}
	return req, nil
}

// handleFrame decodes, dispatches and wraps one frame.
func handleFrame(ctx context.Context, d Dispatcher, frame []byte) (Response, Request, time.Duration) {
	start := time.Now()

	req, err := DecodeRequest(frame)
	if err != nil {
		return Response{
			ID:     salvageID(frame),
			Status: bridge.StatusError,
			Error:  &bridge.CallError{Code: CodeBadRequest, Message: err.Error()},
		}, req, time.Since(start)
	}

	resp := d.Dispatch(ctx, req.Channel, req.Method, req.Args)
	return Response{
		ID:     req.ID,
		Status: resp.Status,
		Result: resp.Result,
		Error:  resp.Error,
	}, req, time.Since(start)
}

// salvageID recovers the id of a request whose other fields are invalid.
func salvageID(frame []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if json.Unmarshal(frame, &probe) != nil {
		return nil
	}
	return probe.ID
}
