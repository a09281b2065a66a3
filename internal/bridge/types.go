package bridge

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/callbridge/internal/errors"
)

// Error codes carried by error responses.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInternal        = "INTERNAL"
	CodeBadRequest      = "BAD_REQUEST"
)

// Status is the outcome class of a dispatched command.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusNotImplemented Status = "not_implemented"
)

// ErrNotImplemented is returned by a handler that has no implementation
// for the requested method.
var ErrNotImplemented = errors.New("not implemented")

// Call is a single command addressed to a channel.
type Call struct {
	Channel string
	Method  string
	Args    Args
}

// Handler serves every method of one channel.
type Handler func(ctx context.Context, call Call) (any, error)

// CallError is the structured error returned to the UI.
type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Response is the result of a dispatch.
type Response struct {
	Status Status     `json:"status"`
	Result any        `json:"result"`
	Error  *CallError `json:"error,omitempty"`
}

// Success builds a success response.
func Success(result any) Response {
	return Response{Status: StatusSuccess, Result: result}
}

// Failure builds an error response.
func Failure(code, message string, details any) Response {
	return Response{Status: StatusError, Error: &CallError{Code: code, Message: message, Details: details}}
}

// NotImplemented builds a not-implemented response.
func NotImplemented() Response {
	return Response{Status: StatusNotImplemented}
}
