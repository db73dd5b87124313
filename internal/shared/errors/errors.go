// Package errors defines the gateway's stable error taxonomy.
//
// Every failure the generation pipeline can produce is wrapped in an
// *AppError tagged with one of the Kind values below before it crosses a
// component boundary. Handlers downstream (HTTP, logging, metrics) switch on
// Kind rather than inspecting error strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, public error classification.
type Kind string

// The closed set of error kinds the gateway can surface. Keep in sync with
// §7 of the specification this package implements.
const (
	KindValidation       Kind = "validation"
	KindAuth             Kind = "auth"
	KindProvisioning     Kind = "provisioning"
	KindUploadToken      Kind = "upload-token"
	KindUploadApply      Kind = "upload-apply"
	KindUploadPut        Kind = "upload-put"
	KindUploadCommit     Kind = "upload-commit"
	KindDraftSubmit      Kind = "draft-submit"
	KindPollTimeout      Kind = "poll-timeout"
	KindPollStall        Kind = "poll-stall"
	KindPollRemoteFailed Kind = "poll-remote-failed"
	KindTransport        Kind = "transport"
	KindServer           Kind = "server"
)

// statusByKind maps each Kind to the HTTP status the public API should
// report. Kinds not present fall back to 500.
var statusByKind = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindAuth:             http.StatusUnauthorized,
	KindProvisioning:     http.StatusBadGateway,
	KindUploadToken:      http.StatusBadGateway,
	KindUploadApply:      http.StatusBadGateway,
	KindUploadPut:        http.StatusBadGateway,
	KindUploadCommit:     http.StatusBadGateway,
	KindDraftSubmit:      http.StatusBadGateway,
	KindPollTimeout:      http.StatusGatewayTimeout,
	KindPollStall:        http.StatusGatewayTimeout,
	KindPollRemoteFailed: http.StatusBadGateway,
	KindTransport:        http.StatusBadGateway,
	KindServer:           http.StatusBadGateway,
}

// AppError is the gateway's canonical error envelope: a stable Kind, a
// human message, and the underlying cause (kept for logging and errors.Is,
// never serialized to clients).
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an AppError of the given kind wrapping err. If message is
// empty, err's message (or a generic fallback) is used.
func New(kind Kind, message string, err error) *AppError {
	if message == "" {
		if err != nil {
			message = err.Error()
		} else {
			message = string(kind)
		}
	}
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, enabling errors.Is/As against it.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status the public API should report for e.
func (e *AppError) StatusCode() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *AppError, otherwise returns KindServer.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
