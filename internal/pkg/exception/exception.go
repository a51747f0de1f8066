// Package exception defines the failure taxonomy shared by action handlers,
// interceptors and the event logger.
//
// Every failure that crosses an interceptor is either an *Exception already
// or is converted into one with From. The logger matches on Kind rather than
// on concrete Go types, so a handler can return plain errors and still get
// the right classification.
package exception

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

// Kind discriminates the variants of Exception.
type Kind int

const (
	KindRuntime Kind = iota
	KindAPI
	KindLifecycle
	KindNetworkConnection
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindLifecycle:
		return "lifecycle"
	case KindNetworkConnection:
		return "network_connection"
	case KindProtocol:
		return "protocol"
	default:
		return "runtime"
	}
}

// Exception is a classified failure.
//
// Only the fields that belong to Kind are populated:
//   - KindAPI: RequestURL and StatusCode.
//   - KindLifecycle: ComponentStack.
//   - everything else: Message (and Err when converted from another error).
type Exception struct {
	Kind           Kind
	Message        string
	RequestURL     string
	StatusCode     int
	ComponentStack string

	// Err is the original error this exception was derived from, if any.
	Err error
}

func (e *Exception) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("api error [%d %s]: %s", e.StatusCode, e.RequestURL, e.Message)
	default:
		return e.Message
	}
}

func (e *Exception) Unwrap() error { return e.Err }

// API builds an exception for a remote call that failed with a response.
func API(message, requestURL string, statusCode int) *Exception {
	return &Exception{Kind: KindAPI, Message: message, RequestURL: requestURL, StatusCode: statusCode}
}

// Lifecycle builds an exception raised while a rendering lifecycle hook was executing.
func Lifecycle(message, componentStack string) *Exception {
	return &Exception{Kind: KindLifecycle, Message: message, ComponentStack: componentStack}
}

// Runtime builds a generic exception.
func Runtime(message string) *Exception {
	return &Exception{Kind: KindRuntime, Message: message}
}

// NetworkConnection builds a transient connectivity exception wrapping cause.
func NetworkConnection(message string, cause error) *Exception {
	return &Exception{Kind: KindNetworkConnection, Message: message, Err: cause}
}

// Protocol builds an exception signalling misuse of the framework itself,
// e.g. finalizing a log event twice. Interceptors never retry or silence it.
func Protocol(message string) *Exception {
	return &Exception{Kind: KindProtocol, Message: message}
}

// From converts any error into an *Exception. Errors that already carry an
// *Exception in their chain are returned as-is; gRPC status errors map to API
// or network exceptions; connectivity failures map to KindNetworkConnection;
// everything else becomes KindRuntime.
func From(err error) *Exception {
	if err == nil {
		return nil
	}
	var exc *Exception
	if errors.As(err, &exc) {
		return exc
	}
	if IsNetworkConnection(err) {
		return NetworkConnection(err.Error(), err)
	}
	if exc, ok := FromGRPC(err); ok {
		return exc
	}
	return &Exception{Kind: KindRuntime, Message: err.Error(), Err: err}
}

// FromGRPC classifies a gRPC status error. Unavailable and DeadlineExceeded
// are connectivity failures; any other non-OK code is treated as an API
// failure whose status code is the numeric gRPC code.
func FromGRPC(err error) (*Exception, bool) {
	s, ok := status.FromError(err)
	if !ok || err == nil {
		return nil, false
	}
	if isNetworkCode(s.Code()) {
		return NetworkConnection(s.Message(), err), true
	}
	exc := API(s.Message(), s.Code().String(), int(s.Code()))
	exc.Err = err
	return exc, true
}

// IsProtocol reports whether err is a protocol-misuse failure.
func IsProtocol(err error) bool {
	var exc *Exception
	return errors.As(err, &exc) && exc.Kind == KindProtocol
}
