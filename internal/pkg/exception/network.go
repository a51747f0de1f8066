package exception

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var connectivityErrnos = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
	syscall.EPIPE,
}

// IsNetworkConnection reports whether err is a transient connectivity failure.
//
// Classification is by error shape: an explicit KindNetworkConnection
// exception, a net.Error timeout, a dial/read/write *net.OpError, a DNS
// failure, a connectivity errno, an unexpected EOF, or a gRPC Unavailable /
// DeadlineExceeded status. Context cancellation and expiry are never
// connectivity failures.
func IsNetworkConnection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var exc *Exception
	if errors.As(err, &exc) {
		if exc.Kind == KindNetworkConnection {
			return true
		}
		// Already classified as something else; the cause does not override it.
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range connectivityErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		return isNetworkCode(s.Code())
	}
	return false
}

func isNetworkCode(c codes.Code) bool {
	return c == codes.Unavailable || c == codes.DeadlineExceeded
}
