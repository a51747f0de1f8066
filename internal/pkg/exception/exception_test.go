package exception

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsNetworkConnection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"explicit", NetworkConnection("offline", nil), true},
		{"wrapped explicit", fmt.Errorf("fetch: %w", NetworkConnection("offline", nil)), true},
		{"api exception", API("not found", "/x", 404), false},
		{"protocol", Protocol("double finalize"), false},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, true},
		{"dns error", &net.DNSError{Err: "no such host", Name: "example.invalid"}, true},
		{"errno refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"unexpected eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), true},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"grpc not found", status.Error(codes.NotFound, "missing"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNetworkConnection(tt.err))
		})
	}
}

func TestFrom(t *testing.T) {
	t.Run("keeps existing exception", func(t *testing.T) {
		orig := API("forbidden", "/orders", 403)
		got := From(fmt.Errorf("wrap: %w", orig))
		require.Same(t, orig, got)
	})

	t.Run("network", func(t *testing.T) {
		cause := fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		got := From(cause)
		require.Equal(t, KindNetworkConnection, got.Kind)
		require.ErrorIs(t, got, syscall.ECONNREFUSED)
	})

	t.Run("grpc api", func(t *testing.T) {
		got := From(status.Error(codes.NotFound, "order missing"))
		require.Equal(t, KindAPI, got.Kind)
		require.Equal(t, int(codes.NotFound), got.StatusCode)
		require.Equal(t, "order missing", got.Message)
	})

	t.Run("runtime", func(t *testing.T) {
		cause := errors.New("nil map")
		got := From(cause)
		require.Equal(t, KindRuntime, got.Kind)
		require.Equal(t, "nil map", got.Error())
		require.ErrorIs(t, got, cause)
	})

	t.Run("nil", func(t *testing.T) {
		require.Nil(t, From(nil))
	})
}

func TestIsProtocol(t *testing.T) {
	require.True(t, IsProtocol(fmt.Errorf("log: %w", Protocol("frozen"))))
	require.False(t, IsProtocol(Runtime("x")))
	require.False(t, IsProtocol(nil))
}

func TestAPIErrorMessage(t *testing.T) {
	require.Equal(t, "api error [404 /x]: not found", API("not found", "/x", 404).Error())
}
