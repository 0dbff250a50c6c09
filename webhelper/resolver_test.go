package webhelper

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (net.Listener, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, l.Addr().(*net.TCPAddr).Port
}

func TestResolve_FindsBoundPort(t *testing.T) {
	_, port := listenLoopback(t)

	r := &Resolver{Host: "127.0.0.1", Start: port, End: port}
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, port, got)
}

func TestResolve_ReturnsLowestBoundPort(t *testing.T) {
	_, a := listenLoopback(t)
	_, b := listenLoopback(t)
	low, high := a, b
	if low > high {
		low, high = high, low
	}

	r := &Resolver{Host: "127.0.0.1", Start: low, End: high}
	got, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, low, got)
}

func TestResolve_NothingBound(t *testing.T) {
	l, port := listenLoopback(t)
	l.Close()

	r := &Resolver{Host: "127.0.0.1", Start: port, End: port}
	_, err := r.Resolve()
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestResolve_EmptyRange(t *testing.T) {
	r := &Resolver{Host: "127.0.0.1", Start: 4399, End: 4370}
	_, err := r.Resolve()
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}
