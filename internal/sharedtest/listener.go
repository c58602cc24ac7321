package sharedtest

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// GetAvailablePort finds an available port (by creating and then immediately closing a listener) and
// returns the port number.
func GetAvailablePort(t *testing.T) int {
	l, err := net.Listen("tcp", ":0") //nolint:gosec
	require.NoError(t, err)
	addr := l.Addr().String()
	port, err := strconv.Atoi(addr[strings.LastIndex(addr, ":")+1:])
	require.NoError(t, err)
	l.Close() //nolint:errcheck,gosec
	return port
}

// GetAvailablePorts is like GetAvailablePort, but returns n distinct ports.
func GetAvailablePorts(t *testing.T, n int) []int {
	var ports []int
	seen := make(map[int]bool)
	for len(ports) < n {
		port := GetAvailablePort(t)
		if !seen[port] {
			seen[port] = true
			ports = append(ports, port)
		}
	}
	return ports
}
