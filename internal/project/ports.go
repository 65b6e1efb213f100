package project

import (
	"fmt"
	"net"
)

// IsPortAvailable reports whether a TCP port can be bound on all interfaces.
// A port something is already listening on fails the bind and reports false.
func IsPortAvailable(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// BusyPorts filters ports down to those that cannot be bound, using probe
// (IsPortAvailable in production).
func BusyPorts(ports []int, probe func(int) bool) []int {
	var busy []int
	for _, p := range ports {
		if !probe(p) {
			busy = append(busy, p)
		}
	}
	return busy
}
