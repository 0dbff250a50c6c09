package webhelper

import (
	"fmt"
	"net"
	"strconv"

	"github.com/marcus-crane/spotilocal/shared"
)

// Resolver finds the port the webhelper listens on by scanning a range of
// ports for one that is already taken.
//
// This assumes the webhelper is the only process listening inside the range.
// An unrelated listener on a lower port will be picked instead.
type Resolver struct {
	Host  string
	Start int
	End   int
}

func NewResolver() *Resolver {
	return &Resolver{
		Host:  shared.LOOPBACK_HOST,
		Start: shared.PORT_START,
		End:   shared.PORT_END,
	}
}

// Resolve returns the lowest port in [Start, End] that can not be bound.
func (r *Resolver) Resolve() (int, error) {
	host := r.Host
	if host == "" {
		host = shared.LOOPBACK_HOST
	}
	for port := r.Start; port <= r.End; port++ {
		if portInUse(host, port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w: scanned %s ports %d-%d", ErrEndpointNotFound, host, r.Start, r.End)
}

func portInUse(host string, port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return true
	}
	l.Close()
	return false
}
