package protocol

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/gamehall/gamehall/internal/registry"
)

// Conn wraps a client socket. The same socket carries synchronous replies
// from the dispatch loop and unsolicited event pushes from the broadcaster,
// so every write goes through one mutex and is exactly one JSON line.
type Conn struct {
	mu      sync.Mutex
	netConn net.Conn
}

var _ registry.Conn = (*Conn)(nil)

// NewConn wraps a network connection
func NewConn(netConn net.Conn) *Conn {
	return &Conn{netConn: netConn}
}

// Send writes one JSON line onto the socket
func (c *Conn) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.netConn.Write(data)
	return err
}

// RemoteAddr returns the peer address
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the underlying socket
func (c *Conn) Close() error {
	return c.netConn.Close()
}
