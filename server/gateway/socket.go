package gateway

import (
	"net"
	"time"
)

type (
	// Conn is the transport a client connects over.
	Conn interface {
		// ReadJSON reads the next json message from the connection.
		ReadJSON(v interface{}) error
		// WriteJSON writes the message as json to the connection.
		WriteJSON(v interface{}) error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// IsNormalClose determines if the error is an expected close error.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
		// Close closes the connection.
		Close() error
	}

	// client is one connected socket.  Outbound events are queued on send and
	// written by the client's write pump; the queue is only closed by the event
	// goroutine.
	client struct {
		id   string
		conn Conn
		send chan Response
	}
)

// sendQueueSize is the outbound queue capacity per client.  A full queue marks
// the client as slow and events to it are dropped rather than blocking the room.
const sendQueueSize = 64

// readPump reads events off the connection and posts them to the event
// goroutine until the connection fails or closes.
func (g *Gateway) readPump(c *client) {
	defer g.post(func() {
		g.removeClient(c)
	})
	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if !c.conn.IsNormalClose(err) {
				g.Log.Printf("reading events stopped for %v: %v", c.id, err)
			}
			return
		}
		g.post(func() {
			g.dispatch(c, req)
		})
	}
}

// writePump writes queued events to the connection, interleaving pings so the
// peer's read deadline keeps advancing.  It owns the connection: when the
// queue closes or a write fails it closes the connection, which unblocks the
// read pump.
func (g *Gateway) writePump(c *client) {
	pingTicker := time.NewTicker(g.PingPeriod)
	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-g.stopped:
			c.conn.WriteClose("server shutting down")
			return
		case m, ok := <-c.send:
			if !ok {
				c.conn.WriteClose("session ended")
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := c.conn.WritePing(); err != nil {
				return
			}
		}
	}
}

// sendTo queues the event for the client without blocking the event goroutine.
func (g *Gateway) sendTo(c *client, m Response) {
	select {
	case c.send <- m:
	default:
		g.Log.Printf("dropping %v event for slow client %v", m.Event, c.id)
	}
}
