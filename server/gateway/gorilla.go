package gateway

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// gorillaConn implements the Conn interface by wrapping a gorilla/websocket
// connection with read/write deadlines.
type gorillaConn struct {
	conn      *websocket.Conn
	readWait  time.Duration
	writeWait time.Duration
}

// newGorillaConn wraps the connection, arming the read deadline and the pong
// handler that extends it.
func newGorillaConn(conn *websocket.Conn, readWait, writeWait time.Duration) *gorillaConn {
	c := gorillaConn{
		conn:      conn,
		readWait:  readWait,
		writeWait: writeWait,
	}
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	return &c
}

// ReadJSON reads the next json message from the connection.
func (c *gorillaConn) ReadJSON(v interface{}) error {
	c.conn.SetReadDeadline(time.Now().Add(c.readWait))
	return c.conn.ReadJSON(v)
}

// WriteJSON writes the message as json to the connection.
func (c *gorillaConn) WriteJSON(v interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(v)
}

// WritePing writes a ping message on the connection.
func (c *gorillaConn) WritePing() error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose writes a close message on the connection.  The connection is NOT closed.
func (c *gorillaConn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(websocket.CloseMessage, data)
}

// IsNormalClose determines if the error message is not an unexpected close error.
func (*gorillaConn) IsNormalClose(err error) bool {
	_, ok := err.(*websocket.CloseError) // only errors from gorilla can be normal close errors
	return ok && !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

// RemoteAddr gets the remote network address of the connection.
func (c *gorillaConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *gorillaConn) Close() error {
	return c.conn.Close()
}
