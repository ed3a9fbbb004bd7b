package gateway

import (
	"fmt"
	"net"
	"strings"
)

// mockAddr implements the net.Addr interface
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

type mockConn struct {
	ReadJSONFunc      func(v interface{}) error
	WriteJSONFunc     func(v interface{}) error
	WritePingFunc     func() error
	WriteCloseFunc    func(reason string) error
	IsNormalCloseFunc func(err error) bool
	RemoteAddrFunc    func() net.Addr
	CloseFunc         func() error
}

func (m *mockConn) ReadJSON(v interface{}) error {
	return m.ReadJSONFunc(v)
}

func (m *mockConn) WriteJSON(v interface{}) error {
	return m.WriteJSONFunc(v)
}

func (m *mockConn) WritePing() error {
	return m.WritePingFunc()
}

func (m *mockConn) WriteClose(reason string) error {
	return m.WriteCloseFunc(reason)
}

func (m *mockConn) IsNormalClose(err error) bool {
	return m.IsNormalCloseFunc(err)
}

func (m *mockConn) RemoteAddr() net.Addr {
	return m.RemoteAddrFunc()
}

func (m *mockConn) Close() error {
	return m.CloseFunc()
}

// staticWords always supplies the same word.
type staticWords string

func (w staticWords) RandomWord(difficulty string) string {
	return string(w)
}

// mockTokenizer issues transparent tokens so tests can assert on their parts.
type mockTokenizer struct{}

func (mockTokenizer) Create(roomID, playerID string) (string, error) {
	return "token:" + roomID + ":" + playerID, nil
}

func (mockTokenizer) Read(tokenString string) (string, string, error) {
	parts := strings.Split(tokenString, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return "", "", fmt.Errorf("bad token: %v", tokenString)
	}
	return parts[1], parts[2], nil
}
