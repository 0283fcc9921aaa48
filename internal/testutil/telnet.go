package testutil

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// TelnetClient is a line-oriented client for driving the duel server in
// tests. Output is returned with ANSI styling and telnet commands removed.
type TelnetClient struct {
	conn    net.Conn
	pending string
	partial []byte
	t       *testing.T
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return NewConnClient(t, conn)
}

// NewConnClient wraps an established connection, such as one end of
// net.Pipe.
func NewConnClient(t *testing.T, conn net.Conn) *TelnetClient {
	t.Cleanup(func() {
		conn.Close()
	})
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the cleaned output or timeout
// elapses. It returns the output up to and including substr; anything after
// it is kept for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	out, err := c.TryReadUntil(substr, timeout)
	if err != nil {
		c.t.Fatalf("reading until %q: got %q, error: %v", substr, out, err)
	}
	return out
}

// TryReadUntil is ReadUntil returning the error instead of failing the test.
func (c *TelnetClient) TryReadUntil(substr string, timeout time.Duration) (string, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		if i := strings.Index(c.pending, substr); i >= 0 {
			end := i + len(substr)
			out := c.pending[:end]
			c.pending = c.pending[end:]
			return out, nil
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			chunk := append(c.partial, tmp[:n]...)
			c.partial = nil
			// Hold back an escape sequence split across reads.
			if esc := strings.LastIndexByte(string(chunk), 0x1b); esc >= 0 && !strings.ContainsRune(string(chunk[esc:]), 'm') {
				c.partial = append([]byte(nil), chunk[esc:]...)
				chunk = chunk[:esc]
			}
			c.pending += clean(chunk)
		}
		if err != nil {
			return c.pending, err
		}
	}
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}

// clean drops telnet option negotiation (IAC, cmd, option) and ANSI escapes.
func clean(b []byte) string {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == 0xFF && i+2 < len(b) {
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return ansiEscape.ReplaceAllString(string(out), "")
}
