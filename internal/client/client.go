// Package client implements the interactive chat client behind the nuri CLI.
// It maintains two concurrent paths against one connection: a receive pump
// that copies server bytes to local output until the connection dies, and a
// send pump that forwards local input lines verbatim to the server.
package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configures a client run.
type Options struct {
	// Address is the server TCP address, host:port.
	Address string
	// QuitToken is the line that ends the session; it is also sent
	// best-effort on interrupt.
	QuitToken string
	// In is the local input source, normally os.Stdin.
	In io.Reader
	// Out is the local output sink, normally os.Stdout.
	Out io.Writer
	// Log receives client events; nil means a no-op logger.
	Log *zap.SugaredLogger
}

// Client is one live connection to the chat server.
type Client struct {
	conn net.Conn
	opts Options
}

// Dial connects to the server. A connect failure is returned to the caller;
// there is nothing to retry at this layer.
func Dial(opts Options) (*Client, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	conn, err := net.DialTimeout("tcp", opts.Address, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("client: unable to connect to %s: %w", opts.Address, err)
	}
	return &Client{conn: conn, opts: opts}, nil
}

// Run pumps both directions until the connection is gone, the input ends, or
// an interrupt arrives. On interrupt it sends the quit token best-effort
// before closing, so the server can announce the departure.
func (c *Client) Run(interrupt <-chan os.Signal) error {
	defer c.conn.Close()

	received := make(chan struct{})
	go func() {
		defer close(received)
		c.receiveLoop()
	}()

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		c.sendLoop()
	}()

	select {
	case <-received:
		// Server side is gone; nothing more can arrive or be delivered.
		return nil
	case <-sent:
		// Quit token is on the wire; give the server a moment to answer
		// with its acknowledgment before tearing the connection down.
		select {
		case <-received:
		case <-time.After(2 * time.Second):
		}
		return nil
	case <-interrupt:
		_, _ = fmt.Fprintf(c.conn, "%s\n", c.opts.QuitToken)
		return nil
	}
}

// receiveLoop copies arriving bytes to local output until EOF or error.
func (c *Client) receiveLoop() {
	if _, err := io.Copy(c.opts.Out, c.conn); err != nil {
		c.opts.Log.Debugf("[client] receive ended: %v", err)
	}
}

// sendLoop forwards whole input lines, trailing newline included, to the
// connection, returning once input ends or the quit token was sent.
func (c *Client) sendLoop() {
	reader := bufio.NewReader(c.opts.In)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if _, werr := c.conn.Write([]byte(line)); werr != nil {
				c.opts.Log.Debugf("[client] send failed: %v", werr)
				return
			}
			if strings.TrimSpace(line) == c.opts.QuitToken {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
