package aprsmover

// APRS-IS client.
//
// Establishes a TCP connection to a tier 2 server, logs in, and sends
// packets.  All "packets" sent to APRS-IS are TNC2 format text lines
// terminated by CR/LF.  The server replies with '#' comment lines
// (banner, login response, periodic heartbeats); we read and discard them
// so the socket doesn't back up, but we never gate on their content
// except for the login response.
//
// Reference: http://www.aprs-is.net/Connecting.aspx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ConnState is the client connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateAuthenticated
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PacketSink is a place encoded packets go.  The real client writes them
// to the APRS-IS socket; dry-run substitutes a console writer.  Nothing
// upstream knows the difference.
type PacketSink interface {
	Send(line string) error
	Close() error
}

// ConsoleSink prints packets instead of transmitting them (--dry-run).
type ConsoleSink struct {
	W io.Writer
}

func (s *ConsoleSink) Send(line string) error {
	var _, err = fmt.Fprintf(s.W, "TX: %s\n", line)
	return err
}

func (s *ConsoleSink) Close() error { return nil }

// Client owns the APRS-IS connection.
type Client struct {
	Host     string
	Port     int
	Callsign string
	Passcode string

	// ConnectTimeout bounds the TCP dial, IOTimeout each read or write,
	// so a stalled server cannot wedge the beacon cadence.
	ConnectTimeout time.Duration
	IOTimeout      time.Duration

	// RetryCap, when non-zero, bounds how long ConnectWithRetry keeps
	// trying before giving up and entering StateFailed.  Zero retries
	// forever.
	RetryCap time.Duration

	conn  net.Conn
	state ConnState
}

// NewClient returns a client with the usual timeouts.
func NewClient(host string, port int, callsign, passcode string) *Client {
	return &Client{
		Host:           host,
		Port:           port,
		Callsign:       callsign,
		Passcode:       passcode,
		ConnectTimeout: 15 * time.Second,
		IOTimeout:      30 * time.Second,
	}
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	return c.state
}

func (c *Client) setState(s ConnState) {
	if s != c.state {
		Logger.Info("Connection state changed", "from", c.state, "to", s)
		c.state = s
	}
}

// Connect dials the server and performs the login exchange.  On return
// the client is either Authenticated or Disconnected.
func (c *Client) Connect() error {
	c.setState(StateConnecting)

	var addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	Logger.Debug("Connecting to APRS-IS", "addr", addr, "callsign", c.Callsign)

	var conn, err = net.DialTimeout("tcp", addr, c.ConnectTimeout)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("connect to APRS-IS server %s failed: %w", addr, err)
	}

	var reader = bufio.NewReader(conn)
	if err := c.login(conn, reader); err != nil {
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	c.conn = conn
	c.setState(StateAuthenticated)
	Logger.Info("Connected to APRS-IS", "server", addr)

	// Drain server comment lines ('#' heartbeats and any other traffic)
	// for the life of this connection.  A send will notice the dead
	// socket; this goroutine just quietly goes away with it.
	go drainServerLines(reader)

	return nil
}

// login sends the login line and checks the server's response.  The
// server first sends a banner line, then answers the login with a line
// like "# logresp N0CALL verified, server T2EXAMPLE".
func (c *Client) login(conn net.Conn, reader *bufio.Reader) error {
	var line, err = LoginLine(c.Callsign, c.Passcode)
	if err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(c.IOTimeout))
	var banner, bannerErr = reader.ReadString('\n')
	if bannerErr != nil {
		return fmt.Errorf("reading APRS-IS banner: %w", bannerErr)
	}
	Logger.Debug("Server banner", "line", strings.TrimSpace(banner))

	conn.SetWriteDeadline(time.Now().Add(c.IOTimeout))
	if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
		return fmt.Errorf("sending login: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.IOTimeout))
	var resp, respErr = reader.ReadString('\n')
	if respErr != nil {
		return fmt.Errorf("reading login response: %w", respErr)
	}
	resp = strings.TrimSpace(resp)
	Logger.Debug("Login response", "line", resp)

	if strings.Contains(resp, "unverified") || strings.Contains(resp, "invalid") {
		return fmt.Errorf("%w: %s", ErrAuthentication, resp)
	}

	conn.SetReadDeadline(time.Time{})
	return nil
}

// Send transmits one packet line.  The CR/LF terminator is appended here.
// Any write failure kills the connection and is reported as a
// transmission error; it is the caller's job to reconnect and carry on
// with the next scheduled beacon.
func (c *Client) Send(line string) error {
	if c.conn == nil || c.state != StateAuthenticated {
		return ErrNotConnected
	}

	if len(line)+2 > MaxPacketLen {
		return fmt.Errorf("%w: line is %d bytes, limit is %d including CR/LF", ErrEncoding, len(line), MaxPacketLen)
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.IOTimeout))
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.conn.Close()
		c.conn = nil
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}

	Logger.Debug("Packet sent", "packet", line)
	return nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	var err = c.conn.Close()
	c.conn = nil
	c.setState(StateDisconnected)
	return err
}

// ConnectWithRetry keeps calling Connect with exponential backoff (5s
// base, 5m cap, randomized) until it succeeds, the context is cancelled,
// or RetryCap elapses.  Authentication rejections are retried too: tier 2
// servers rotate behind one DNS name and a flaky one shouldn't kill the
// process.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	var bo = backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.MaxElapsedTime = c.RetryCap

	var err = backoff.RetryNotify(
		c.Connect,
		backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			Logger.Debug("Connect attempt failed, backing off", "err", err, "retry_in", next)
		},
	)
	if err != nil {
		if ctx.Err() == nil {
			c.setState(StateFailed)
		}
		return err
	}
	return nil
}

// drainServerLines reads and discards whatever the server sends for the
// life of the connection.
func drainServerLines(reader *bufio.Reader) {
	for {
		var line, err = reader.ReadString('\n')
		if err != nil {
			return
		}
		Logger.Debug("Server line", "line", strings.TrimSpace(line))
	}
}
