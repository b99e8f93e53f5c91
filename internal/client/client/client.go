package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/common"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
)

var ErrUnavailable = errors.New("coordinator unavailable")

// DefaultTimeout bounds one request/reply exchange.
const DefaultTimeout = 5 * time.Second

// Peer is a connected user as reported by ListUsers.
type Peer struct {
	Name string
	IP   string
	Port int
}

// Clock produces the timestamp attached to a request.
type Clock func(ctx context.Context) (string, error)

// LocalClock formats the local time.
func LocalClock(context.Context) (string, error) {
	return time.Now().Format(common.TimestampLayout), nil
}

type Client struct {
	addr    string
	timeout time.Duration
	clock   Clock
	dialer  net.Dialer
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithClock(clock Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// New returns a client for the coordinator at addr (host:port).
func New(addr string, opts ...Option) *Client {
	c := &Client{addr: addr, timeout: DefaultTimeout, clock: LocalClock}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Register(ctx context.Context, user string) error {
	_, err := c.call(ctx, protocol.OpRegister, user)
	return err
}

func (c *Client) Unregister(ctx context.Context, user string) error {
	_, err := c.call(ctx, protocol.OpUnregister, user)
	return err
}

// Connect announces that user accepts peer requests on port. The
// coordinator takes the IP from the connection itself.
func (c *Client) Connect(ctx context.Context, user string, port int) error {
	_, err := c.call(ctx, protocol.OpConnect, user, strconv.Itoa(port))
	return err
}

func (c *Client) Disconnect(ctx context.Context, user string) error {
	_, err := c.call(ctx, protocol.OpDisconnect, user)
	return err
}

func (c *Client) Publish(ctx context.Context, user, filename, description string) error {
	_, err := c.call(ctx, protocol.OpPublish, user, filename, description)
	return err
}

func (c *Client) Delete(ctx context.Context, user, filename string) error {
	_, err := c.call(ctx, protocol.OpDelete, user, filename)
	return err
}

// ListUsers returns the connected users, most recently registered first.
func (c *Client) ListUsers(ctx context.Context, user string) ([]Peer, error) {
	fields, err := c.call(ctx, protocol.OpListUsers, user)
	if err != nil {
		return nil, err
	}

	rest, err := counted(fields, 3)
	if err != nil {
		return nil, err
	}

	peers := make([]Peer, 0, len(rest)/3)
	for i := 0; i < len(rest); i += 3 {
		port, err := strconv.Atoi(rest[i+2])
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", common.ErrorMalformedRequest, rest[i+2])
		}
		peers = append(peers, Peer{Name: rest[i], IP: rest[i+1], Port: port})
	}
	return peers, nil
}

// ListContent returns the files target publishes, most recent first.
func (c *Client) ListContent(ctx context.Context, user, target string) ([]string, error) {
	fields, err := c.call(ctx, protocol.OpListContent, user, target)
	if err != nil {
		return nil, err
	}
	return counted(fields, 1)
}

// GetFile returns the address where target serves filename.
func (c *Client) GetFile(ctx context.Context, user, target, filename string) (string, error) {
	fields, err := c.call(ctx, protocol.OpGetFile, user, target, filename)
	if err != nil {
		return "", err
	}
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: %d fields in GET_FILE reply", common.ErrorMalformedRequest, len(fields))
	}
	return net.JoinHostPort(fields[0], fields[1]), nil
}

// counted checks a "count, then count*width fields" reply and strips the
// count.
func counted(fields []string, width int) ([]string, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: missing count", common.ErrorMalformedRequest)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 || len(fields)-1 != n*width {
		return nil, fmt.Errorf("%w: count %q for %d fields", common.ErrorMalformedRequest, fields[0], len(fields)-1)
	}
	return fields[1:], nil
}

func (c *Client) call(ctx context.Context, op protocol.Operation, args ...string) ([]string, error) {
	ts, err := c.clock(ctx)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(protocol.Encode(op, ts, args...)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	st, fields, err := protocol.ReadReply(conn)
	if err != nil {
		return nil, fmt.Errorf("%s reply: %w", op, err)
	}
	if st != protocol.StatusOK {
		return nil, protocol.ErrorFor(op, st)
	}
	return fields, nil
}
