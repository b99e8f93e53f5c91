// Package tcp accepts coordinator connections. Every connection carries
// exactly one request and one reply and is then closed.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/logging"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Handler turns a raw request into a reply frame.
type Handler interface {
	Handle(ctx context.Context, raw []byte, peerIP string) []byte
}

type Options struct {
	// MaxWorkers caps concurrently served connections. Accepting pauses
	// while the cap is reached.
	MaxWorkers int64
	// ReadTimeout bounds the wait for the request bytes, so a silent peer
	// cannot hold a worker forever.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const DefaultMaxWorkers = 256

type Server struct {
	address string
	handler Handler
	logger  logging.Logger
	opts    Options
	workers *semaphore.Weighted
}

func NewServer(address string, h Handler, l logging.Logger, opts Options) *Server {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	return &Server{
		address: address,
		handler: h,
		logger:  l.With("module", "tcp_server"),
		opts:    opts,
		workers: semaphore.NewWeighted(opts.MaxWorkers),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections from listen until ctx is done, then waits for
// in-flight connections to finish. listen is closed on return.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping TCP server...")
		case <-stopped:
		}
		listen.Close()
	}()

	s.logger.Info(ctx, "Starting TCP server", "address", listen.Addr().String(), "max_workers", s.opts.MaxWorkers)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if err := s.workers.Acquire(ctx, 1); err != nil {
			return nil
		}

		conn, err := listen.Accept()
		if err != nil {
			s.workers.Release(1)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn(ctx, "accept failed", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.workers.Release(1)
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())

	if s.opts.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}

	buf := make([]byte, protocol.MaxRequestSize)
	n, err := conn.Read(buf)
	if n <= 0 {
		log.Debug(ctx, "connection closed without request", "error", err)
		return
	}

	reply := s.handler.Handle(ctx, buf[:n], remoteIP(conn.RemoteAddr()))

	if s.opts.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	if _, err := conn.Write(reply); err != nil {
		log.Warn(ctx, "reply not delivered", "error", err)
	}
}

func remoteIP(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
