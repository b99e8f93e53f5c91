// Package dispatcher turns one raw request into one reply frame: it decodes
// the request, reports it to the audit sink, applies it to the registry and
// encodes the outcome.
package dispatcher

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/common"
	"github.com/dmitrijs2005/peerdir/internal/logging"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
	"github.com/dmitrijs2005/peerdir/internal/registry"
)

// Registry is the subset of *registry.Registry the dispatcher drives.
type Registry interface {
	Register(name string) error
	Unregister(name string) error
	Connect(name, ip string, port int) error
	Disconnect(name string) error
	ListConnectedAs(requester string) ([]registry.Peer, error)
	PublishFile(name, filename, description string) error
	DeleteFile(name, filename string) error
	ListFiles(requester, target string) ([]string, error)
	LocateFile(requester, target, filename string) (registry.Address, error)
}

type Options struct {
	// AuditTimeout bounds every audit call.
	AuditTimeout time.Duration
	// ReplyLimit caps the size of list replies in bytes; 0 disables the cap.
	ReplyLimit int
}

const DefaultAuditTimeout = 5 * time.Second

type Dispatcher struct {
	registry Registry
	audit    AuditSink
	logger   logging.Logger
	opts     Options
	inflight sync.WaitGroup
}

func New(r Registry, sink AuditSink, l logging.Logger, opts Options) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.AuditTimeout <= 0 {
		opts.AuditTimeout = DefaultAuditTimeout
	}
	return &Dispatcher{
		registry: r,
		audit:    sink,
		logger:   l.With("module", "dispatcher"),
		opts:     opts,
	}
}

// Handle processes one request. peerIP is the remote address of the
// connection the request arrived on; CONNECT records it as the user's IP.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte, peerIP string) []byte {
	req, err := protocol.Decode(raw)
	if err != nil {
		d.logger.Warn(ctx, "Invalid message format", "error", err, "bytes", len(raw))
		return protocol.EncodeReply(protocol.StatusError)
	}

	d.report(ctx, req)

	reply := d.dispatch(ctx, req, peerIP)

	d.logger.Info(ctx, "OPERATION", "op", req.Op, "user", req.User(), "status", reply[0], "timestamp", req.Timestamp)
	return reply
}

// Wait blocks until every audit call started so far has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) report(ctx context.Context, req protocol.Request) {
	user, summary, ts := req.User(), Summary(req), req.Timestamp
	ctx = context.WithoutCancel(ctx)

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(ctx, d.opts.AuditTimeout)
		defer cancel()

		if err := d.audit.Log(ctx, user, summary, ts); err != nil {
			d.logger.Warn(ctx, "audit call failed", "op", summary, "user", user, "error", err)
		}
	}()
}

func (d *Dispatcher) dispatch(ctx context.Context, req protocol.Request, peerIP string) []byte {
	user := req.User()

	switch req.Op {
	case protocol.OpRegister:
		return d.status(req.Op, d.registry.Register(user))

	case protocol.OpUnregister:
		return d.status(req.Op, d.registry.Unregister(user))

	case protocol.OpConnect:
		// an unparsable port reaches the registry as 0 and is rejected there
		return d.status(req.Op, d.registry.Connect(user, peerIP, parsePort(req.Arg(1))))

	case protocol.OpDisconnect:
		return d.status(req.Op, d.registry.Disconnect(user))

	case protocol.OpListUsers:
		peers, err := d.registry.ListConnectedAs(user)
		if err != nil {
			return d.status(req.Op, err)
		}
		fields := make([]string, 0, 1+3*len(peers))
		fields = append(fields, strconv.Itoa(len(peers)))
		for _, p := range peers {
			fields = append(fields, p.Name, p.IP, strconv.Itoa(p.Port))
		}
		return d.list(req.Op, fields)

	case protocol.OpPublish:
		return d.status(req.Op, d.registry.PublishFile(user, req.Arg(1), req.Arg(2)))

	case protocol.OpDelete:
		return d.status(req.Op, d.registry.DeleteFile(user, req.Arg(1)))

	case protocol.OpListContent:
		files, err := d.registry.ListFiles(user, req.Arg(1))
		if err != nil {
			return d.status(req.Op, err)
		}
		fields := make([]string, 0, 1+len(files))
		fields = append(fields, strconv.Itoa(len(files)))
		fields = append(fields, files...)
		return d.list(req.Op, fields)

	case protocol.OpGetFile:
		addr, err := d.registry.LocateFile(user, req.Arg(1), req.Arg(2))
		if err != nil {
			return d.status(req.Op, err)
		}
		return protocol.EncodeReply(protocol.StatusOK, addr.IP, strconv.Itoa(addr.Port))

	default:
		d.logger.Warn(ctx, "UNKNOWN OPERATION", "op", req.Op, "timestamp", req.Timestamp)
		return d.status(req.Op, common.ErrorUnknownOperation)
	}
}

func (d *Dispatcher) status(op protocol.Operation, err error) []byte {
	return protocol.EncodeReply(protocol.StatusFor(op, err))
}

func (d *Dispatcher) list(op protocol.Operation, fields []string) []byte {
	reply := protocol.EncodeReply(protocol.StatusOK, fields...)
	if d.opts.ReplyLimit > 0 && len(reply) > d.opts.ReplyLimit {
		return d.status(op, common.ErrorInsufficientSpace)
	}
	return reply
}

func parsePort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return port
}
