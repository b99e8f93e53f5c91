package dispatcher

import (
	"context"

	"github.com/dmitrijs2005/peerdir/internal/protocol"
)

// AuditSink records processed operations. Implementations may be slow or
// unreachable; the dispatcher never lets that affect a reply.
type AuditSink interface {
	Log(ctx context.Context, user, operation, timestamp string) error
}

// NopSink is used when no audit service is configured.
type NopSink struct{}

func (NopSink) Log(context.Context, string, string, string) error { return nil }

// Summary is the operation text sent to the audit sink: PUBLISH and DELETE
// carry the filename, everything else is the bare mnemonic.
func Summary(req protocol.Request) string {
	switch req.Op {
	case protocol.OpPublish, protocol.OpDelete:
		return string(req.Op) + " " + req.Arg(1)
	default:
		return string(req.Op)
	}
}
