// Package audit carries the coordinator's audit trail to a separate logging
// service over gRPC.
//
// The service has two unary methods. LogAction takes a
// google.protobuf.Struct with the string fields "user", "operation" and
// "timestamp" and answers with a google.protobuf.BoolValue. ListActions takes
// a google.protobuf.Int32Value limit (0 for everything) and answers with a
// google.protobuf.ListValue of stored records, most recent first.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/audit/records"
	"github.com/dmitrijs2005/peerdir/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName     = "audit.v1.AuditLog"
	LogActionMethod   = "/" + ServiceName + "/LogAction"
	ListActionsMethod = "/" + ServiceName + "/ListActions"
)

// Action is one audited coordinator operation as it travels on the wire.
type Action struct {
	User      string
	Operation string
	Timestamp string
}

func (a Action) toProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"user":      a.User,
		"operation": a.Operation,
		"timestamp": a.Timestamp,
	})
}

func actionFromProto(s *structpb.Struct) (Action, error) {
	f := s.GetFields()
	a := Action{
		User:      f["user"].GetStringValue(),
		Operation: f["operation"].GetStringValue(),
		Timestamp: f["timestamp"].GetStringValue(),
	}
	if a.User == "" || a.Operation == "" {
		return a, fmt.Errorf("%w: user and operation are required", common.ErrorMalformedRequest)
	}
	return a, nil
}

func recordToProto(r records.Record) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"user":        r.User,
		"operation":   r.Operation,
		"timestamp":   r.ClientTimestamp,
		"received_at": r.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}
}

func recordsToProto(rs []records.Record) (*structpb.ListValue, error) {
	items := make([]any, 0, len(rs))
	for _, r := range rs {
		items = append(items, recordToProto(r))
	}
	return structpb.NewList(items)
}

func recordsFromProto(l *structpb.ListValue) ([]records.Record, error) {
	out := make([]records.Record, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		f := v.GetStructValue().GetFields()
		received, err := time.Parse(time.RFC3339Nano, f["received_at"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%w: received_at: %v", common.ErrorMalformedRequest, err)
		}
		out = append(out, records.Record{
			ID:              f["id"].GetStringValue(),
			User:            f["user"].GetStringValue(),
			Operation:       f["operation"].GetStringValue(),
			ClientTimestamp: f["timestamp"].GetStringValue(),
			ReceivedAt:      received,
		})
	}
	return out, nil
}

// AuditLogServer is implemented by the audit service.
type AuditLogServer interface {
	LogAction(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error)
	ListActions(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.ListValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuditLogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LogAction", Handler: logActionHandler},
		{MethodName: "ListActions", Handler: listActionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "audit/v1/audit.proto",
}

// RegisterAuditLogServer attaches impl to s.
func RegisterAuditLogServer(s grpc.ServiceRegistrar, impl AuditLogServer) {
	s.RegisterService(&serviceDesc, impl)
}

func logActionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuditLogServer).LogAction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogActionMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AuditLogServer).LogAction(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listActionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuditLogServer).ListActions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListActionsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AuditLogServer).ListActions(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}
