package audit

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/audit/records"
	"github.com/dmitrijs2005/peerdir/internal/common"
	"github.com/dmitrijs2005/peerdir/internal/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ctxKey string

const callerKey ctxKey = "caller"

// Server is the audit logging service.
type Server struct {
	address   string
	repo      records.Repository
	logger    logging.Logger
	jwtSecret []byte
	now       func() time.Time
}

func NewServer(a string, l logging.Logger, repo records.Repository, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "audit_server"),
		repo:      repo,
		jwtSecret: []byte(secretKey),
		now:       time.Now,
	}
}

// NewGRPCServer returns a grpc.Server with the service and its token check
// registered but not yet serving.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.serviceTokenInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterAuditLogServer(srv, s)
	return srv
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve runs the service on an existing listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewGRPCServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping audit server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting audit server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) serviceTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if len(s.jwtSecret) == 0 {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AuditTokenHeaderName)
		if len(values) > 0 {
			token = values[0]
		}
	}
	if len(token) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	subject, err := VerifyToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Warn(ctx, "rejected service token", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, callerKey, subject)

	return handler(ctx, req)
}

// LogAction prints and stores one action.
func (s *Server) LogAction(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	a, err := actionFromProto(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	l := s.logger
	if caller, ok := ctx.Value(callerKey).(string); ok {
		l = l.With("caller", caller)
	}
	l.Info(ctx, a.User+" "+a.Operation+" "+a.Timestamp,
		"user", a.User, "operation", a.Operation, "timestamp", a.Timestamp)

	rec := &records.Record{
		ID:              uuid.NewString(),
		User:            a.User,
		Operation:       a.Operation,
		ClientTimestamp: a.Timestamp,
		ReceivedAt:      s.now(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Error(ctx, "failed to store record", "error", err)
		return nil, status.Error(codes.Internal, "store failed")
	}

	return wrapperspb.Bool(true), nil
}

// ListActions returns stored records, most recent first.
func (s *Server) ListActions(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	if in.GetValue() < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit cannot be negative")
	}

	rs, err := s.repo.List(ctx, int(in.GetValue()))
	if err != nil {
		s.logger.Error(ctx, "failed to list records", "error", err)
		return nil, status.Error(codes.Internal, "list failed")
	}

	out, err := recordsToProto(rs)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
