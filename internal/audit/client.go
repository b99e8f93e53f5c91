package audit

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/peerdir/internal/audit/records"
	"github.com/dmitrijs2005/peerdir/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ClientSubject identifies the coordinator in service tokens.
const ClientSubject = "coordinator"

// Client sends actions to the audit service. It satisfies
// dispatcher.AuditSink.
type Client struct {
	conn   *grpc.ClientConn
	secret []byte
}

// NewClient prepares a connection to addr. The connection is established
// lazily, so an unreachable service only shows up as failed Log calls.
func NewClient(addr string, secretKey string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{secret: []byte(secretKey)}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.tokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("audit client: %w", err)
	}
	c.conn = conn
	return c, nil
}

func (c *Client) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if len(c.secret) > 0 {
		token, err := GenerateToken(ClientSubject, c.secret, TokenValidity)
		if err != nil {
			return err
		}
		ctx = metadata.AppendToOutgoingContext(ctx, common.AuditTokenHeaderName, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// Log records one action.
func (c *Client) Log(ctx context.Context, user, operation, timestamp string) error {
	req, err := Action{User: user, Operation: operation, Timestamp: timestamp}.toProto()
	if err != nil {
		return err
	}

	resp := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, LogActionMethod, req, resp); err != nil {
		return err
	}
	if !resp.GetValue() {
		return fmt.Errorf("%w: action not recorded", common.ErrorInternal)
	}
	return nil
}

// ListActions fetches up to limit stored records, most recent first; 0
// fetches all of them.
func (c *Client) ListActions(ctx context.Context, limit int) ([]records.Record, error) {
	resp := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, ListActionsMethod, wrapperspb.Int32(int32(limit)), resp); err != nil {
		return nil, err
	}
	return recordsFromProto(resp)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
