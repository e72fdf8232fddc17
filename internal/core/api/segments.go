package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Segments gRPC service.
 *
 * Count evaluates a filter against the current customers without creating
 * a session. Messages are google.protobuf.Struct so no generated code is
 * needed:
 *
 *   request:  {"filter": <node JSON>, "search": "text"}
 *   response: {"count": N, "ids": ["c1", ...]}
 *
 * A missing filter is the empty AND group and matches every customer.
 */

// SegmentsServiceName is the fully qualified gRPC service name.
const SegmentsServiceName = "bulkmsg.segments.v1.Segments"

const countMethod = "/" + SegmentsServiceName + "/Count"

// SegmentsServer is the server API for the Segments service.
type SegmentsServer interface {
	Count(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// SegmentsServiceDesc describes the Segments service for grpc.Server.
var SegmentsServiceDesc = grpc.ServiceDesc{
	ServiceName: SegmentsServiceName,
	HandlerType: (*SegmentsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Count", Handler: countHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bulkmsg/segments/v1/segments.proto",
}

func countHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmentsServer).Count(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: countMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SegmentsServer).Count(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterSegmentsServer registers srv on s.
func RegisterSegmentsServer(s grpc.ServiceRegistrar, srv SegmentsServer) {
	s.RegisterService(&SegmentsServiceDesc, srv)
}

// SegmentsClient calls the Segments service.
type SegmentsClient struct {
	cc grpc.ClientConnInterface
}

// NewSegmentsClient wraps a client connection.
func NewSegmentsClient(cc grpc.ClientConnInterface) *SegmentsClient {
	return &SegmentsClient{cc: cc}
}

// Count invokes Segments/Count.
func (c *SegmentsClient) Count(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, countMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Count implements SegmentsServer.
func (s *Service) Count(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	var node types.Node
	var search string
	if req != nil {
		fields := req.GetFields()
		if f, ok := fields["filter"]; ok && f.GetStructValue() != nil {
			raw, err := json.Marshal(f.GetStructValue().AsMap())
			if err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			if err := json.Unmarshal(raw, &node); err != nil {
				return nil, grpcError(fmt.Errorf("%w: %v", types.ErrInvalidValue, err))
			}
		}
		search = fields["search"].GetStringValue()
	}
	if node.Condition == nil && node.Group == nil {
		node = types.GroupNode(types.NewNodeID(), types.And)
	}

	prog := filter.Compile(node)
	found := filter.Apply(s.customers.All(), prog, filter.Query{Search: search})

	ids := make([]any, len(found))
	for i := range found {
		ids[i] = found[i].ID
	}
	out, err := structpb.NewStruct(map[string]any{
		"count": len(found),
		"ids":   ids,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug("segment counted", zap.Int("count", len(found)), zap.Int("problems", len(prog.Problems())))
	return out, nil
}

// grpcError maps domain errors onto gRPC status codes.
func grpcError(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidValue),
		errors.Is(err, types.ErrInvalidLogicalOperator),
		errors.Is(err, types.ErrInvalidOperator):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrFeedUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// UnaryLoggingInterceptor logs each unary call with its status code.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}
