package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of retrofit.v1.RetrofitService
const (
	RetrofitService_ListProjects_FullMethodName        = "/retrofit.v1.RetrofitService/ListProjects"
	RetrofitService_GetProject_FullMethodName          = "/retrofit.v1.RetrofitService/GetProject"
	RetrofitService_GetPortfolioSummary_FullMethodName = "/retrofit.v1.RetrofitService/GetPortfolioSummary"
	RetrofitService_RecordInvestment_FullMethodName    = "/retrofit.v1.RetrofitService/RecordInvestment"
	RetrofitService_TransitionMilestone_FullMethodName = "/retrofit.v1.RetrofitService/TransitionMilestone"
	RetrofitService_ResetProjectFunding_FullMethodName = "/retrofit.v1.RetrofitService/ResetProjectFunding"
)

// MutatingMethods lists the RPCs that write to the snapshot
var MutatingMethods = []string{
	RetrofitService_RecordInvestment_FullMethodName,
	RetrofitService_TransitionMilestone_FullMethodName,
	RetrofitService_ResetProjectFunding_FullMethodName,
}

// RetrofitServiceServer is the server API for RetrofitService.
// Requests and responses carry the JSON shape of the domain as google.protobuf.Struct.
type RetrofitServiceServer interface {
	ListProjects(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProject(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolioSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordInvestment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransitionMilestone(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetProjectFunding(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RetrofitService_ServiceDesc is the grpc.ServiceDesc for RetrofitService
var RetrofitService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "retrofit.v1.RetrofitService",
	HandlerType: (*RetrofitServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListProjects", Handler: unaryHandler(RetrofitService_ListProjects_FullMethodName, RetrofitServiceServer.ListProjects)},
		{MethodName: "GetProject", Handler: unaryHandler(RetrofitService_GetProject_FullMethodName, RetrofitServiceServer.GetProject)},
		{MethodName: "GetPortfolioSummary", Handler: unaryHandler(RetrofitService_GetPortfolioSummary_FullMethodName, RetrofitServiceServer.GetPortfolioSummary)},
		{MethodName: "RecordInvestment", Handler: unaryHandler(RetrofitService_RecordInvestment_FullMethodName, RetrofitServiceServer.RecordInvestment)},
		{MethodName: "TransitionMilestone", Handler: unaryHandler(RetrofitService_TransitionMilestone_FullMethodName, RetrofitServiceServer.TransitionMilestone)},
		{MethodName: "ResetProjectFunding", Handler: unaryHandler(RetrofitService_ResetProjectFunding_FullMethodName, RetrofitServiceServer.ResetProjectFunding)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "retrofit/v1/retrofit.proto",
}

// RegisterRetrofitServiceServer registers srv on s
func RegisterRetrofitServiceServer(s grpc.ServiceRegistrar, srv RetrofitServiceServer) {
	s.RegisterService(&RetrofitService_ServiceDesc, srv)
}

type unaryMethod func(RetrofitServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RetrofitServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RetrofitServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RetrofitServiceClient is the client API for RetrofitService
type RetrofitServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRetrofitServiceClient creates a client over an existing connection
func NewRetrofitServiceClient(cc grpc.ClientConnInterface) *RetrofitServiceClient {
	return &RetrofitServiceClient{cc: cc}
}

func (c *RetrofitServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RetrofitServiceClient) ListProjects(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_ListProjects_FullMethodName, in, opts...)
}

func (c *RetrofitServiceClient) GetProject(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_GetProject_FullMethodName, in, opts...)
}

func (c *RetrofitServiceClient) GetPortfolioSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_GetPortfolioSummary_FullMethodName, in, opts...)
}

func (c *RetrofitServiceClient) RecordInvestment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_RecordInvestment_FullMethodName, in, opts...)
}

func (c *RetrofitServiceClient) TransitionMilestone(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_TransitionMilestone_FullMethodName, in, opts...)
}

func (c *RetrofitServiceClient) ResetProjectFunding(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetrofitService_ResetProjectFunding_FullMethodName, in, opts...)
}
