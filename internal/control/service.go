// Package control is the host's local gRPC control service and its client.
package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "kgatracker.control.v1.Control"

// ControlServer is the server interface for the Control service.
type ControlServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Restore(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Quit(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Show(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SetUpdateURL(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	CheckUpdateServer(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	CheckForUpdates(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// ServiceDesc describes the Control service. Messages are protobuf
// well-known types, so no generated code is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetState", ControlServer.GetState),
		unary("Restore", ControlServer.Restore),
		unary("Quit", ControlServer.Quit),
		unary("Show", ControlServer.Show),
		unary("SetUpdateURL", ControlServer.SetUpdateURL),
		unary("CheckUpdateServer", ControlServer.CheckUpdateServer),
		unary("CheckForUpdates", ControlServer.CheckForUpdates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kgatracker/control/v1/control.proto",
}

// RegisterControlServer registers srv with s.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
