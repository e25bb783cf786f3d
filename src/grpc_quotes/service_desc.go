package grpc_quotes

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described by hand over well-known message types, so no
// generated stubs are needed on either side.

const ServiceName = "quoteserver.v1.QuoteService"

const (
	MethodListSymbols = "/" + ServiceName + "/ListSymbols"
	MethodGetQuote    = "/" + ServiceName + "/GetQuote"
	MethodRefreshNow  = "/" + ServiceName + "/RefreshNow"
)

// QuoteServiceServer is the server API for the quote service.
type QuoteServiceServer interface {
	ListSymbols(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetQuote(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	RefreshNow(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var QuoteServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSymbols", Handler: listSymbolsHandler},
		{MethodName: "GetQuote", Handler: getQuoteHandler},
		{MethodName: "RefreshNow", Handler: refreshNowHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "quoteserver/v1/quotes.proto",
}

// RegisterQuoteServiceServer attaches srv to s.
func RegisterQuoteServiceServer(s grpc.ServiceRegistrar, srv QuoteServiceServer) {
	s.RegisterService(&QuoteServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func listSymbolsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).ListSymbols(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListSymbols}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QuoteServiceServer).ListSymbols(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------

func getQuoteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).GetQuote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetQuote}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QuoteServiceServer).GetQuote(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------

func refreshNowHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).RefreshNow(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodRefreshNow}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QuoteServiceServer).RefreshNow(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
