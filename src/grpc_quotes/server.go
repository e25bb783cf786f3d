package grpc_quotes

import (
	"context"
	"errors"
	"net"
	"time"

	"quote-server/src/logger"
	"quote-server/src/workerpool"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Quote lookups are admitted through the worker pool; RefreshNow is a
// control call and runs on the connection goroutine.
var admittedMethods = map[string]bool{
	MethodListSymbols: true,
	MethodGetQuote:    true,
}

// -----------------------------------------------------------------------------

type Server struct {
	Logger *logger.Logger
	grpc   *grpc.Server
}

// -----------------------------------------------------------------------------

func NewServer(svc QuoteServiceServer, pool *workerpool.WorkerPool, log *logger.Logger) *Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(log),
		AdmissionInterceptor(pool, log),
	))
	RegisterQuoteServiceServer(gs, svc)
	return &Server{Logger: log, grpc: gs}
}

// -----------------------------------------------------------------------------

// Serve blocks until Stop is called or lis fails.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC server on %s", lis.Addr())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// -----------------------------------------------------------------------------

func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// -----------------------------------------------------------------------------

// AdmissionInterceptor runs admitted handlers on a pool worker. A panicking
// handler yields codes.Internal and a stopped pool codes.Unavailable.
func AdmissionInterceptor(pool *workerpool.WorkerPool, log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !admittedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		var resp interface{}
		var handlerErr error
		err := pool.SubmitAndWait(func() {
			resp, handlerErr = handler(ctx, req)
		})

		switch {
		case err == nil:
			return resp, handlerErr
		case errors.Is(err, workerpool.ErrTaskPanicked):
			log.Error("gRPC: handler panicked for %s", info.FullMethod)
			return nil, status.Error(codes.Internal, "internal error")
		default:
			return nil, status.Error(codes.Unavailable, err.Error())
		}
	}
}

// -----------------------------------------------------------------------------

func loggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("gRPC: %s -> %s (%s)", info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}
