package grpc_quotes

import (
	"context"
	"time"

	"quote-server/src/handler"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/refresher"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Refresher is the on-demand refresh entry point exposed over gRPC.
type Refresher interface {
	RefreshNow(ctx context.Context) (refresher.CycleReport, error)
}

// QuoteService implements QuoteServiceServer on top of the shared cache.
type QuoteService struct {
	Store     interfaces.IQuoteReader
	Refresher Refresher
	Logger    *logger.Logger
}

var _ QuoteServiceServer = (*QuoteService)(nil)

// NewQuoteService creates the service. refresher may be nil, in which case
// RefreshNow is reported as unimplemented.
func NewQuoteService(store interfaces.IQuoteReader, r Refresher, log *logger.Logger) *QuoteService {
	return &QuoteService{Store: store, Refresher: r, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *QuoteService) ListSymbols(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	resp := handler.Handle(handler.Request{Op: handler.OpListSymbols}, s.Store)
	return structpb.NewList(toInterfaces(resp.Symbols))
}

// -----------------------------------------------------------------------------

func (s *QuoteService) GetQuote(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	symbol := req.GetValue()
	if symbol == "" {
		return nil, status.Error(codes.NotFound, "symbol is required")
	}

	resp := handler.Handle(handler.Request{Op: handler.OpGetQuote, Symbol: symbol}, s.Store)
	if resp.Status != handler.StatusOK {
		return nil, status.Errorf(codes.NotFound, "no quote for %s", symbol)
	}

	return structpb.NewStruct(map[string]interface{}{
		"symbol":    resp.Quote.Symbol,
		"value":     resp.Quote.Value,
		"timestamp": resp.Quote.Timestamp.Format(time.RFC3339Nano),
	})
}

// -----------------------------------------------------------------------------

func (s *QuoteService) RefreshNow(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.Refresher == nil {
		return nil, status.Error(codes.Unimplemented, "refresh is not available")
	}

	report, err := s.Refresher.RefreshNow(ctx)
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}
	s.Logger.Info("gRPC: RefreshNow done, %d ok, %d failed", len(report.Succeeded), len(report.Failed))

	return structpb.NewStruct(map[string]interface{}{
		"started":   report.Started.Format(time.RFC3339Nano),
		"finished":  report.Finished.Format(time.RFC3339Nano),
		"succeeded": toInterfaces(report.Succeeded),
		"failed":    toInterfaces(report.Failed),
		"skipped":   report.Skipped,
	})
}

// -----------------------------------------------------------------------------

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
