package grpc_quotes

import (
	"context"
	"fmt"
	"time"

	"quote-server/src/models"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a thin typed wrapper over a connection to QuoteService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// -----------------------------------------------------------------------------

func (c *Client) ListSymbols(ctx context.Context) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MethodListSymbols, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		symbols = append(symbols, v.GetStringValue())
	}
	return symbols, nil
}

// -----------------------------------------------------------------------------

// GetQuote returns a status error with codes.NotFound when the cache has no
// quote for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetQuote, wrapperspb.String(symbol), out); err != nil {
		return models.MQuote{}, err
	}

	fields := out.GetFields()
	ts, err := time.Parse(time.RFC3339Nano, fields["timestamp"].GetStringValue())
	if err != nil {
		return models.MQuote{}, fmt.Errorf("bad timestamp in response: %w", err)
	}
	return models.NewQuote(fields["symbol"].GetStringValue(), fields["value"].GetNumberValue(), ts), nil
}

// -----------------------------------------------------------------------------

func (c *Client) RefreshNow(ctx context.Context) (map[string]interface{}, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodRefreshNow, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
