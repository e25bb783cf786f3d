package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"quote-server/src/helpers"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/models"
)

const (
	APIChart        = "chart"
	APIQuoteSummary = "quote_summary"

	DefaultBaseURL = "https://query1.finance.yahoo.com"
)

var _ interfaces.IPriceSource = (*YahooFinanceSource)(nil)

// -----------------------------------------------------------------------------
// YahooFinanceSource reads the regular market price of one symbol per call
// from either the v8 chart or the v10 quoteSummary endpoint.
// -----------------------------------------------------------------------------

type YahooFinanceSource struct {
	API     string
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(api string, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	if api == "" {
		api = APIChart
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &YahooFinanceSource{
		API:     api,
		BaseURL: DefaultBaseURL,
		Network: netMgr,
		Logger:  log,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo-" + s.API
}

// -----------------------------------------------------------------------------

// Fetch returns the latest price of symbol stamped with the time the answer
// was received.
func (s *YahooFinanceSource) Fetch(ctx context.Context, symbol string) (models.MQuote, error) {
	var (
		endpoint string
		params   map[string]string
		parse    func(string, []byte) (float64, error)
	)

	switch s.API {
	case APIQuoteSummary:
		endpoint = fmt.Sprintf("%s/v10/finance/quoteSummary/%s", s.BaseURL, url.PathEscape(symbol))
		params = map[string]string{"formatted": "true", "modules": "price"}
		parse = parseQuoteSummaryResponse
	default:
		endpoint = fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, url.PathEscape(symbol))
		params = map[string]string{"interval": "1d", "range": "1d"}
		parse = parseChartResponse
	}

	body, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return models.MQuote{}, helpers.NewFetchError(symbol, err)
	}

	price, err := parse(symbol, body)
	if err != nil {
		return models.MQuote{}, err
	}

	s.Logger.Debug("Fetched %s: %v", symbol, price)
	return models.NewQuote(symbol, price, s.now()), nil
}

// -----------------------------------------------------------------------------
// Chart endpoint
// -----------------------------------------------------------------------------

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				Currency           string   `json:"currency"`
				ExchangeName       string   `json:"exchangeName"`
				RegularMarketTime  int64    `json:"regularMarketTime"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func parseChartResponse(symbol string, data []byte) (float64, error) {
	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, helpers.NewDecodeError(symbol, "json unmarshal failed: %v", err)
	}

	if e := resp.Chart.Error; e != nil {
		return 0, helpers.NewDecodeError(symbol, "yahoo api error: %s - %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, helpers.NewDecodeError(symbol, "no result in response")
	}

	return validPrice(symbol, resp.Chart.Result[0].Meta.RegularMarketPrice)
}

// -----------------------------------------------------------------------------
// quoteSummary endpoint
// -----------------------------------------------------------------------------

type formattedValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				Symbol             string         `json:"symbol"`
				Currency           string         `json:"currency"`
				MarketState        string         `json:"marketState"`
				RegularMarketPrice formattedValue `json:"regularMarketPrice"`
			} `json:"price"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// -----------------------------------------------------------------------------

func parseQuoteSummaryResponse(symbol string, data []byte) (float64, error) {
	var resp quoteSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, helpers.NewDecodeError(symbol, "json unmarshal failed: %v", err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		return 0, helpers.NewDecodeError(symbol, "yahoo api error: %s - %s", e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 || resp.QuoteSummary.Result[0].Price == nil {
		return 0, helpers.NewDecodeError(symbol, "no price module in response")
	}

	return validPrice(symbol, resp.QuoteSummary.Result[0].Price.RegularMarketPrice.Raw)
}

// -----------------------------------------------------------------------------

func validPrice(symbol string, price *float64) (float64, error) {
	if price == nil {
		return 0, helpers.NewDecodeError(symbol, "regularMarketPrice missing")
	}
	if err := helpers.CheckPrice(symbol, *price); err != nil {
		return 0, err
	}
	return *price, nil
}
