package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"quote-server/src/helpers"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/models"

	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

var _ interfaces.INetworkManager = (*NetworkManager)(nil)

// StatusError is returned for a non-200 upstream answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.Code)
}

// -----------------------------------------------------------------------------
// NetworkManager performs outbound GET requests with a shared token-bucket
// limiter, retries with exponential backoff, and proxy rotation when the
// upstream starts blocking us.
// -----------------------------------------------------------------------------

type NetworkManager struct {
	Config  models.MNetworkConfig
	Proxies *helpers.ProxyRotator
	Client  *http.Client
	Logger  *logger.Logger

	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg models.MNetworkConfig, log *logger.Logger) *NetworkManager {
	if log == nil {
		log = logger.NewNopLogger()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	nm := &NetworkManager{
		Config:  cfg,
		Proxies: helpers.NewProxyRotator(cfg.Proxies, cfg.UserAgent),
		Logger:  log,
		limiter: rate.NewLimiter(limit, burst),
		backoff: helpers.CalculateBackoff,
	}
	nm.Client = nm.createClient()

	if n := nm.Proxies.Count(); n > 0 {
		nm.Logger.Info("Using %d outbound proxies", n)
	}
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(*http.Request) (*url.URL, error) {
		return nm.Proxies.Current(), nil
	}

	timeout := time.Duration(nm.Config.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	maxRetries := nm.Config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(nm.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := nm.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := nm.do(ctx, finalURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		nm.Logger.Debug("Request failed (attempt %d/%d): %v", attempt+1, maxRetries+1, err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("request %s failed: %w", reqURL.Path, lastErr)
}

// -----------------------------------------------------------------------------

// do runs a single attempt and reports whether a failure is worth retrying.
func (nm *NetworkManager) do(ctx context.Context, finalURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", nm.Proxies.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, true, err
		}
		return body, false, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		if nm.Proxies.Rotate() {
			nm.Logger.Info("Request blocked (%d). Rotated proxy", resp.StatusCode)
		} else {
			nm.Logger.Warning("Request blocked (%d)", resp.StatusCode)
		}
		return nil, true, &StatusError{Code: resp.StatusCode}

	case resp.StatusCode >= 500:
		return nil, true, &StatusError{Code: resp.StatusCode}

	default:
		return nil, false, &StatusError{Code: resp.StatusCode}
	}
}
