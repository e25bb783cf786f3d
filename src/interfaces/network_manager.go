package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with rate limit/retry logic.
// -----------------------------------------------------------------------------

//go:generate mockgen -package=mocks -destination=mocks/mock_network_manager.go -source=network_manager.go

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
