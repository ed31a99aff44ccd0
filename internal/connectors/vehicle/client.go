// internal/connectors/vehicle/client.go
package vehicle

import (
	"context"

	"refi-pipeline/internal/common/httpx"
)

// RegistryAPI is the vehicle-registry lookup endpoint.
type RegistryAPI interface {
	Lookup(ctx context.Context, req RegistryRequest) (*RegistryResponse, error)
}

// ValuationAPI is the market-value estimation endpoint.
type ValuationAPI interface {
	Estimate(ctx context.Context, req ValuationRequest) (*ValuationResponse, error)
}

type httpRegistryClient struct {
	client *httpx.Client
	url    string
}

// NewRegistryClient builds the live registry client.
func NewRegistryClient(cfg *Config) RegistryAPI {
	return &httpRegistryClient{
		client: httpx.NewClient("vehicle-registry", cfg.RegistryTimeout),
		url:    cfg.RegistryURL,
	}
}

func (c *httpRegistryClient) Lookup(ctx context.Context, req RegistryRequest) (*RegistryResponse, error) {
	var resp RegistryResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type httpValuationClient struct {
	client *httpx.Client
	url    string
}

// NewValuationClient builds the live valuation client.
func NewValuationClient(cfg *Config) ValuationAPI {
	return &httpValuationClient{
		client: httpx.NewClient("vehicle-valuation", cfg.ValuationTimeout),
		url:    cfg.ValuationURL,
	}
}

func (c *httpValuationClient) Estimate(ctx context.Context, req ValuationRequest) (*ValuationResponse, error) {
	var resp ValuationResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
