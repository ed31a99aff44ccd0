// internal/connectors/identity/client.go
package identity

import (
	"context"

	"refi-pipeline/internal/common/httpx"
)

// VerifyAPI is the identity-verification endpoint.
type VerifyAPI interface {
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)
}

// ReportAPI is the credit-report retrieval endpoint.
type ReportAPI interface {
	Report(ctx context.Context, req ReportRequest) (*ReportResponse, error)
}

type httpVerifyClient struct {
	client *httpx.Client
	url    string
}

// NewVerifyClient builds the live identity-verification client.
func NewVerifyClient(cfg *Config) VerifyAPI {
	return &httpVerifyClient{
		client: httpx.NewClient("identity-verification", cfg.VerifyTimeout),
		url:    cfg.VerifyURL,
	}
}

func (c *httpVerifyClient) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type httpReportClient struct {
	client *httpx.Client
	url    string
}

// NewReportClient builds the live credit-report client.
func NewReportClient(cfg *Config) ReportAPI {
	return &httpReportClient{
		client: httpx.NewClient("credit-report", cfg.ReportTimeout),
		url:    cfg.ReportURL,
	}
}

func (c *httpReportClient) Report(ctx context.Context, req ReportRequest) (*ReportResponse, error) {
	var resp ReportResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
