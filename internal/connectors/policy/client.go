// internal/connectors/policy/client.go
package policy

import (
	"context"

	"refi-pipeline/internal/common/httpx"
)

// EvaluateAPI is the lender policy-evaluation endpoint.
type EvaluateAPI interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)
}

type httpEvaluateClient struct {
	client *httpx.Client
	url    string
}

// NewEvaluateClient builds the live policy-evaluation client.
func NewEvaluateClient(cfg *Config) EvaluateAPI {
	return &httpEvaluateClient{
		client: httpx.NewClient("policy-evaluation", cfg.Timeout),
		url:    cfg.EvaluateURL,
	}
}

func (c *httpEvaluateClient) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	var resp EvaluateResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
