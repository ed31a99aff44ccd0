// internal/common/httpx/client.go
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"refi-pipeline/internal/common/errors"
)

// Client is a thin wrapper over net/http with a per-client timeout and
// strict JSON decoding. Upstream failures come back classified so callers
// can route them straight into the fallback decision.
type Client struct {
	httpClient *http.Client
	service    string
}

func NewClient(service string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		service:    service,
	}
}

// PostJSON sends a JSON body and decodes the JSON response into out.
// Classification:
//   - network error / timeout / non-2xx status -> TRANSPORT_FAILED
//   - non-JSON content type, undecodable body, or a validator-rejected
//     shape -> MALFORMED_RESPONSE
func (c *Client) PostJSON(ctx context.Context, url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.NewMalformedResponseError(c.service, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewTransportError(c.service,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return c.decode(resp, out)
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewTransportError(c.service,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return c.decode(resp, out)
}

// decode guards against error pages masquerading as success: an HTML body
// behind a 200 is malformed, not a transport failure, and is detected
// explicitly rather than left to a silent partial decode.
func (c *Client) decode(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "json") {
		return errors.NewMalformedResponseError(c.service,
			fmt.Sprintf("unexpected content type %q", ct))
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '<' {
		return errors.NewMalformedResponseError(c.service, "body is not a JSON document")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(out); err != nil {
		return errors.NewMalformedResponseError(c.service, fmt.Sprintf("decode body: %v", err))
	}

	if v, ok := out.(Validatable); ok {
		if err := v.ValidateShape(); err != nil {
			return errors.NewMalformedResponseError(c.service, err.Error())
		}
	}
	return nil
}

// Validatable lets response types reject structurally-decodable bodies that
// still lack the fields the pipeline depends on.
type Validatable interface {
	ValidateShape() error
}
