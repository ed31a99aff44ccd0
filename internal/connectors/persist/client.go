// internal/connectors/persist/client.go

// Package persist saves the finalized application to the persistence
// collaborator. Failures here are absorbed: the applicant still reaches the
// summary and the profile stays downloadable from memory.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/httpx"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/models"
)

// SaveRequest is the full accumulated profile sent for persistence.
type SaveRequest struct {
	Profile  models.ApplicantProfile  `json:"profile"`
	Vehicle  *models.VehicleRecord    `json:"vehicle,omitempty"`
	Match    *models.FinancerMatch    `json:"financerMatch,omitempty"`
	Products []models.EligibleProduct `json:"eligibleProducts,omitempty"`
}

// SaveResponse carries the assigned application identifier.
type SaveResponse struct {
	ApplicationID string `json:"applicationId"`
}

// ValidateShape requires an identifier on a success response.
func (r *SaveResponse) ValidateShape() error {
	if r.ApplicationID == "" {
		return fmt.Errorf("success response without applicationId")
	}
	return nil
}

// Saver persists finalized applications.
type Saver interface {
	Save(ctx context.Context, req SaveRequest) (string, error)
}

type Client struct {
	client *httpx.Client
	url    string
	logger logger.Logger
}

func NewClient(svc config.ServicesConfig, log logger.Logger) *Client {
	return &Client{
		client: httpx.NewClient("application-persistence",
			time.Duration(svc.Persistence.Timeout)*time.Millisecond),
		url:    svc.Persistence.BaseURL + "/v1/applications",
		logger: log.WithFields(map[string]interface{}{"connector": "persistence"}),
	}
}

// Save submits the application. On failure it returns a locally generated
// identifier and the absorbed error; callers log the degradation and move on.
func (c *Client) Save(ctx context.Context, req SaveRequest) (string, error) {
	var resp SaveResponse
	if err := c.client.PostJSON(ctx, c.url, req, &resp); err != nil {
		local := "local-" + uuid.NewString()
		c.logger.Warn("application persistence absorbed", map[string]interface{}{
			"error":   err.Error(),
			"localId": local,
		})
		return local, errors.NewPersistenceError(err)
	}
	return resp.ApplicationID, nil
}
