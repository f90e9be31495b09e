package order

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"pizza-service/internal/common/config"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/models"
)

// FulfillmentResult is the auxiliary outcome of the factory notification.
// On success JWT carries the fulfillment token; on failure Message carries
// the reported diagnostic. The order itself is persisted either way.
type FulfillmentResult struct {
	JWT       string `json:"jwt,omitempty"`
	ReportURL string `json:"reportUrl,omitempty"`
	Message   string `json:"message,omitempty"`
}

type fulfillmentRequest struct {
	Diner dinerInfo    `json:"diner"`
	Order models.Order `json:"order"`
}

type dinerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FactoryClient posts completed orders to the external fulfillment factory.
type FactoryClient struct {
	client *resty.Client
	apiKey string
	log    logger.Logger
}

func NewFactoryClient(cfg config.FactoryConfig, log logger.Logger) *FactoryClient {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(config.GetDuration(cfg.Timeout))

	return &FactoryClient{
		client: client,
		apiKey: cfg.APIKey,
		log:    log.WithFields(map[string]interface{}{"component": "factory"}),
	}
}

// Fulfill notifies the factory of a persisted order. Best effort: transport
// and endpoint failures are reported in the result, never as an error.
func (f *FactoryClient) Fulfill(ctx context.Context, diner models.User, order models.Order) *FulfillmentResult {
	result := &FulfillmentResult{}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+f.apiKey).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetBody(fulfillmentRequest{
			Diner: dinerInfo{ID: diner.ID, Name: diner.Name, Email: diner.Email},
			Order: order,
		}).
		SetResult(result).
		SetError(result).
		Post("/api/order")
	if err != nil {
		f.log.Warn("factory notification failed", map[string]interface{}{
			"orderId": order.ID,
			"error":   err,
		})
		return &FulfillmentResult{Message: "Failed to fulfill order at factory"}
	}

	if resp.IsError() {
		f.log.Warn("factory rejected order", map[string]interface{}{
			"orderId": order.ID,
			"status":  resp.StatusCode(),
		})
		if result.Message == "" {
			result.Message = "Failed to fulfill order at factory"
		}
		result.JWT = ""
		return result
	}

	return result
}
