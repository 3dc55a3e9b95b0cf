package interfaces

import (
	"context"

	"github.com/m-mizutani/pullhook/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook request processing
type WebhookUseCase interface {
	// HandleWebhook verifies, parses, dispatches and (if warranted) syncs.
	// A returned error carries a goerr tag from types that selects the response.
	HandleWebhook(ctx context.Context, req *model.WebhookRequest) (*model.Outcome, error)
}
