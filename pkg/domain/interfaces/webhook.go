package interfaces

import (
	"context"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
)

// WebhookSender posts notifications to a chat webhook
type WebhookSender interface {
	Send(ctx context.Context, url string, notification *model.Notification) error
}
