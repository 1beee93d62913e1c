package interfaces

import (
	"context"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
)

// NotifyUseCase defines the notification workflow of a single run
type NotifyUseCase interface {
	// Notify derives the build status, composes the notification and sends it
	Notify(ctx context.Context, input *model.NotifyInput, build model.BuildContext) error
}
