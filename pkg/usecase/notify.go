package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/interfaces"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
)

type notifyUseCase struct {
	registry interfaces.AppRegistry
	sender   interfaces.WebhookSender
	now      func() time.Time
}

// NotifyOption is a functional option for the notify use case
type NotifyOption func(*notifyUseCase)

// WithClock replaces time.Now, used to compute the build duration
func WithClock(now func() time.Time) NotifyOption {
	return func(uc *notifyUseCase) {
		uc.now = now
	}
}

// NewNotify creates a new instance of NotifyUseCase
func NewNotify(registry interfaces.AppRegistry, sender interfaces.WebhookSender, opts ...NotifyOption) interfaces.NotifyUseCase {
	uc := &notifyUseCase{
		registry: registry,
		sender:   sender,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Notify fetches the app avatar, composes the notification and posts it to
// the webhook. Avatar failures are logged and the notification is sent
// without it. Only a failed send is returned as an error.
func (uc *notifyUseCase) Notify(ctx context.Context, input *model.NotifyInput, build model.BuildContext) error {
	logger := ctxlog.From(ctx)

	status := model.DeriveStatus(input.Preset, build.BuildStatus)
	logger.Debug("Derived build status",
		"preset", input.Preset,
		"build_status", build.BuildStatus,
		"label", status.Label,
		"color", status.Color,
	)

	avatarURL, err := uc.registry.GetAvatarURL(ctx, build.AppSlug)
	if err != nil {
		logger.Error("Failed to retrieve app avatar url",
			"error", err,
			"app_slug", build.AppSlug,
		)
		avatarURL = ""
	}

	notification := Compose(build, status, avatarURL, uc.now())
	notification.TeamID = input.TeamID
	notification.ChannelID = input.ChannelID

	logger.Debug("Composed notification",
		"title", notification.Title,
		"body", notification.Message,
	)

	if err := uc.sender.Send(ctx, input.WebhookURL, notification); err != nil {
		return goerr.Wrap(err, "failed to send the webhook message",
			goerr.V("team_id", input.TeamID),
			goerr.V("channel_id", input.ChannelID))
	}

	logger.Info("Webhook message sent",
		"title", notification.Title,
		"succeeded", status.Succeeded(),
	)

	return nil
}
