package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/bitrise-notify/pkg/cli/config"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
	"github.com/m-mizutani/bitrise-notify/pkg/infra/webhook"
	"github.com/m-mizutani/bitrise-notify/pkg/usecase"
)

// notifyCommand sends the build notification. It runs as the root action so
// the binary can be invoked with positional arguments only.
type notifyCommand struct {
	build   config.Build
	bitrise config.Bitrise
	sentry  config.Sentry
}

const notifyArgsUsage = "<debug> <webhook_url> <team_id> <channel_id> <app_avatar_api_token> <preset_status>"

func (x *notifyCommand) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.build.Flags()...)
	flags = append(flags, x.bitrise.Flags()...)
	flags = append(flags, x.sentry.Flags()...)
	return flags
}

func (x *notifyCommand) Action(ctx context.Context, c *cli.Command) error {
	logger := ctxlog.From(ctx)

	input, err := parseInput(c.Args())
	if err != nil {
		return err
	}

	build, err := x.build.Load()
	if err != nil {
		return err
	}

	if err := x.sentry.Configure(); err != nil {
		return err
	}

	logger.Debug("Input parameters",
		slog.Any("input", input),
		slog.Any("build", build),
	)

	uc := usecase.NewNotify(
		x.bitrise.NewClient(input.APIToken),
		webhook.NewClient(nil),
	)

	if err := uc.Notify(ctx, input, build); err != nil {
		x.sentry.Report(err)
		return err
	}

	return nil
}

// parseInput reads the positional arguments. Only the API token may be
// empty.
func parseInput(args cli.Args) (*model.NotifyInput, error) {
	input := &model.NotifyInput{
		WebhookURL: args.Get(1),
		TeamID:     args.Get(2),
		ChannelID:  args.Get(3),
		APIToken:   args.Get(4),
		Preset:     model.PresetStatus(args.Get(5)),
	}

	required := []struct {
		name  string
		value string
	}{
		{"debug", args.Get(0)},
		{"webhook_url", input.WebhookURL},
		{"team_id", input.TeamID},
		{"channel_id", input.ChannelID},
		{"preset_status", string(input.Preset)},
	}

	var missing []string
	for _, arg := range required {
		if arg.value == "" {
			missing = append(missing, arg.name)
		}
	}
	if len(missing) > 0 {
		return nil, goerr.New("one or more parameters are invalid",
			goerr.V("missing", missing),
			goerr.V("given", args.Len()),
			goerr.T(types.ErrTagConfiguration))
	}

	return input, nil
}
