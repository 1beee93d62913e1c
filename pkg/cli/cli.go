package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/bitrise-notify/pkg/cli/config"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
)

type options struct {
	logWriter io.Writer
}

// Option is a functional option for Run
type Option func(*options)

// WithLogWriter sends log output to w instead of stdout
func WithLogWriter(w io.Writer) Option {
	return func(o *options) {
		o.logWriter = w
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loggerCfg := config.Logger{Writer: o.logWriter}
	var logger *slog.Logger

	var notify notifyCommand

	app := &cli.Command{
		Name:      "bitrise-notify",
		Usage:     "Post a Bitrise build status notification to a chat webhook",
		Version:   types.Version,
		ArgsUsage: notifyArgsUsage,
		Flags:     append(loggerCfg.Flags(), notify.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// the first positional argument overrides --log-level
			if isDebug(c.Args().First()) {
				loggerCfg.Level = "debug"
			}

			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			logger = logger.With("run_id", uuid.NewString())

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: notify.Action,
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}

func isDebug(arg string) bool {
	return arg == "yes"
}
