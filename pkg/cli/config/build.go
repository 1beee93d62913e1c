package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
)

// DefaultBuildURL is used when the build URL is not provided
const DefaultBuildURL = "https://bitrise.io"

// Build holds the CI environment of the current run
type Build struct {
	EnvFile string
}

// buildEnv is populated from the variables exported by Bitrise
type buildEnv struct {
	AppTitle         string `envconfig:"BITRISE_APP_TITLE"`
	AppURL           string `envconfig:"BITRISE_APP_URL"`
	AppSlug          string `envconfig:"BITRISE_APP_SLUG"`
	WorkflowTitle    string `envconfig:"BITRISE_TRIGGERED_WORKFLOW_TITLE"`
	BuildNumber      string `envconfig:"BITRISE_BUILD_NUMBER"`
	BuildURL         string `envconfig:"BITRISE_BUILD_URL"`
	TriggerTimestamp string `envconfig:"BITRISE_BUILD_TRIGGER_TIMESTAMP"`
	BuildStatus      string `envconfig:"BITRISE_BUILD_STATUS"`
	IsPR             string `envconfig:"PR"`
	PullRequestID    string `envconfig:"BITRISE_PULL_REQUEST"`
	GitTag           string `envconfig:"BITRISE_GIT_TAG"`
	GitBranch        string `envconfig:"BITRISE_GIT_BRANCH"`
	GitBranchDest    string `envconfig:"BITRISEIO_GIT_BRANCH_DEST"`
	CommitHash       string `envconfig:"BITRISE_GIT_COMMIT"`
	CommitMessage    string `envconfig:"BITRISE_GIT_MESSAGE"`
}

// Flags returns CLI flags for build environment configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Load build variables from a dotenv file; variables already set take precedence",
			Destination: &c.EnvFile,
			Sources:     cli.EnvVars("BITRISE_NOTIFY_ENV_FILE"),
		},
	}
}

// Load reads the build context from the environment
func (c *Build) Load() (model.BuildContext, error) {
	if c.EnvFile != "" {
		if err := godotenv.Load(c.EnvFile); err != nil {
			return model.BuildContext{}, goerr.Wrap(err, "failed to load env file",
				goerr.V("path", c.EnvFile),
				goerr.T(types.ErrTagConfiguration))
		}
	}

	var env buildEnv
	if err := envconfig.Process("", &env); err != nil {
		return model.BuildContext{}, goerr.Wrap(err, "failed to read build environment",
			goerr.T(types.ErrTagConfiguration))
	}

	build := model.BuildContext{
		AppTitle:      env.AppTitle,
		AppURL:        env.AppURL,
		AppSlug:       env.AppSlug,
		WorkflowTitle: env.WorkflowTitle,
		BuildNumber:   env.BuildNumber,
		BuildURL:      env.BuildURL,
		BuildStatus:   env.BuildStatus,
		IsPR:          env.IsPR == "true",
		PullRequestID: env.PullRequestID,
		GitTag:        env.GitTag,
		GitBranch:     env.GitBranch,
		GitBranchDest: env.GitBranchDest,
		CommitHash:    env.CommitHash,
		CommitMessage: env.CommitMessage,
	}
	if build.BuildURL == "" {
		build.BuildURL = DefaultBuildURL
	}

	if env.TriggerTimestamp != "" {
		sec, err := strconv.ParseInt(env.TriggerTimestamp, 10, 64)
		if err != nil {
			return model.BuildContext{}, goerr.Wrap(err, "invalid BITRISE_BUILD_TRIGGER_TIMESTAMP",
				goerr.V("value", env.TriggerTimestamp),
				goerr.T(types.ErrTagConfiguration))
		}
		build.TriggeredAt = time.Unix(sec, 0)
	}

	return build, nil
}
